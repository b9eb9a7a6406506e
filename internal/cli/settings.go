package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/neontowel/gitix/internal/config"
)

// Keys accepted by the config subcommand.
const (
	KeyUserName   = "user.name"
	KeyUserEmail  = "user.email"
	KeyPullRebase = "pull.rebase"
)

// SettingKeys lists the repository settings gitix reads and writes.
func SettingKeys() []string {
	return []string{KeyUserName, KeyUserEmail, KeyPullRebase}
}

func normalizeKey(key string) (string, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.TrimPrefix(k, "gitix.")
	for _, known := range SettingKeys() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown setting %q (available: %s)", key, strings.Join(SettingKeys(), ", "))
}

func settingValue(s *config.RepoSettings, key string) string {
	switch key {
	case KeyUserName:
		return s.Identity.Name
	case KeyUserEmail:
		return s.Identity.Email
	default:
		return strconv.FormatBool(s.PullRebase)
	}
}

// ShowSettings prints the effective value of key for the repository at root.
// With an empty key every setting is listed as key=value.
func ShowSettings(root, key string, w io.Writer) error {
	settings, err := config.LoadRepoSettings(root)
	if err != nil {
		return err
	}
	if key == "" {
		for _, k := range SettingKeys() {
			fmt.Fprintf(w, "%s=%s\n", k, settingValue(settings, k))
		}
		return nil
	}

	k, err := normalizeKey(key)
	if err != nil {
		return err
	}
	value := settingValue(settings, k)
	if value == "" {
		return fmt.Errorf("%s is not set", k)
	}
	_, err = fmt.Fprintln(w, value)
	return err
}

// SetSetting writes key to the repository configuration at root.
func SetSetting(root, key, value string, stderr io.Writer) error {
	k, err := normalizeKey(key)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)

	switch k {
	case KeyUserName, KeyUserEmail:
		if value == "" {
			return fmt.Errorf("%s cannot be empty", k)
		}
		if k == KeyUserName {
			err = config.SetUserName(root, value)
		} else {
			err = config.SetUserEmail(root, value)
		}
	case KeyPullRebase:
		rebase, perr := strconv.ParseBool(value)
		if perr != nil {
			return fmt.Errorf("invalid value %q for %s: expected true or false", value, k)
		}
		value = strconv.FormatBool(rebase)
		err = config.SetPullRebase(root, rebase)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Set %s to %s\n", k, value)
	return nil
}
