package config

import (
	"fmt"
	"strconv"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
)

const (
	settingsSection    = "gitix"
	settingsSubsection = "pull"
	settingsRebaseKey  = "rebase"
)

// loadGlobalGitConfig reads the user level git configuration. Tests replace
// it to keep results independent of the machine's ~/.gitconfig.
var loadGlobalGitConfig = func() (*gitconfig.Config, error) {
	return gitconfig.LoadConfig(gitconfig.GlobalScope)
}

// Identity is the author recorded on commits.
type Identity struct {
	Name  string
	Email string
}

// Complete reports whether both name and email are set.
func (i Identity) Complete() bool {
	return strings.TrimSpace(i.Name) != "" && strings.TrimSpace(i.Email) != ""
}

// RepoSettings holds the per-repository values gitix reads from git
// configuration. Local values win over global ones.
type RepoSettings struct {
	Identity      Identity
	PullRebase    bool
	PullRebaseSet bool
}

// LoadRepoSettings reads user.name, user.email and gitix.pull.rebase for the
// repository rooted at root.
func LoadRepoSettings(root string) (*RepoSettings, error) {
	repo, err := gogit.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	local, err := repo.Config()
	if err != nil {
		return nil, fmt.Errorf("read local git config: %w", err)
	}

	settings := &RepoSettings{PullRebase: true}
	if global, err := loadGlobalGitConfig(); err == nil && global != nil {
		settings.overlay(global)
	}
	settings.overlay(local)
	return settings, nil
}

func (s *RepoSettings) overlay(cfg *gitconfig.Config) {
	if name := strings.TrimSpace(cfg.User.Name); name != "" {
		s.Identity.Name = name
	}
	if email := strings.TrimSpace(cfg.User.Email); email != "" {
		s.Identity.Email = email
	}
	if cfg.Raw == nil || !cfg.Raw.HasSection(settingsSection) {
		return
	}
	section := cfg.Raw.Section(settingsSection)
	if !section.HasSubsection(settingsSubsection) {
		return
	}
	sub := section.Subsection(settingsSubsection)
	if !sub.HasOption(settingsRebaseKey) {
		return
	}
	s.PullRebase = coerceBool(sub.Option(settingsRebaseKey), s.PullRebase)
	s.PullRebaseSet = true
}

// ResolvePullRebase returns the pull strategy: the repository setting wins
// over the application configuration.
func ResolvePullRebase(cfg *AppConfig, settings *RepoSettings) bool {
	if settings != nil && settings.PullRebaseSet {
		return settings.PullRebase
	}
	if cfg != nil {
		return cfg.PullRebase
	}
	return true
}

func updateLocalConfig(root string, mutate func(*gitconfig.Config)) error {
	repo, err := gogit.PlainOpen(root)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("read local git config: %w", err)
	}
	mutate(cfg)
	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("write local git config: %w", err)
	}
	return nil
}

// SetUserName writes user.name to the repository configuration.
func SetUserName(root, name string) error {
	return updateLocalConfig(root, func(cfg *gitconfig.Config) {
		cfg.User.Name = strings.TrimSpace(name)
	})
}

// SetUserEmail writes user.email to the repository configuration.
func SetUserEmail(root, email string) error {
	return updateLocalConfig(root, func(cfg *gitconfig.Config) {
		cfg.User.Email = strings.TrimSpace(email)
	})
}

// SetPullRebase writes gitix.pull.rebase to the repository configuration.
func SetPullRebase(root string, rebase bool) error {
	return updateLocalConfig(root, func(cfg *gitconfig.Config) {
		cfg.Raw.Section(settingsSection).Subsection(settingsSubsection).
			SetOption(settingsRebaseKey, strconv.FormatBool(rebase))
	})
}
