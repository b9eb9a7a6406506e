// Package config loads application configuration from YAML and repository
// settings from git configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/neontowel/gitix/internal/utils"
	"gopkg.in/yaml.v3"
)

const (
	appName = "gitix"

	defaultRemote          = "origin"
	defaultRefreshDebounce = 600 * time.Millisecond
)

// AppConfig defines the global gitix configuration options.
type AppConfig struct {
	DebugLog        string
	Remote          string
	PullRebase      bool
	PullRebaseSet   bool // Whether pull_rebase was explicitly configured
	StatusFallback  bool
	FetchFallback   bool
	AutoRefresh     bool
	RefreshDebounce time.Duration
	ShowIcons       bool
	Theme           string
	ConfigPath      string // Path of the file the configuration was loaded from
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Remote:          defaultRemote,
		PullRebase:      true,
		StatusFallback:  true,
		FetchFallback:   true,
		AutoRefresh:     true,
		RefreshDebounce: defaultRefreshDebounce,
		ShowIcons:       true,
	}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case int:
		return v
	case string:
		text := strings.TrimSpace(v)
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}
	return defaultVal
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	cfg.apply(data)
	return cfg
}

// apply overlays the recognised keys of data onto cfg.
func (cfg *AppConfig) apply(data map[string]any) {
	if debugLog, ok := data["debug_log"].(string); ok {
		cfg.DebugLog = strings.TrimSpace(debugLog)
	}
	if remote, ok := data["remote"].(string); ok && strings.TrimSpace(remote) != "" {
		cfg.Remote = strings.TrimSpace(remote)
	}
	if value, ok := data["pull_rebase"]; ok {
		cfg.PullRebase = coerceBool(value, cfg.PullRebase)
		cfg.PullRebaseSet = true
	}
	cfg.StatusFallback = coerceBool(data["status_fallback"], cfg.StatusFallback)
	cfg.FetchFallback = coerceBool(data["fetch_fallback"], cfg.FetchFallback)
	cfg.AutoRefresh = coerceBool(data["auto_refresh"], cfg.AutoRefresh)
	cfg.ShowIcons = coerceBool(data["show_icons"], cfg.ShowIcons)
	if theme, ok := data["theme"].(string); ok {
		cfg.Theme = strings.ToLower(strings.TrimSpace(theme))
	}

	ms := coerceInt(data["refresh_debounce_ms"], int(cfg.RefreshDebounce/time.Millisecond))
	if ms > 0 {
		cfg.RefreshDebounce = time.Duration(ms) * time.Millisecond
	}
}

// ApplyCLIOverrides applies --config=gitix.key=value overrides, which take
// precedence over the configuration file.
func (cfg *AppConfig) ApplyCLIOverrides(overrides []string) error {
	data, err := parseCLIConfigOverrides(overrides)
	if err != nil {
		return err
	}
	cfg.apply(data)
	return nil
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// LoadConfig reads the application configuration from a YAML file. An
// explicit configPath must live inside the gitix configuration directory.
func LoadConfig(configPath string) (*AppConfig, error) {
	configBase := filepath.Clean(filepath.Join(getConfigDir(), appName))

	var paths []string
	if configPath != "" {
		expanded, err := utils.ExpandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return DefaultConfig(), err
		}
		if !isPathWithin(configBase, absPath) {
			return DefaultConfig(), fmt.Errorf("config path must reside inside %s", configBase)
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	for _, path := range paths {
		// #nosec G304 -- path is constrained to the config directory after validation
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return DefaultConfig(), fmt.Errorf("read %s: %w", path, err)
		}

		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
		}
		cfg := parseConfig(yamlData)
		cfg.ConfigPath = path
		return cfg, nil
	}

	return DefaultConfig(), nil
}

func isPathWithin(base, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// parseCLIConfigOverrides parses --config=gitix.key=value entries into a
// map suitable for apply. The last occurrence of a key wins.
func parseCLIConfigOverrides(overrides []string) (map[string]any, error) {
	result := make(map[string]any)
	for _, override := range overrides {
		fullKey, value, ok := strings.Cut(override, "=")
		if !ok {
			return nil, fmt.Errorf("invalid config override: %q, expected format: gitix.key=value (note: use = not space)", override)
		}
		if !strings.HasPrefix(fullKey, appName+".") {
			return nil, fmt.Errorf("config override key must start with '%s.': %q", appName, fullKey)
		}
		key := strings.TrimPrefix(fullKey, appName+".")
		if key == "" {
			return nil, fmt.Errorf("empty config key in override: %q", override)
		}
		result[key] = value
	}
	return result, nil
}
