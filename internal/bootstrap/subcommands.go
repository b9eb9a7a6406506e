package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/neontowel/gitix/internal/config"
	"github.com/neontowel/gitix/internal/git"
	"github.com/neontowel/gitix/internal/log"
	"github.com/neontowel/gitix/internal/theme"
	"github.com/neontowel/gitix/internal/utils"
)

// loadCLIConfig loads the configuration file and applies the command line
// overrides on top of it. --config values take precedence over everything.
func loadCLIConfig(stderr io.Writer, configFileFlag, themeFlag, remoteFlag string, configOverrides []string) (*config.AppConfig, error) {
	cfg, err := config.LoadConfig(configFileFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if err := applyThemeConfig(cfg, themeFlag); err != nil {
		return nil, err
	}
	if remote := strings.TrimSpace(remoteFlag); remote != "" {
		cfg.Remote = remote
	}

	if len(configOverrides) > 0 {
		if err := cfg.ApplyCLIOverrides(configOverrides); err != nil {
			return nil, fmt.Errorf("error applying config overrides: %w", err)
		}
	}

	return cfg, nil
}

// applyThemeConfig applies the --theme flag.
func applyThemeConfig(cfg *config.AppConfig, themeName string) error {
	if themeName == "" {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(themeName))
	if !theme.IsKnown(normalized) {
		return fmt.Errorf("unknown theme %q (available: %s)", themeName, strings.Join(theme.AvailableThemes(), ", "))
	}
	cfg.Theme = normalized
	return nil
}

// setupDebugLog routes the debug log to the --debug-log path, or to the
// configured one. Buffered lines are dropped when neither is set.
func setupDebugLog(stderr io.Writer, flagPath string, cfg *config.AppConfig) {
	path := flagPath
	if path == "" {
		path = cfg.DebugLog
	}
	if path == "" {
		_ = log.SetFile("")
		return
	}
	if expanded, err := utils.ExpandPath(path); err == nil {
		path = expanded
	}
	if err := os.MkdirAll(filepath.Dir(path), utils.DefaultDirPerms); err != nil {
		fmt.Fprintf(stderr, "Error creating debug log directory: %v\n", err)
		return
	}
	if err := log.SetFile(path); err != nil {
		fmt.Fprintf(stderr, "Error opening debug log file %q: %v\n", path, err)
		return
	}
	cfg.DebugLog = path
}

// newCLIGitService opens the repository enclosing repoPath and configures a
// service for it.
func newCLIGitService(cfg *config.AppConfig, repoPath string, notify git.NotifyFn) (*git.Service, error) {
	repo, err := git.Discover(repoPath)
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadRepoSettings(repo.Root)
	if err != nil {
		log.Warn("repository settings unavailable", "root", repo.Root, "error", err)
	}

	opts := git.DefaultOptions()
	opts.Remote = cfg.Remote
	opts.PullRebase = config.ResolvePullRebase(cfg, settings)
	opts.StatusFallback = cfg.StatusFallback
	opts.FetchFallback = cfg.FetchFallback
	return git.NewService(repo, opts, notify), nil
}

// cliNotify returns a notification callback that writes to w.
func cliNotify(w io.Writer) git.NotifyFn {
	return func(message, severity string) {
		if severity == "error" {
			fmt.Fprintf(w, "Error: %s\n", message)
			return
		}
		fmt.Fprintf(w, "%s\n", message)
	}
}

// tuiNotify keeps notifications off the terminal while the TUI owns it.
func tuiNotify(message, severity string) {
	log.Printf("%s: %s", severity, message)
}
