package config

import (
	"testing"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withGlobalGitConfig(t *testing.T, cfg *gitconfig.Config) {
	t.Helper()
	prev := loadGlobalGitConfig
	loadGlobalGitConfig = func() (*gitconfig.Config, error) {
		if cfg == nil {
			return gitconfig.NewConfig(), nil
		}
		return cfg, nil
	}
	t.Cleanup(func() { loadGlobalGitConfig = prev })
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return dir
}

func TestLoadRepoSettingsDefaults(t *testing.T) {
	withGlobalGitConfig(t, nil)
	root := initRepo(t)

	settings, err := LoadRepoSettings(root)
	require.NoError(t, err)
	assert.False(t, settings.Identity.Complete())
	assert.True(t, settings.PullRebase)
	assert.False(t, settings.PullRebaseSet)
}

func TestLoadRepoSettingsNotARepository(t *testing.T) {
	withGlobalGitConfig(t, nil)
	_, err := LoadRepoSettings(t.TempDir())
	require.Error(t, err)
}

func TestSettersRoundTrip(t *testing.T) {
	withGlobalGitConfig(t, nil)
	root := initRepo(t)

	require.NoError(t, SetUserName(root, " Ada Lovelace "))
	require.NoError(t, SetUserEmail(root, "ada@example.com"))
	require.NoError(t, SetPullRebase(root, false))

	settings, err := LoadRepoSettings(root)
	require.NoError(t, err)
	assert.Equal(t, Identity{Name: "Ada Lovelace", Email: "ada@example.com"}, settings.Identity)
	assert.True(t, settings.Identity.Complete())
	assert.False(t, settings.PullRebase)
	assert.True(t, settings.PullRebaseSet)
}

func TestLocalSettingsOverrideGlobal(t *testing.T) {
	global := gitconfig.NewConfig()
	global.User.Name = "Global Name"
	global.User.Email = "global@example.com"
	global.Raw.Section("gitix").Subsection("pull").SetOption("rebase", "false")
	withGlobalGitConfig(t, global)

	root := initRepo(t)

	settings, err := LoadRepoSettings(root)
	require.NoError(t, err)
	assert.Equal(t, "Global Name", settings.Identity.Name)
	assert.False(t, settings.PullRebase)

	require.NoError(t, SetUserName(root, "Local Name"))
	require.NoError(t, SetPullRebase(root, true))

	settings, err = LoadRepoSettings(root)
	require.NoError(t, err)
	assert.Equal(t, "Local Name", settings.Identity.Name)
	assert.Equal(t, "global@example.com", settings.Identity.Email)
	assert.True(t, settings.PullRebase)
}

func TestResolvePullRebase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PullRebase = false

	assert.False(t, ResolvePullRebase(cfg, nil))
	assert.False(t, ResolvePullRebase(cfg, &RepoSettings{PullRebase: true}))
	assert.True(t, ResolvePullRebase(cfg, &RepoSettings{PullRebase: true, PullRebaseSet: true}))
	assert.True(t, ResolvePullRebase(nil, nil))
}
