package git

import (
	"context"
	"errors"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neontowel/gitix/internal/models"
)

func TestAheadBehindUnbornAndUntracked(t *testing.T) {
	ctx := context.Background()
	syncer := NewSyncer()

	r, repo := newTestRepo(t)
	ahead, behind, err := syncer.AheadBehind(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 0}, [2]int{ahead, behind})

	writeFile(t, r, "a.txt", "1")
	commitAll(t, repo, "one")
	writeFile(t, r, "a.txt", "2")
	commitAll(t, repo, "two")

	ahead, behind, err = syncer.AheadBehind(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 0}, [2]int{ahead, behind})
}

func TestAheadBehindAgainstClone(t *testing.T) {
	origin := newBareOrigin(t)
	r, repo := cloneTestRepo(t, origin)
	ctx := context.Background()
	syncer := NewSyncer()

	ahead, behind, err := syncer.AheadBehind(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 0}, [2]int{ahead, behind})

	writeFile(t, r, "local.txt", "local")
	commitAll(t, repo, "local only")

	ahead, behind, err = syncer.AheadBehind(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 0}, [2]int{ahead, behind})
}

func TestFetchAndPushWithoutRemote(t *testing.T) {
	r, repo := newTestRepo(t)
	writeFile(t, r, "a.txt", "a")
	commitAll(t, repo, "initial")
	ctx := context.Background()
	syncer := NewSyncer()

	op := syncer.Fetch(ctx, r)
	assert.Equal(t, models.SyncFetch, op.Kind)
	assert.Equal(t, models.OutcomeError, op.Outcome)
	assert.Contains(t, op.Message, "remote not found")

	op = syncer.Push(ctx, r)
	assert.Equal(t, models.SyncPush, op.Kind)
	assert.Equal(t, models.OutcomeError, op.Outcome)
	assert.False(t, op.Timestamp.IsZero())
}

func TestPushToUnreachableRemote(t *testing.T) {
	r, repo := newTestRepo(t)
	writeFile(t, r, "a.txt", "a")
	commitAll(t, repo, "initial")
	_, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{r.absPath("does-not-exist")},
	})
	require.NoError(t, err)

	var op models.SyncOperation
	require.NotPanics(t, func() { op = NewSyncer().Push(context.Background(), r) })
	assert.Equal(t, models.OutcomeError, op.Outcome)
	assert.Contains(t, op.Message, "Push failed")
}

func TestPushUnbornBranchFails(t *testing.T) {
	r, _ := newTestRepo(t)
	op := NewSyncer().Push(context.Background(), r)
	assert.Equal(t, models.OutcomeError, op.Outcome)
	assert.Contains(t, op.Message, "unborn branch")
}

func TestFetchFallsBackToExecutable(t *testing.T) {
	r, repo := newTestRepo(t)
	_, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://127.0.0.1:1/unreachable.git"},
	})
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("fallback succeeds", func(t *testing.T) {
		runner := &fakeRunner{}
		op := NewSyncer().Fetch(ctx, r.WithRunner(runner.run))
		assert.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)
		require.NotEmpty(t, runner.calls)
		assert.Equal(t, []string{"git", "fetch", "origin"}, runner.calls[len(runner.calls)-1])
	})

	t.Run("fallback fails once", func(t *testing.T) {
		runner := &fakeRunner{errs: map[string]error{"fetch": errors.New("fatal: unable to access")}}
		err := NewSyncer().fetch(ctx, r.WithRunner(runner.run))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNetwork)
		fetches := 0
		for _, call := range runner.calls {
			if call[1] == "fetch" {
				fetches++
			}
		}
		assert.Equal(t, 1, fetches)
	})

	t.Run("fallback disabled", func(t *testing.T) {
		runner := &fakeRunner{}
		syncer := NewSyncer()
		syncer.FetchFallback = false
		err := syncer.fetch(ctx, r.WithRunner(runner.run))
		assert.ErrorIs(t, err, ErrNetwork)
		for _, call := range runner.calls {
			assert.NotEqual(t, "fetch", call[1])
		}
	})
}

func TestPushFetchRoundTrip(t *testing.T) {
	origin := newBareOrigin(t)
	alice, aliceRepo := cloneTestRepo(t, origin)
	bob, _ := cloneTestRepo(t, origin)
	ctx := context.Background()
	syncer := NewSyncer()

	writeFile(t, alice, "feature.txt", "from alice\n")
	commitAll(t, aliceRepo, "feature")

	op := syncer.Push(ctx, alice)
	require.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)
	assert.Contains(t, op.Message, "Pushed master to origin")

	ahead, behind, err := syncer.AheadBehind(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 0}, [2]int{ahead, behind})

	op = syncer.Push(ctx, alice)
	require.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)
	assert.Contains(t, op.Message, "up to date")

	status, op := syncer.Refresh(ctx, bob)
	require.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)
	assert.Equal(t, "Fetched origin: 0 ahead, 1 behind", op.Message)
	assert.Equal(t, 1, status.Behind)
	assert.True(t, status.HasTracking)
	assert.NotNil(t, status.LastFetch)
	assert.Equal(t, "master", status.Branch)
	assert.Equal(t, origin, status.URL)
}

func TestRemoteStatusDetachedHead(t *testing.T) {
	r, repo := newTestRepo(t)
	writeFile(t, r, "a.txt", "a")
	h := commitAll(t, repo, "initial")
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&gogit.CheckoutOptions{Hash: h}))

	status, err := NewSyncer().RemoteStatus(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "HEAD", status.Branch)
	assert.False(t, status.HasTracking)
}
