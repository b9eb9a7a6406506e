package git

import (
	"context"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neontowel/gitix/internal/models"
)

// divergedClones returns two clones of a shared origin. upstream has pushed
// upstreamFile; local holds an unpushed commit with localFile.
func divergedClones(t *testing.T, upstreamFile, upstreamContent, localFile, localContent string) (local *Repo, localRepo *gogit.Repository) {
	t.Helper()
	origin := newBareOrigin(t)
	up, upRepo := cloneTestRepo(t, origin)
	local, localRepo = cloneTestRepo(t, origin)

	writeFile(t, up, upstreamFile, upstreamContent)
	commitAll(t, upRepo, "upstream change")
	op := NewSyncer().Push(context.Background(), up)
	require.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)

	writeFile(t, local, localFile, localContent)
	commitAll(t, localRepo, "local change")
	return local, localRepo
}

func headHash(t *testing.T, repo *gogit.Repository) string {
	t.Helper()
	ref, err := repo.Head()
	require.NoError(t, err)
	return ref.Hash().String()
}

func TestPullUpToDate(t *testing.T) {
	origin := newBareOrigin(t)
	r, repo := cloneTestRepo(t, origin)
	before := headHash(t, repo)

	for _, rebase := range []bool{true, false} {
		op := NewSyncer().Pull(context.Background(), r, rebase)
		assert.Equal(t, models.SyncPull, op.Kind)
		assert.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)
		assert.Contains(t, op.Message, "up to date")
		assert.Equal(t, before, headHash(t, repo))
	}
}

func TestPullLocalAheadIsUpToDate(t *testing.T) {
	origin := newBareOrigin(t)
	r, repo := cloneTestRepo(t, origin)
	writeFile(t, r, "mine.txt", "x")
	before := commitAll(t, repo, "local").String()

	op := NewSyncer().Pull(context.Background(), r, false)
	assert.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)
	assert.Contains(t, op.Message, "up to date")
	assert.Equal(t, before, headHash(t, repo))
}

func TestPullFastForward(t *testing.T) {
	origin := newBareOrigin(t)
	up, upRepo := cloneTestRepo(t, origin)
	r, repo := cloneTestRepo(t, origin)
	ctx := context.Background()

	writeFile(t, up, "new.txt", "incoming\n")
	upTip := commitAll(t, upRepo, "upstream")
	require.True(t, NewSyncer().Push(ctx, up).Succeeded())

	op := NewSyncer().Pull(ctx, r, false)
	require.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)
	assert.Contains(t, op.Message, "Fast-forwarded")
	assert.Equal(t, upTip.String(), headHash(t, repo))
	assert.Equal(t, "incoming\n", readFile(t, r, "new.txt"))
	assert.Empty(t, computeStatus(t, r))
}

func TestPullMergeCreatesMergeCommit(t *testing.T) {
	r, repo := divergedClones(t, "theirs.txt", "theirs\n", "ours.txt", "ours\n")
	ctx := context.Background()

	op := NewSyncer().Pull(ctx, r, false)
	require.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)
	assert.Equal(t, "Merged origin/master", op.Message)

	head, err := headCommit(repo)
	require.NoError(t, err)
	assert.Equal(t, 2, head.NumParents())
	assert.Equal(t, testSig.Name, head.Author.Name)

	assert.Equal(t, "theirs\n", readFile(t, r, "theirs.txt"))
	assert.Equal(t, "ours\n", readFile(t, r, "ours.txt"))
	assert.Empty(t, computeStatus(t, r))

	ahead, behind, err := NewSyncer().AheadBehind(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, [2]int{2, 0}, [2]int{ahead, behind})
}

func TestPullMergeConflict(t *testing.T) {
	r, repo := divergedClones(t, "a.txt", "upstream edit\n", "a.txt", "local edit\n")
	before := headHash(t, repo)

	op := NewSyncer().Pull(context.Background(), r, false)
	assert.Equal(t, models.OutcomeError, op.Outcome)
	assert.Contains(t, op.Message, "merge conflicts detected: a.txt")
	assert.Equal(t, before, headHash(t, repo))
	assert.Equal(t, "local edit\n", readFile(t, r, "a.txt"))
}

func TestPullRebaseReplaysLocalCommits(t *testing.T) {
	r, repo := divergedClones(t, "theirs.txt", "theirs\n", "ours.txt", "ours\n")
	ctx := context.Background()

	op := NewSyncer().Pull(ctx, r, true)
	require.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)
	assert.Equal(t, "Rebased 1 commit(s) onto origin/master", op.Message)

	head, err := headCommit(repo)
	require.NoError(t, err)
	require.Equal(t, 1, head.NumParents())
	assert.Equal(t, "local change", head.Message)

	tracking, err := repo.Reference("refs/remotes/origin/master", true)
	require.NoError(t, err)
	assert.Equal(t, tracking.Hash(), head.ParentHashes[0])

	assert.Equal(t, "theirs\n", readFile(t, r, "theirs.txt"))
	assert.Equal(t, "ours\n", readFile(t, r, "ours.txt"))

	ahead, behind, err := NewSyncer().AheadBehind(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 0}, [2]int{ahead, behind})
}

func TestPullRebaseConflictLeavesBranchAlone(t *testing.T) {
	r, repo := divergedClones(t, "a.txt", "upstream edit\n", "a.txt", "local edit\n")
	before := headHash(t, repo)

	op := NewSyncer().Pull(context.Background(), r, true)
	assert.Equal(t, models.OutcomeError, op.Outcome)
	assert.Contains(t, op.Message, "rebase stopped at")
	assert.Contains(t, op.Message, "a.txt")
	assert.Equal(t, before, headHash(t, repo))
}

func TestPullRebaseKeepsLocalCommitOrder(t *testing.T) {
	r, repo := divergedClones(t, "theirs.txt", "theirs\n", "ours.txt", "ours\n")
	writeFile(t, r, "second.txt", "second\n")
	commitAll(t, repo, "second local change")
	ctx := context.Background()

	op := NewSyncer().Pull(ctx, r, true)
	require.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)
	assert.Equal(t, "Rebased 2 commit(s) onto origin/master", op.Message)

	head, err := headCommit(repo)
	require.NoError(t, err)
	assert.Equal(t, "second local change", head.Message)
	require.Equal(t, 1, head.NumParents())

	parent, err := head.Parent(0)
	require.NoError(t, err)
	assert.Equal(t, "local change", parent.Message)
	require.Equal(t, 1, parent.NumParents())

	tracking, err := repo.Reference("refs/remotes/origin/master", true)
	require.NoError(t, err)
	assert.Equal(t, tracking.Hash(), parent.ParentHashes[0])

	assert.Equal(t, "theirs\n", readFile(t, r, "theirs.txt"))
	assert.Equal(t, "ours\n", readFile(t, r, "ours.txt"))
	assert.Equal(t, "second\n", readFile(t, r, "second.txt"))
	assert.Empty(t, computeStatus(t, r))
}

func TestPullRebaseConflictInLaterCommitLeavesBranchAlone(t *testing.T) {
	r, repo := divergedClones(t, "a.txt", "upstream edit\n", "ours.txt", "ours\n")
	writeFile(t, r, "a.txt", "local edit\n")
	second := commitAll(t, repo, "conflicting change")

	op := NewSyncer().Pull(context.Background(), r, true)
	assert.Equal(t, models.OutcomeError, op.Outcome)
	assert.Contains(t, op.Message, "rebase stopped at "+shortHash(second)+": conflicts in a.txt")
	assert.Equal(t, second.String(), headHash(t, repo))
	assert.Equal(t, "local edit\n", readFile(t, r, "a.txt"))
	assert.Empty(t, computeStatus(t, r))
}

func TestPullRebaseDropsCommitsAlreadyUpstream(t *testing.T) {
	r, repo := divergedClones(t, "same.txt", "same\n", "same.txt", "same\n")
	writeFile(t, r, "mine.txt", "mine\n")
	commitAll(t, repo, "unique change")

	op := NewSyncer().Pull(context.Background(), r, true)
	require.Equal(t, models.OutcomeSuccess, op.Outcome, op.Message)
	assert.Equal(t, "Rebased 1 commit(s) onto origin/master", op.Message)

	head, err := headCommit(repo)
	require.NoError(t, err)
	assert.Equal(t, "unique change", head.Message)
	tracking, err := repo.Reference("refs/remotes/origin/master", true)
	require.NoError(t, err)
	require.Equal(t, 1, head.NumParents())
	assert.Equal(t, tracking.Hash(), head.ParentHashes[0])
}

func TestPullFileDirectoryCollisionIsAConflict(t *testing.T) {
	for _, rebase := range []bool{false, true} {
		r, repo := divergedClones(t, "x", "file\n", "x/y", "nested\n")
		before := headHash(t, repo)

		op := NewSyncer().Pull(context.Background(), r, rebase)
		assert.Equal(t, models.OutcomeError, op.Outcome)
		if rebase {
			assert.Contains(t, op.Message, "conflicts in x")
		} else {
			assert.Contains(t, op.Message, "merge conflicts detected: x")
		}
		assert.Equal(t, before, headHash(t, repo))
		assert.Equal(t, "nested\n", readFile(t, r, "x/y"))
	}
}

func TestMoveBranchRestoresBranchWhenCheckoutFails(t *testing.T) {
	r, repo := newTestRepo(t)
	writeFile(t, r, "a.txt", "a\n")
	before := commitAll(t, repo, "initial")

	// The tree names a blob that was never stored, so checkout fails after
	// the branch has already moved.
	entries, err := headEntries(repo)
	require.NoError(t, err)
	entries["ghost.txt"] = blob("never stored\n")
	tree, err := writeTree(repo, entries)
	require.NoError(t, err)
	sig := testSig
	sig.When = time.Now()
	target, err := writeCommit(repo, &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      "broken\n",
		TreeHash:     tree,
		ParentHashes: []plumbing.Hash{before},
	})
	require.NoError(t, err)

	current, err := headCommit(repo)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	err = moveBranch(repo, wt, current, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexIO)
	assert.Equal(t, before.String(), headHash(t, repo))
	assert.Equal(t, "a\n", readFile(t, r, "a.txt"))
	assert.NoFileExists(t, r.absPath("ghost.txt"))
	assert.Empty(t, computeStatus(t, r))
}

func TestPullRefusesDirtyWorktree(t *testing.T) {
	r, repo := divergedClones(t, "theirs.txt", "theirs\n", "ours.txt", "ours\n")
	before := headHash(t, repo)
	writeFile(t, r, "a.txt", "uncommitted\n")

	op := NewSyncer().Pull(context.Background(), r, false)
	assert.Equal(t, models.OutcomeError, op.Outcome)
	assert.Contains(t, op.Message, "uncommitted changes")
	assert.Equal(t, before, headHash(t, repo))
	assert.Equal(t, "uncommitted\n", readFile(t, r, "a.txt"))
}

func TestPullRefusesUntrackedCollision(t *testing.T) {
	origin := newBareOrigin(t)
	up, upRepo := cloneTestRepo(t, origin)
	r, _ := cloneTestRepo(t, origin)
	ctx := context.Background()

	writeFile(t, up, "clash.txt", "upstream\n")
	commitAll(t, upRepo, "upstream")
	require.True(t, NewSyncer().Push(ctx, up).Succeeded())

	writeFile(t, r, "clash.txt", "mine, untracked\n")
	op := NewSyncer().Pull(ctx, r, false)
	assert.Equal(t, models.OutcomeError, op.Outcome)
	assert.Contains(t, op.Message, "untracked files would be overwritten: clash.txt")
	assert.Equal(t, "mine, untracked\n", readFile(t, r, "clash.txt"))
}

func TestPullWithoutRemoteFails(t *testing.T) {
	r, repo := newTestRepo(t)
	writeFile(t, r, "a.txt", "a")
	commitAll(t, repo, "initial")

	op := NewSyncer().Pull(context.Background(), r, true)
	assert.Equal(t, models.OutcomeError, op.Outcome)
	assert.Contains(t, op.Message, "fetch failed")
}
