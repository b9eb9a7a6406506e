package git

import (
	"context"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateGlobalConfig points the user level git config at an empty home.
func isolateGlobalConfig(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
}

func TestCommitStagedChanges(t *testing.T) {
	r, repo := newTestRepo(t)
	ctx := context.Background()
	writeFile(t, r, "a.txt", "a\n")
	writeFile(t, r, "b.txt", "left alone\n")
	require.NoError(t, NewStager(nil).Stage(ctx, r, "a.txt"))

	hash, err := NewCommitter(nil).Commit(ctx, r, "  add a  \n")
	require.NoError(t, err)
	require.Len(t, hash, 40)

	head, err := headCommit(repo)
	require.NoError(t, err)
	assert.Equal(t, hash, head.Hash.String())
	assert.Equal(t, "add a\n", head.Message)
	assert.Equal(t, testSig.Name, head.Author.Name)
	assert.Equal(t, testSig.Email, head.Committer.Email)

	_, err = head.File("b.txt")
	assert.Error(t, err, "unstaged files stay out of the commit")
	assert.Len(t, computeStatus(t, r), 1)
}

func TestCommitNothingStaged(t *testing.T) {
	r, repo := newTestRepo(t)
	writeFile(t, r, "a.txt", "a\n")
	commitAll(t, repo, "initial")
	writeFile(t, r, "a.txt", "unstaged edit\n")

	_, err := NewCommitter(nil).Commit(context.Background(), r, "nothing here")
	assert.ErrorIs(t, err, ErrNothingToCommit)
}

func TestCommitRejectsEmptyMessage(t *testing.T) {
	r, _ := newTestRepo(t)
	writeFile(t, r, "a.txt", "a\n")
	require.NoError(t, NewStager(nil).Stage(context.Background(), r, "a.txt"))

	_, err := NewCommitter(nil).Commit(context.Background(), r, " \n\t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message")
}

func TestCommitRequiresIdentity(t *testing.T) {
	isolateGlobalConfig(t)
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	r, err := Discover(dir)
	require.NoError(t, err)

	ctx := context.Background()
	writeFile(t, r, "a.txt", "a\n")
	require.NoError(t, NewStager(nil).Stage(ctx, r, "a.txt"))

	_, err = NewCommitter(nil).Commit(ctx, r, "no author")
	assert.ErrorIs(t, err, ErrMissingIdentity)

	repo, err := r.open()
	require.NoError(t, err)
	_, err = headCommit(repo)
	assert.ErrorIs(t, err, ErrUnbornBranch, "no commit may be created")
}
