package git

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/neontowel/gitix/internal/config"
	"github.com/neontowel/gitix/internal/models"
)

var testSig = object.Signature{Name: "Test User", Email: "test@example.com"}

// newTestRepo initialises a repository with a local identity.
func newTestRepo(t *testing.T) (*Repo, *gogit.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, config.SetUserName(dir, testSig.Name))
	require.NoError(t, config.SetUserEmail(dir, testSig.Email))

	r, err := Discover(dir)
	require.NoError(t, err)
	return r, repo
}

func writeFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	path := r.absPath(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, r *Repo, rel string) string {
	t.Helper()
	data, err := os.ReadFile(r.absPath(rel))
	require.NoError(t, err)
	return string(data)
}

func removeFile(t *testing.T, r *Repo, rel string) {
	t.Helper()
	require.NoError(t, os.Remove(r.absPath(rel)))
}

// commitAll stages everything and commits it.
func commitAll(t *testing.T, repo *gogit.Repository, msg string) plumbing.Hash {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	sig := testSig
	sig.When = time.Now()
	h, err := wt.Commit(msg, &gogit.CommitOptions{Author: &sig, Committer: &sig, AllowEmptyCommits: true})
	require.NoError(t, err)
	return h
}

func computeStatus(t *testing.T, r *Repo) []models.FileStatusRecord {
	t.Helper()
	records, err := NewStatusEngine(LibraryBackend{}).Compute(context.Background(), r)
	require.NoError(t, err)
	return records
}

// withoutSize strips sizes so records compare by path, kind and staged.
func withoutSize(records []models.FileStatusRecord) []models.FileStatusRecord {
	out := make([]models.FileStatusRecord, len(records))
	for i, rec := range records {
		rec.Size = nil
		out[i] = rec
	}
	return out
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := LookupPath("git"); err != nil {
		t.Skip("git executable not available")
	}
}

// cloneTestRepo clones origin into a fresh directory through the file
// transport, which needs git-upload-pack on the host.
func cloneTestRepo(t *testing.T, url string) (*Repo, *gogit.Repository) {
	t.Helper()
	requireGit(t)
	dir := t.TempDir()
	repo, err := gogit.PlainClone(dir, false, &gogit.CloneOptions{URL: url})
	require.NoError(t, err)
	require.NoError(t, config.SetUserName(dir, testSig.Name))
	require.NoError(t, config.SetUserEmail(dir, testSig.Email))
	r, err := Discover(dir)
	require.NoError(t, err)
	return r, repo
}

// fakeRunner answers external commands from a canned table.
type fakeRunner struct {
	calls   [][]string
	outputs map[string][]byte
	errs    map[string]error
}

func (f *fakeRunner) run(_ context.Context, _ string, _ io.Reader, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	key := args[1]
	return f.outputs[key], f.errs[key]
}

// newBareOrigin returns the path of a bare repository holding one commit
// with a.txt.
func newBareOrigin(t *testing.T) string {
	t.Helper()
	requireGit(t)
	seed, seedRepo := newTestRepo(t)
	writeFile(t, seed, "a.txt", "base\n")
	commitAll(t, seedRepo, "initial")

	dir := t.TempDir()
	_, err := gogit.PlainClone(dir, true, &gogit.CloneOptions{URL: seed.Root})
	require.NoError(t, err)
	return dir
}
