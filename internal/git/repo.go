// Package git implements the gitix engine: status reconciliation, index
// staging, commits and remote synchronization. The go-git library is the
// primary backend; the git executable serves as a fallback transport.
package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultRemote is the remote used when none is configured.
const DefaultRemote = "origin"

// Repo is the explicit repository context threaded through every engine
// call. It holds no open handle: each operation opens the repository afresh
// so that changes made by other tools are always observed.
type Repo struct {
	Root   string
	Remote string

	run CommandRunner
}

// Discover locates the repository enclosing path.
func Discover(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, withKind(ErrRepositoryAccess, "resolve path", err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, withKind(ErrRepositoryAccess, fmt.Sprintf("open %s", abs), err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, withKind(ErrRepositoryAccess, "worktree", err)
	}
	return &Repo{Root: wt.Filesystem.Root(), Remote: DefaultRemote, run: ExecRunner}, nil
}

// Init creates a new repository at path and returns its context.
func Init(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, withKind(ErrRepositoryAccess, "resolve path", err)
	}
	if _, err := gogit.PlainInit(abs, false); err != nil {
		return nil, withKind(ErrRepositoryAccess, fmt.Sprintf("init %s", abs), err)
	}
	return &Repo{Root: abs, Remote: DefaultRemote, run: ExecRunner}, nil
}

// WithRunner returns a copy of r that uses run for external commands.
func (r *Repo) WithRunner(run CommandRunner) *Repo {
	c := *r
	c.run = run
	return &c
}

// WithRemote returns a copy of r targeting the named remote.
func (r *Repo) WithRemote(name string) *Repo {
	c := *r
	if name != "" {
		c.Remote = name
	}
	return &c
}

func (r *Repo) remoteName() string {
	if r.Remote == "" {
		return DefaultRemote
	}
	return r.Remote
}

func (r *Repo) runGit(ctx context.Context, stdin io.Reader, args ...string) ([]byte, error) {
	run := r.run
	if run == nil {
		run = ExecRunner
	}
	return run(ctx, r.Root, stdin, append([]string{"git"}, args...)...)
}

func (r *Repo) open() (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(r.Root)
	if err != nil {
		return nil, withKind(ErrRepositoryAccess, fmt.Sprintf("open %s", r.Root), err)
	}
	return repo, nil
}

func (r *Repo) openWorktree() (*gogit.Repository, *gogit.Worktree, error) {
	repo, err := r.open()
	if err != nil {
		return nil, nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, nil, withKind(ErrRepositoryAccess, "worktree", err)
	}
	return repo, wt, nil
}

// relPath converts path (absolute or relative to the root) to a slash
// separated repository path, rejecting anything outside the root.
func (r *Repo) relPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrOutsideRepository)
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.Root, path)
	}
	rel, err := filepath.Rel(r.Root, filepath.Clean(abs))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRepository, path)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRepository, path)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return "", fmt.Errorf("%w: %s", ErrOutsideRepository, path)
	}
	return rel, nil
}

func (r *Repo) absPath(rel string) string {
	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

func (r *Repo) gitDir() string {
	return filepath.Join(r.Root, ".git")
}

// GitDir returns the repository's metadata directory.
func (r *Repo) GitDir() string {
	return r.gitDir()
}

func fileSize(path string) *int64 {
	info, err := os.Lstat(path)
	if err != nil {
		return nil
	}
	size := info.Size()
	return &size
}

// currentBranch returns the branch HEAD points at, even when it is unborn.
func currentBranch(repo *gogit.Repository) (plumbing.ReferenceName, error) {
	ref, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", withKind(ErrRepositoryAccess, "read HEAD", err)
	}
	if ref.Type() != plumbing.SymbolicReference || !ref.Target().IsBranch() {
		return "", ErrDetachedHead
	}
	return ref.Target(), nil
}

// headCommit resolves HEAD to a commit. An unborn branch yields ErrUnbornBranch.
func headCommit(repo *gogit.Repository) (*object.Commit, error) {
	ref, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, ErrUnbornBranch
	}
	if err != nil {
		return nil, withKind(ErrRepositoryAccess, "resolve HEAD", err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, withKind(ErrObjectAccess, fmt.Sprintf("commit %s", ref.Hash()), err)
	}
	return commit, nil
}
