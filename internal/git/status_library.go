package git

import (
	"context"
	"errors"
	"io"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/neontowel/gitix/internal/models"
)

// LibraryBackend computes status in process with go-git.
type LibraryBackend struct{}

// Name implements StatusBackend.
func (LibraryBackend) Name() string { return "go-git" }

// Compute implements StatusBackend.
func (LibraryBackend) Compute(ctx context.Context, r *Repo) ([]models.FileStatusRecord, error) {
	repo, wt, err := r.openWorktree()
	if err != nil {
		return nil, err
	}

	// Unstaged pass: index against worktree.
	status, err := wt.Status()
	if err != nil {
		return nil, withKind(ErrRepositoryAccess, "worktree status", err)
	}
	rec := newReconciler()
	for path, fs := range status {
		switch fs.Worktree {
		case gogit.Untracked:
			rec.addUnstaged(path, models.StatusUntracked)
		case gogit.Deleted:
			rec.addUnstaged(path, models.StatusDeleted)
		case gogit.Modified, gogit.Renamed, gogit.Copied, gogit.UpdatedButUnmerged:
			rec.addUnstaged(path, models.StatusModified)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	staged, err := stagedChanges(repo)
	if err != nil {
		return nil, err
	}
	for path, kind := range staged {
		rec.addStaged(path, kind)
	}
	return rec.records(r), nil
}

type treeEntry struct {
	hash plumbing.Hash
	mode filemode.FileMode
}

// headEntries flattens the HEAD tree into path -> entry. An unborn branch
// returns ErrUnbornBranch.
func headEntries(repo *gogit.Repository) (map[string]treeEntry, error) {
	commit, err := headCommit(repo)
	if err != nil {
		return nil, err
	}
	return commitEntries(commit)
}

func commitEntries(commit *object.Commit) (map[string]treeEntry, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, withKind(ErrObjectAccess, "tree of "+commit.Hash.String(), err)
	}
	return flattenTree(tree)
}

func flattenTree(tree *object.Tree) (map[string]treeEntry, error) {
	entries := make(map[string]treeEntry)
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, withKind(ErrObjectAccess, "walk tree "+tree.Hash.String(), err)
		}
		if entry.Mode == filemode.Dir {
			continue
		}
		entries[name] = treeEntry{hash: entry.Hash, mode: entry.Mode}
	}
	return entries, nil
}

// stagedChanges diffs the live index against HEAD.
func stagedChanges(repo *gogit.Repository) (map[string]models.StatusKind, error) {
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, withKind(ErrIndexIO, "read index", err)
	}

	changes := make(map[string]models.StatusKind)
	head, err := headEntries(repo)
	if errors.Is(err, ErrUnbornBranch) {
		for _, e := range idx.Entries {
			changes[e.Name] = models.StatusAdded
		}
		return changes, nil
	}
	if err != nil {
		return nil, err
	}

	inIndex := make(map[string]struct{}, len(idx.Entries))
	for _, e := range idx.Entries {
		inIndex[e.Name] = struct{}{}
		h, ok := head[e.Name]
		switch {
		case !ok:
			changes[e.Name] = models.StatusAdded
		case modeType(h.mode) != modeType(e.Mode):
			changes[e.Name] = models.StatusTypeChanged
		case h.hash != e.Hash || h.mode != e.Mode:
			changes[e.Name] = models.StatusModified
		}
	}
	for path := range head {
		if _, ok := inIndex[path]; !ok {
			changes[path] = models.StatusDeleted
		}
	}
	return changes, nil
}

type fileType int

const (
	typeFile fileType = iota
	typeSymlink
	typeGitlink
)

func modeType(m filemode.FileMode) fileType {
	switch m {
	case filemode.Symlink:
		return typeSymlink
	case filemode.Submodule:
		return typeGitlink
	default:
		return typeFile
	}
}
