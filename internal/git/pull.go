package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	log "github.com/neontowel/gitix/internal/log"
	"github.com/neontowel/gitix/internal/models"
)

const upToDateMessage = "Already up to date"

// Pull fetches and then integrates the remote tracking branch into the
// current branch, either with a merge commit or by replaying local commits.
func (s *Syncer) Pull(ctx context.Context, r *Repo, rebase bool) models.SyncOperation {
	if err := s.fetch(ctx, r); err != nil {
		return syncResult(models.SyncPull, "Pull aborted, fetch failed", err)
	}
	msg, err := s.integrate(ctx, r, rebase)
	if err != nil {
		return syncResult(models.SyncPull, "Pull failed", err)
	}
	return syncResult(models.SyncPull, msg, nil)
}

func (s *Syncer) integrate(ctx context.Context, r *Repo, rebase bool) (string, error) {
	repo, wt, err := r.openWorktree()
	if err != nil {
		return "", err
	}
	branch, err := currentBranch(repo)
	if err != nil {
		return "", err
	}
	remote := r.remoteName()
	ref, err := trackingRef(repo, remote, branch)
	if err != nil {
		return "", fmt.Errorf("%s/%s: %w", remote, branch.Short(), err)
	}
	theirs, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return "", withKind(ErrObjectAccess, "remote tip", err)
	}
	upstream := fmt.Sprintf("%s/%s", remote, branch.Short())

	ours, err := headCommit(repo)
	if errors.Is(err, ErrUnbornBranch) {
		if err := moveBranch(repo, wt, nil, theirs.Hash); err != nil {
			return "", err
		}
		return fmt.Sprintf("Checked out %s at %s", upstream, shortHash(theirs.Hash)), nil
	}
	if err != nil {
		return "", err
	}

	if ours.Hash == theirs.Hash {
		return upToDateMessage, nil
	}
	if contained, err := theirs.IsAncestor(ours); err != nil {
		return "", withKind(ErrObjectAccess, "ancestry", err)
	} else if contained {
		return upToDateMessage, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if ff, err := ours.IsAncestor(theirs); err != nil {
		return "", withKind(ErrObjectAccess, "ancestry", err)
	} else if ff {
		if err := moveBranch(repo, wt, ours, theirs.Hash); err != nil {
			return "", err
		}
		return fmt.Sprintf("Fast-forwarded to %s", shortHash(theirs.Hash)), nil
	}

	id, err := loadIdentity(r)
	if err != nil {
		return "", err
	}
	committer := signature(id, time.Now())

	if rebase {
		tip, count, err := rebaseCommits(ctx, repo, ours, theirs, committer)
		if err != nil {
			return "", err
		}
		if err := moveBranch(repo, wt, ours, tip); err != nil {
			return "", err
		}
		return fmt.Sprintf("Rebased %d commit(s) onto %s", count, upstream), nil
	}

	tip, err := mergeCommits(repo, ours, theirs, committer, fmt.Sprintf("Merge %s into %s", upstream, branch.Short()))
	if err != nil {
		return "", err
	}
	if err := moveBranch(repo, wt, ours, tip); err != nil {
		return "", err
	}
	return fmt.Sprintf("Merged %s", upstream), nil
}

func mergeCommits(repo *gogit.Repository, ours, theirs *object.Commit, sig *object.Signature, message string) (plumbing.Hash, error) {
	base, err := mergeBase(ours, theirs)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	oursEntries, err := commitEntries(ours)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	theirsEntries, err := commitEntries(theirs)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	merged, conflicts := mergeTrees(base, oursEntries, theirsEntries)
	if len(conflicts) > 0 {
		return plumbing.ZeroHash, fmt.Errorf("%w: merge conflicts detected: %s", ErrConflict, strings.Join(conflicts, ", "))
	}
	tree, err := writeTree(repo, merged)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return writeCommit(repo, &object.Commit{
		Author:       *sig,
		Committer:    *sig,
		Message:      message + "\n",
		TreeHash:     tree,
		ParentHashes: []plumbing.Hash{ours.Hash, theirs.Hash},
	})
}

// localOnlyCommits walks the first-parent chain of ours back to the first
// commit reachable from theirs and returns the walked commits oldest first.
func localOnlyCommits(repo *gogit.Repository, ours, theirs *object.Commit) ([]*object.Commit, error) {
	upstream, err := reachable(repo, theirs.Hash)
	if err != nil {
		return nil, err
	}
	var chain []*object.Commit
	for c := ours; c != nil; {
		if _, ok := upstream[c.Hash]; ok {
			break
		}
		chain = append(chain, c)
		if c.NumParents() == 0 {
			break
		}
		parent, err := c.Parent(0)
		if err != nil {
			return nil, withKind(ErrObjectAccess, "parent of "+c.Hash.String(), err)
		}
		c = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// rebaseCommits replays the local-only commits on top of theirs and returns
// the new tip with the number of commits replayed. Nothing is written to
// refs; on the first conflict the replay stops and the partially built
// commits are left unreferenced. A commit whose change is already upstream
// is dropped instead of being replayed empty.
func rebaseCommits(ctx context.Context, repo *gogit.Repository, ours, theirs *object.Commit, committer *object.Signature) (plumbing.Hash, int, error) {
	commits, err := localOnlyCommits(repo, ours, theirs)
	if err != nil {
		return plumbing.ZeroHash, 0, err
	}
	onto, err := commitEntries(theirs)
	if err != nil {
		return plumbing.ZeroHash, 0, err
	}

	tip := theirs.Hash
	replayed := 0
	for _, c := range commits {
		if err := ctx.Err(); err != nil {
			return plumbing.ZeroHash, 0, err
		}
		base := map[string]treeEntry{}
		if c.NumParents() > 0 {
			parent, err := c.Parent(0)
			if err != nil {
				return plumbing.ZeroHash, 0, withKind(ErrObjectAccess, "parent of "+c.Hash.String(), err)
			}
			if base, err = commitEntries(parent); err != nil {
				return plumbing.ZeroHash, 0, err
			}
		}
		changed, err := commitEntries(c)
		if err != nil {
			return plumbing.ZeroHash, 0, err
		}

		merged, conflicts := mergeTrees(base, onto, changed)
		if len(conflicts) > 0 {
			return plumbing.ZeroHash, 0, fmt.Errorf("%w: rebase stopped at %s: conflicts in %s",
				ErrConflict, shortHash(c.Hash), strings.Join(conflicts, ", "))
		}
		if sameEntries(merged, onto) && !sameEntries(base, changed) {
			log.Debug("dropped commit already upstream", "commit", c.Hash.String())
			continue
		}
		tree, err := writeTree(repo, merged)
		if err != nil {
			return plumbing.ZeroHash, 0, err
		}
		tip, err = writeCommit(repo, &object.Commit{
			Author:       c.Author,
			Committer:    *committer,
			Message:      c.Message,
			TreeHash:     tree,
			ParentHashes: []plumbing.Hash{tip},
		})
		if err != nil {
			return plumbing.ZeroHash, 0, err
		}
		log.Debug("replayed commit", "from", c.Hash.String(), "to", tip.String())
		onto = merged
		replayed++
	}
	return tip, replayed, nil
}

func sameEntries(a, b map[string]treeEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for p, e := range a {
		if other, ok := b[p]; !ok || other != e {
			return false
		}
	}
	return true
}

// moveBranch points the current branch at target and brings the index and
// worktree along. It refuses when tracked files carry local changes or an
// untracked file would be overwritten.
func moveBranch(repo *gogit.Repository, wt *gogit.Worktree, current *object.Commit, target plumbing.Hash) error {
	status, err := wt.Status()
	if err != nil {
		return withKind(ErrRepositoryAccess, "worktree status", err)
	}

	targetCommit, err := repo.CommitObject(target)
	if err != nil {
		return withKind(ErrObjectAccess, "target commit", err)
	}
	incoming, err := commitEntries(targetCommit)
	if err != nil {
		return err
	}
	tracked := map[string]treeEntry{}
	if current != nil {
		if tracked, err = commitEntries(current); err != nil {
			return err
		}
	}

	var dirty, collisions []string
	for path, fs := range status {
		if fs.Worktree == gogit.Untracked {
			if _, ok := incoming[path]; ok {
				if _, wasTracked := tracked[path]; !wasTracked {
					collisions = append(collisions, path)
				}
			}
			continue
		}
		if fs.Staging != gogit.Unmodified || fs.Worktree != gogit.Unmodified {
			dirty = append(dirty, path)
		}
	}
	if len(dirty) > 0 {
		return fmt.Errorf("%w: %s", ErrDirtyWorktree, strings.Join(sortedCopy(dirty), ", "))
	}
	if len(collisions) > 0 {
		return fmt.Errorf("%w: untracked files would be overwritten: %s", ErrDirtyWorktree, strings.Join(sortedCopy(collisions), ", "))
	}

	head, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return withKind(ErrRepositoryAccess, "read HEAD", err)
	}
	branch := head.Name()
	if head.Type() == plumbing.SymbolicReference {
		branch = head.Target()
	}

	// Reset moves the branch before it touches the index and worktree.
	if err := wt.Reset(&gogit.ResetOptions{Commit: target, Mode: gogit.MergeReset}); err != nil {
		restoreBranch(repo, wt, branch, current)
		return withKind(ErrIndexIO, "update worktree", err)
	}
	return nil
}

// restoreBranch points branch back at current, or deletes it when the
// branch was unborn, and then resets the index and worktree to match.
func restoreBranch(repo *gogit.Repository, wt *gogit.Worktree, branch plumbing.ReferenceName, current *object.Commit) {
	if current == nil {
		if err := repo.Storer.RemoveReference(branch); err != nil {
			log.Error("failed to restore unborn branch", "branch", branch.String(), "error", err)
		}
		return
	}
	if err := repo.Storer.SetReference(plumbing.NewHashReference(branch, current.Hash)); err != nil {
		log.Error("failed to restore branch", "branch", branch.String(), "commit", current.Hash.String(), "error", err)
		return
	}
	if err := wt.Reset(&gogit.ResetOptions{Commit: current.Hash, Mode: gogit.HardReset}); err != nil {
		log.Warn("failed to restore worktree", "commit", current.Hash.String(), "error", err)
	}
}

func shortHash(h plumbing.Hash) string {
	return h.String()[:7]
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
