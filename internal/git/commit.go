package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/neontowel/gitix/internal/config"
	log "github.com/neontowel/gitix/internal/log"
)

// Committer records the staged index as a new commit on the current branch.
type Committer struct {
	status *StatusEngine
}

// NewCommitter returns a Committer using status to detect staged changes.
func NewCommitter(status *StatusEngine) *Committer {
	if status == nil {
		status = NewStatusEngine()
	}
	return &Committer{status: status}
}

// loadIdentity resolves the author for commits created by gitix.
func loadIdentity(r *Repo) (config.Identity, error) {
	settings, err := config.LoadRepoSettings(r.Root)
	if err != nil {
		return config.Identity{}, withKind(ErrRepositoryAccess, "read identity", err)
	}
	if !settings.Identity.Complete() {
		return config.Identity{}, ErrMissingIdentity
	}
	return settings.Identity, nil
}

func signature(id config.Identity, when time.Time) *object.Signature {
	return &object.Signature{Name: id.Name, Email: id.Email, When: when}
}

// Commit creates a commit from the index and returns its hash. The go-git
// path is used first; the git executable is the fallback.
func (c *Committer) Commit(ctx context.Context, r *Repo, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("commit message must not be empty")
	}

	records, err := c.status.Compute(ctx, r)
	if err != nil {
		return "", err
	}
	if !HasStaged(records) {
		return "", ErrNothingToCommit
	}

	id, err := loadIdentity(r)
	if err != nil {
		return "", err
	}

	hash, err := commitWithLibrary(r, message, id)
	if err == nil {
		log.Info("commit created", "hash", hash)
		return hash, nil
	}
	log.Warn("library commit failed, retrying with git executable", "error", err)

	if _, ferr := r.runGit(ctx, nil, "commit", "-m", message); ferr != nil {
		return "", withKind(ErrIndexIO, "commit", errors.Join(err, ferr))
	}
	repo, oerr := r.open()
	if oerr != nil {
		return "", oerr
	}
	head, herr := headCommit(repo)
	if herr != nil {
		return "", herr
	}
	log.Info("commit created by git executable", "hash", head.Hash.String())
	return head.Hash.String(), nil
}

func commitWithLibrary(r *Repo, message string, id config.Identity) (string, error) {
	_, wt, err := r.openWorktree()
	if err != nil {
		return "", err
	}
	sig := signature(id, time.Now())
	hash, err := wt.Commit(message+"\n", &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return "", fmt.Errorf("go-git commit: %w", err)
	}
	return hash.String(), nil
}
