package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	log "github.com/neontowel/gitix/internal/log"
	"github.com/neontowel/gitix/internal/models"
)

// Syncer drives fetch, pull and push against the repository's remote.
// Every call is synchronous and returns a SyncOperation instead of failing.
type Syncer struct {
	Credentials CredentialChain
	// FetchFallback enables one retry through the git executable when the
	// library transport fails.
	FetchFallback bool
}

// NewSyncer returns a Syncer with the default credential chain.
func NewSyncer() *Syncer {
	return &Syncer{Credentials: DefaultCredentialChain(), FetchFallback: true}
}

func syncResult(kind models.SyncKind, msg string, err error) models.SyncOperation {
	if err != nil {
		log.Error("sync failed", "kind", kind.String(), "error", err)
		return models.NewSyncOperation(kind, models.OutcomeError, fmt.Sprintf("%s: %v", msg, err))
	}
	log.Info("sync succeeded", "kind", kind.String(), "message", msg)
	return models.NewSyncOperation(kind, models.OutcomeSuccess, msg)
}

func lookupRemote(repo *gogit.Repository, name string) (*gogit.Remote, *transport.Endpoint, error) {
	remote, err := repo.Remote(name)
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
	}
	if err != nil {
		return nil, nil, withKind(ErrRepositoryAccess, "remote "+name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return nil, nil, fmt.Errorf("%w: %s has no URL", ErrRemoteNotFound, name)
	}
	ep, err := transport.NewEndpoint(urls[0])
	if err != nil {
		return nil, nil, withKind(ErrNetwork, "parse remote URL", err)
	}
	return remote, ep, nil
}

// Fetch downloads new objects and refs from the remote.
func (s *Syncer) Fetch(ctx context.Context, r *Repo) models.SyncOperation {
	if err := s.fetch(ctx, r); err != nil {
		return syncResult(models.SyncFetch, "Fetch failed", err)
	}
	return syncResult(models.SyncFetch, fmt.Sprintf("Fetched %s", r.remoteName()), nil)
}

func (s *Syncer) fetch(ctx context.Context, r *Repo) error {
	repo, err := r.open()
	if err != nil {
		return err
	}
	name := r.remoteName()
	_, ep, err := lookupRemote(repo, name)
	if err != nil {
		return err
	}

	err = s.Credentials.withAuth(ctx, r, ep, func(auth transport.AuthMethod) error {
		err := repo.FetchContext(ctx, &gogit.FetchOptions{RemoteName: name, Auth: auth})
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return nil
		}
		return err
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAuthentication) || ctx.Err() != nil || !s.FetchFallback {
		return withKind(ErrNetwork, "fetch "+name, err)
	}

	log.Warn("library fetch failed, retrying with git executable", "remote", name, "error", err)
	if _, ferr := r.runGit(ctx, nil, "fetch", name); ferr != nil {
		return withKind(ErrNetwork, "fetch "+name, errors.Join(err, ferr))
	}
	return nil
}

// trackingRef returns the remote tracking reference of the current branch.
func trackingRef(repo *gogit.Repository, remote string, branch plumbing.ReferenceName) (*plumbing.Reference, error) {
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName(remote, branch.Short()), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, ErrNoTrackingBranch
	}
	if err != nil {
		return nil, withKind(ErrRepositoryAccess, "tracking ref", err)
	}
	return ref, nil
}

// reachable returns every commit reachable from h.
func reachable(repo *gogit.Repository, h plumbing.Hash) (map[plumbing.Hash]struct{}, error) {
	iter, err := repo.Log(&gogit.LogOptions{From: h})
	if err != nil {
		return nil, withKind(ErrObjectAccess, "log "+h.String(), err)
	}
	defer iter.Close()
	seen := make(map[plumbing.Hash]struct{})
	err = iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, withKind(ErrObjectAccess, "walk history", err)
	}
	return seen, nil
}

// AheadBehind counts commits only on the local branch and only on its
// remote tracking branch. Without a tracking branch every local commit is
// ahead. An unborn branch is (0, 0).
func (s *Syncer) AheadBehind(_ context.Context, r *Repo) (ahead, behind int, err error) {
	repo, err := r.open()
	if err != nil {
		return 0, 0, err
	}
	ahead, behind, _, err = aheadBehind(repo, r.remoteName())
	return ahead, behind, err
}

func aheadBehind(repo *gogit.Repository, remote string) (ahead, behind int, tracking bool, err error) {
	local, err := headCommit(repo)
	if errors.Is(err, ErrUnbornBranch) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	localSet, err := reachable(repo, local.Hash)
	if err != nil {
		return 0, 0, false, err
	}

	branch, err := currentBranch(repo)
	if err != nil {
		return 0, 0, false, err
	}
	ref, err := trackingRef(repo, remote, branch)
	if errors.Is(err, ErrNoTrackingBranch) {
		return len(localSet), 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	remoteSet, err := reachable(repo, ref.Hash())
	if err != nil {
		return 0, 0, false, err
	}

	for h := range localSet {
		if _, ok := remoteSet[h]; !ok {
			ahead++
		}
	}
	for h := range remoteSet {
		if _, ok := localSet[h]; !ok {
			behind++
		}
	}
	return ahead, behind, true, nil
}

// Push uploads the current branch to the same name on the remote. The
// remote ref is updated atomically or not at all.
func (s *Syncer) Push(ctx context.Context, r *Repo) models.SyncOperation {
	msg, err := s.push(ctx, r)
	if err != nil {
		return syncResult(models.SyncPush, "Push failed", err)
	}
	return syncResult(models.SyncPush, msg, nil)
}

func (s *Syncer) push(ctx context.Context, r *Repo) (string, error) {
	repo, err := r.open()
	if err != nil {
		return "", err
	}
	branch, err := currentBranch(repo)
	if err != nil {
		return "", err
	}
	if _, err := headCommit(repo); err != nil {
		return "", err
	}
	name := r.remoteName()
	_, ep, err := lookupRemote(repo, name)
	if err != nil {
		return "", err
	}

	spec := gitconfig.RefSpec(fmt.Sprintf("%s:%s", branch, branch))
	upToDate := false
	err = s.Credentials.withAuth(ctx, r, ep, func(auth transport.AuthMethod) error {
		err := repo.PushContext(ctx, &gogit.PushOptions{
			RemoteName: name,
			RefSpecs:   []gitconfig.RefSpec{spec},
			Auth:       auth,
		})
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			upToDate = true
			return nil
		}
		return err
	})
	if err != nil {
		return "", withKind(ErrNetwork, "push "+branch.Short(), err)
	}
	if upToDate {
		return fmt.Sprintf("%s already up to date on %s", branch.Short(), name), nil
	}
	return fmt.Sprintf("Pushed %s to %s", branch.Short(), name), nil
}

// RemoteStatus describes the remote and the branch's divergence from it
// without contacting the network.
func (s *Syncer) RemoteStatus(_ context.Context, r *Repo) (models.RemoteStatus, error) {
	status := models.RemoteStatus{Name: r.remoteName()}
	repo, err := r.open()
	if err != nil {
		return status, err
	}

	if branch, err := currentBranch(repo); err == nil {
		status.Branch = branch.Short()
	} else {
		status.Branch = "HEAD"
	}
	if remote, err := repo.Remote(status.Name); err == nil && len(remote.Config().URLs) > 0 {
		status.URL = remote.Config().URLs[0]
	}
	if info, err := os.Stat(filepath.Join(r.gitDir(), "FETCH_HEAD")); err == nil {
		t := info.ModTime()
		status.LastFetch = &t
	}

	ahead, behind, tracking, err := aheadBehind(repo, status.Name)
	if err != nil && !errors.Is(err, ErrDetachedHead) {
		return status, err
	}
	status.Ahead, status.Behind, status.HasTracking = ahead, behind, tracking
	return status, nil
}

// Refresh fetches and then recomputes the remote status.
func (s *Syncer) Refresh(ctx context.Context, r *Repo) (models.RemoteStatus, models.SyncOperation) {
	fetchErr := s.fetch(ctx, r)
	status, err := s.RemoteStatus(ctx, r)
	if fetchErr != nil {
		return status, syncResult(models.SyncRefresh, "Refresh failed", fetchErr)
	}
	if err != nil {
		return status, syncResult(models.SyncRefresh, "Refresh failed", err)
	}
	now := time.Now()
	status.LastFetch = &now
	msg := fmt.Sprintf("Fetched %s: %d ahead, %d behind", status.Name, status.Ahead, status.Behind)
	return status, syncResult(models.SyncRefresh, msg, nil)
}
