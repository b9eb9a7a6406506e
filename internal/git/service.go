package git

import (
	"context"
	"fmt"

	log "github.com/neontowel/gitix/internal/log"
	"github.com/neontowel/gitix/internal/models"
)

// NotifyFn receives user facing notifications.
type NotifyFn func(message string, severity string)

// Options tune how a Service talks to the repository.
type Options struct {
	Remote         string
	PullRebase     bool
	StatusFallback bool
	FetchFallback  bool
	Credentials    CredentialChain
}

// DefaultOptions mirrors the default application configuration.
func DefaultOptions() Options {
	return Options{
		Remote:         DefaultRemote,
		PullRebase:     true,
		StatusFallback: true,
		FetchFallback:  true,
	}
}

// Service composes the engine components for one repository and keeps
// the operation log and the last known remote status.
type Service struct {
	repo       *Repo
	notify     NotifyFn
	status     *StatusEngine
	stager     *Stager
	committer  *Committer
	syncer     *Syncer
	oplog      *OperationLog
	remote     models.RemoteStatus
	pullRebase bool
}

// NewService constructs a Service for repo.
func NewService(repo *Repo, opts Options, notify NotifyFn) *Service {
	if notify == nil {
		notify = func(string, string) {}
	}
	repo = repo.WithRemote(opts.Remote)

	backends := []StatusBackend{LibraryBackend{}}
	if opts.StatusFallback {
		backends = append(backends, PorcelainBackend{})
	}
	status := NewStatusEngine(backends...)

	syncer := NewSyncer()
	syncer.FetchFallback = opts.FetchFallback
	if opts.Credentials != nil {
		syncer.Credentials = opts.Credentials
	}

	return &Service{
		repo:       repo,
		notify:     notify,
		status:     status,
		stager:     NewStager(status),
		committer:  NewCommitter(status),
		syncer:     syncer,
		oplog:      &OperationLog{},
		remote:     models.RemoteStatus{Name: repo.remoteName()},
		pullRebase: opts.PullRebase,
	}
}

func (s *Service) debugf(format string, args ...any) {
	log.Printf(format, args...)
}

// Repo returns the repository context.
func (s *Service) Repo() *Repo { return s.repo }

// PullRebase reports whether Pull rebases by default.
func (s *Service) PullRebase() bool { return s.pullRebase }

// Status returns the reconciled status list.
func (s *Service) Status(ctx context.Context) ([]models.FileStatusRecord, error) {
	records, err := s.status.Compute(ctx, s.repo)
	if err != nil {
		s.notify(fmt.Sprintf("Status failed: %v", err), "error")
	}
	return records, err
}

// Stage stages one path.
func (s *Service) Stage(ctx context.Context, path string) error {
	s.debugf("stage %s", path)
	if err := s.stager.Stage(ctx, s.repo, path); err != nil {
		s.notify(fmt.Sprintf("Stage %s failed: %v", path, err), "error")
		return err
	}
	return nil
}

// Unstage unstages one path.
func (s *Service) Unstage(ctx context.Context, path string) error {
	s.debugf("unstage %s", path)
	if err := s.stager.Unstage(ctx, s.repo, path); err != nil {
		s.notify(fmt.Sprintf("Unstage %s failed: %v", path, err), "error")
		return err
	}
	return nil
}

// Toggle stages an unstaged record and unstages a staged one.
func (s *Service) Toggle(ctx context.Context, rec models.FileStatusRecord) error {
	if rec.Staged {
		return s.Unstage(ctx, rec.Path)
	}
	return s.Stage(ctx, rec.Path)
}

// StageAll stages every changed path.
func (s *Service) StageAll(ctx context.Context) (BulkResult, error) {
	result, err := s.stager.StageAll(ctx, s.repo)
	s.reportBulk("Staged", result, err)
	return result, err
}

// UnstageAll unstages every staged path.
func (s *Service) UnstageAll(ctx context.Context) (BulkResult, error) {
	result, err := s.stager.UnstageAll(ctx, s.repo)
	s.reportBulk("Unstaged", result, err)
	return result, err
}

func (s *Service) reportBulk(verb string, result BulkResult, err error) {
	switch {
	case err != nil:
		s.notify(fmt.Sprintf("%s nothing: %v", verb, err), "error")
	case result.Err() != nil:
		s.notify(result.Summary(verb), "warning")
		s.debugf("bulk failures: %v", result.Err())
	default:
		s.notify(result.Summary(verb), "info")
	}
}

// Commit commits the index and records the attempt in the operation log.
func (s *Service) Commit(ctx context.Context, message string) models.SyncOperation {
	hash, err := s.committer.Commit(ctx, s.repo, message)
	var op models.SyncOperation
	if err != nil {
		op = models.NewSyncOperation(models.SyncCommit, models.OutcomeError, fmt.Sprintf("Commit failed: %v", err))
	} else {
		op = models.NewSyncOperation(models.SyncCommit, models.OutcomeSuccess, fmt.Sprintf("Committed %s", hash[:7]))
		s.updateRemote(ctx)
	}
	return s.record(op)
}

// Fetch fetches from the remote.
func (s *Service) Fetch(ctx context.Context) models.SyncOperation {
	op := s.syncer.Fetch(ctx, s.repo)
	s.updateRemote(ctx)
	return s.record(op)
}

// Pull pulls using the configured strategy.
func (s *Service) Pull(ctx context.Context) models.SyncOperation {
	return s.PullWith(ctx, s.pullRebase)
}

// PullWith pulls, rebasing when rebase is true and merging otherwise.
func (s *Service) PullWith(ctx context.Context, rebase bool) models.SyncOperation {
	op := s.syncer.Pull(ctx, s.repo, rebase)
	s.updateRemote(ctx)
	return s.record(op)
}

// Push pushes the current branch.
func (s *Service) Push(ctx context.Context) models.SyncOperation {
	op := s.syncer.Push(ctx, s.repo)
	s.updateRemote(ctx)
	return s.record(op)
}

// Refresh fetches and recomputes the remote status.
func (s *Service) Refresh(ctx context.Context) models.SyncOperation {
	status, op := s.syncer.Refresh(ctx, s.repo)
	s.remote = status
	return s.record(op)
}

// AheadBehind reports the divergence from the remote tracking branch.
func (s *Service) AheadBehind(ctx context.Context) (int, int, error) {
	return s.syncer.AheadBehind(ctx, s.repo)
}

// RemoteStatus returns the last computed remote status.
func (s *Service) RemoteStatus() models.RemoteStatus { return s.remote }

// UpdateRemoteStatus recomputes the remote status without network access.
func (s *Service) UpdateRemoteStatus(ctx context.Context) models.RemoteStatus {
	s.updateRemote(ctx)
	return s.remote
}

func (s *Service) updateRemote(ctx context.Context) {
	lastFetch := s.remote.LastFetch
	status, err := s.syncer.RemoteStatus(ctx, s.repo)
	if err != nil {
		s.debugf("remote status: %v", err)
	}
	if status.LastFetch == nil || (lastFetch != nil && lastFetch.After(*status.LastFetch)) {
		status.LastFetch = lastFetch
	}
	s.remote = status
}

// Overview reads the repository statistics.
func (s *Service) Overview(ctx context.Context) (models.RepoOverview, error) {
	ov, err := ReadOverview(ctx, s.repo)
	if err != nil {
		s.debugf("overview: %v", err)
	}
	return ov, err
}

// Operations returns the operation log, newest first.
func (s *Service) Operations() []models.SyncOperation { return s.oplog.Entries() }

func (s *Service) record(op models.SyncOperation) models.SyncOperation {
	s.oplog.Record(op)
	if op.Outcome == models.OutcomeError {
		s.notify(op.Message, "error")
	} else {
		s.notify(op.Message, "info")
		if op.Kind == models.SyncFetch || op.Kind == models.SyncPull {
			t := op.Timestamp
			s.remote.LastFetch = &t
		}
	}
	return op
}
