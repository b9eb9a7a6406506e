package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"

	log "github.com/neontowel/gitix/internal/log"
	"github.com/neontowel/gitix/internal/models"
)

// Stager mutates the staging index. It never touches the working tree or HEAD.
type Stager struct {
	status *StatusEngine
}

// NewStager returns a Stager classifying paths with status.
func NewStager(status *StatusEngine) *Stager {
	if status == nil {
		status = NewStatusEngine()
	}
	return &Stager{status: status}
}

// BulkResult reports the per-path outcome of StageAll and UnstageAll.
type BulkResult struct {
	Succeeded []string
	Failed    map[string]error
}

// Err joins the per-path failures, or returns nil when every path succeeded.
func (b BulkResult) Err() error {
	if len(b.Failed) == 0 {
		return nil
	}
	paths := make([]string, 0, len(b.Failed))
	for p := range b.Failed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	errs := make([]error, 0, len(paths))
	for _, p := range paths {
		errs = append(errs, fmt.Errorf("%s: %w", p, b.Failed[p]))
	}
	return errors.Join(errs...)
}

// Summary renders a short human readable outcome.
func (b BulkResult) Summary(verb string) string {
	if len(b.Failed) == 0 {
		return fmt.Sprintf("%s %d file(s)", verb, len(b.Succeeded))
	}
	return fmt.Sprintf("%s %d file(s), %d failed", verb, len(b.Succeeded), len(b.Failed))
}

func (b *BulkResult) record(path string, err error) {
	if err == nil {
		b.Succeeded = append(b.Succeeded, path)
		return
	}
	if b.Failed == nil {
		b.Failed = make(map[string]error)
	}
	b.Failed[path] = err
}

// Stage copies the worktree content of path into the index. A path that is
// tracked but missing from the worktree has its deletion staged.
func (s *Stager) Stage(ctx context.Context, r *Repo, path string) error {
	rel, err := r.relPath(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return stagePath(r, rel)
}

func stagePath(r *Repo, rel string) error {
	repo, wt, err := r.openWorktree()
	if err != nil {
		return err
	}

	_, statErr := os.Lstat(r.absPath(rel))
	switch {
	case statErr == nil:
		if _, err := wt.Add(rel); err != nil {
			return withKind(ErrIndexIO, "stage "+rel, err)
		}
		log.Debug("staged path", "path", rel)
		return nil
	case !os.IsNotExist(statErr):
		return withKind(ErrIndexIO, "stat "+rel, statErr)
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return withKind(ErrIndexIO, "read index", err)
	}
	if !removeIndexEntries(idx, rel) {
		log.Debug("stage skipped, path neither present nor tracked", "path", rel)
		return nil
	}
	if err := writeIndex(repo, idx); err != nil {
		return err
	}
	log.Debug("staged deletion", "path", rel)
	return nil
}

// removeIndexEntries drops rel, or every entry below it when rel is a
// directory, and reports whether anything was removed.
func removeIndexEntries(idx *index.Index, rel string) bool {
	prefix := rel + "/"
	kept := idx.Entries[:0]
	removed := false
	for _, e := range idx.Entries {
		if e.Name == rel || strings.HasPrefix(e.Name, prefix) {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	idx.Entries = kept
	return removed
}

func writeIndex(repo *gogit.Repository, idx *index.Index) error {
	// Any cached tree would describe the previous index content.
	idx.Cache = nil
	if err := repo.Storer.SetIndex(idx); err != nil {
		return withKind(ErrIndexIO, "write index", err)
	}
	return nil
}

// Unstage reverts the index entry for path without ever touching the
// worktree: paths known to HEAD are reset to HEAD's blob and mode, paths
// HEAD does not know are dropped from the index so they become untracked.
// Paths absent from the current status are left alone.
func (s *Stager) Unstage(ctx context.Context, r *Repo, path string) error {
	rel, err := r.relPath(path)
	if err != nil {
		return err
	}
	records, err := s.status.Compute(ctx, r)
	if err != nil {
		return err
	}
	rec, ok := Find(records, rel)
	if !ok || !rec.Staged {
		log.Debug("unstage skipped, path not staged", "path", rel)
		return nil
	}
	return unstagePath(r, rel)
}

func unstagePath(r *Repo, rel string) error {
	repo, err := r.open()
	if err != nil {
		return err
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return withKind(ErrIndexIO, "read index", err)
	}

	head, err := headEntries(repo)
	switch {
	case errors.Is(err, ErrUnbornBranch):
		head = nil
	case err != nil:
		return err
	}

	h, inHead := head[rel]
	if !inHead {
		removeIndexEntries(idx, rel)
		log.Debug("unstaged new path", "path", rel)
		return writeIndex(repo, idx)
	}

	removeIndexEntries(idx, rel)
	entry := idx.Add(rel)
	entry.Hash = h.hash
	entry.Mode = h.mode
	// Zeroed stat data forces git to rehash the worktree file instead of
	// trusting a timestamp recorded for different content.
	entry.ModifiedAt = time.Time{}
	entry.CreatedAt = time.Time{}
	if h.mode != filemode.Submodule {
		if blob, err := repo.BlobObject(h.hash); err == nil {
			entry.Size = uint32(blob.Size) //nolint:gosec
		}
	}
	log.Debug("unstaged path to HEAD", "path", rel, "blob", h.hash.String())
	return writeIndex(repo, idx)
}

// StageAll stages every changed path. Each path is attempted independently.
func (s *Stager) StageAll(ctx context.Context, r *Repo) (BulkResult, error) {
	records, err := s.status.Compute(ctx, r)
	if err != nil {
		return BulkResult{}, err
	}
	var result BulkResult
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			result.record(rec.Path, err)
			continue
		}
		result.record(rec.Path, stagePath(r, rec.Path))
	}
	return result, nil
}

// UnstageAll unstages every staged path. Each path is attempted independently.
func (s *Stager) UnstageAll(ctx context.Context, r *Repo) (BulkResult, error) {
	records, err := s.status.Compute(ctx, r)
	if err != nil {
		return BulkResult{}, err
	}
	var result BulkResult
	for _, rec := range stagedOnly(records) {
		if err := ctx.Err(); err != nil {
			result.record(rec.Path, err)
			continue
		}
		result.record(rec.Path, unstagePath(r, rec.Path))
	}
	return result, nil
}

func stagedOnly(records []models.FileStatusRecord) []models.FileStatusRecord {
	var out []models.FileStatusRecord
	for _, rec := range records {
		if rec.Staged {
			out = append(out, rec)
		}
	}
	return out
}
