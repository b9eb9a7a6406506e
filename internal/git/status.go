package git

import (
	"context"
	"errors"
	"sort"

	log "github.com/neontowel/gitix/internal/log"
	"github.com/neontowel/gitix/internal/models"
)

// StatusBackend computes the reconciled status of a repository.
type StatusBackend interface {
	Name() string
	Compute(ctx context.Context, repo *Repo) ([]models.FileStatusRecord, error)
}

// StatusEngine tries its backends in order and returns the first success.
type StatusEngine struct {
	backends []StatusBackend
}

// NewStatusEngine builds an engine. Without arguments it uses the go-git
// backend followed by the porcelain fallback.
func NewStatusEngine(backends ...StatusBackend) *StatusEngine {
	if len(backends) == 0 {
		backends = []StatusBackend{LibraryBackend{}, PorcelainBackend{}}
	}
	return &StatusEngine{backends: backends}
}

// Compute returns one record per changed path, sorted by path. It never
// mutates repository state.
func (e *StatusEngine) Compute(ctx context.Context, repo *Repo) ([]models.FileStatusRecord, error) {
	var errs []error
	for _, backend := range e.backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := backend.Compute(ctx, repo)
		if err == nil {
			if len(errs) > 0 {
				log.Info("status computed by fallback backend", "backend", backend.Name())
			}
			return records, nil
		}
		log.Warn("status backend failed", "backend", backend.Name(), "error", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, wrapKind(ErrRepositoryAccess, "no status backend configured")
	}
	return nil, withKind(ErrRepositoryAccess, "status", errors.Join(errs...))
}

// reconciler merges per-path observations. Keying by path makes
// duplicate records impossible. When a path is seen both staged and
// unstaged, the unstaged observation decides the kind and the staged flag
// is kept, whatever order the observations arrive in.
type reconciler struct {
	byPath map[string]*models.FileStatusRecord
}

func newReconciler() *reconciler {
	return &reconciler{byPath: make(map[string]*models.FileStatusRecord)}
}

func (r *reconciler) add(rec models.FileStatusRecord) {
	existing, ok := r.byPath[rec.Path]
	if !ok {
		r.byPath[rec.Path] = &rec
		return
	}
	if existing.Staged && !rec.Staged {
		existing.Kind = rec.Kind
	}
	existing.Staged = existing.Staged || rec.Staged
}

func (r *reconciler) addUnstaged(path string, kind models.StatusKind) {
	r.add(models.FileStatusRecord{Path: path, Kind: kind})
}

func (r *reconciler) addStaged(path string, kind models.StatusKind) {
	r.add(models.FileStatusRecord{Path: path, Kind: kind, Staged: true})
}

func (r *reconciler) records(repo *Repo) []models.FileStatusRecord {
	out := make([]models.FileStatusRecord, 0, len(r.byPath))
	for _, rec := range r.byPath {
		rec.Size = fileSize(repo.absPath(rec.Path))
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Find returns the record for path, if any.
func Find(records []models.FileStatusRecord, path string) (models.FileStatusRecord, bool) {
	i := sort.Search(len(records), func(i int) bool { return records[i].Path >= path })
	if i < len(records) && records[i].Path == path {
		return records[i], true
	}
	return models.FileStatusRecord{}, false
}

// HasStaged reports whether any record is staged.
func HasStaged(records []models.FileStatusRecord) bool {
	for _, rec := range records {
		if rec.Staged {
			return true
		}
	}
	return false
}
