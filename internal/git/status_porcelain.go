package git

import (
	"bytes"
	"context"

	"github.com/neontowel/gitix/internal/models"
)

// PorcelainBackend computes status by parsing `git status --porcelain -z`.
// Rename sources are never resolved on this path: From is always empty.
type PorcelainBackend struct{}

// Name implements StatusBackend.
func (PorcelainBackend) Name() string { return "porcelain" }

// Compute implements StatusBackend.
func (PorcelainBackend) Compute(ctx context.Context, r *Repo) ([]models.FileStatusRecord, error) {
	out, err := r.runGit(ctx, nil, "status", "--porcelain", "-z", "--untracked-files=all")
	if err != nil {
		return nil, withKind(ErrRepositoryAccess, "git status", err)
	}
	rec := newReconciler()
	for _, record := range ParsePorcelain(out) {
		rec.add(record)
	}
	return rec.records(r), nil
}

// ParsePorcelain decodes NUL separated "XY path" records. Records shorter
// than three bytes are skipped. Sizes are left unset.
func ParsePorcelain(data []byte) []models.FileStatusRecord {
	fields := bytes.Split(data, []byte{0})
	records := make([]models.FileStatusRecord, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		field := fields[i]
		if len(field) < 3 {
			continue
		}
		x, y := field[0], field[1]
		path := string(field[3:])

		// With -z the rename source follows as its own record.
		if x == 'R' || x == 'C' || y == 'R' || y == 'C' {
			i++
		}
		if path == "" {
			continue
		}

		kind, staged, ok := porcelainKind(x, y)
		if !ok {
			continue
		}
		records = append(records, models.FileStatusRecord{Path: path, Kind: kind, Staged: staged})
	}
	return records
}

// porcelainKind maps an XY pair the same way the library backend
// classifies paths: the worktree change wins the kind, while the staged
// flag only reflects whether the index differs from HEAD.
func porcelainKind(x, y byte) (models.StatusKind, bool, bool) {
	staged := x != ' ' && x != '?'
	if y != ' ' {
		switch y {
		case 'M':
			return models.StatusModified, staged, true
		case 'D':
			return models.StatusDeleted, staged, true
		case '?':
			return models.StatusUntracked, false, true
		case 'T':
			return models.StatusTypeChanged, staged, true
		case '!':
			return 0, false, false
		default:
			return models.StatusModified, staged, true
		}
	}
	switch x {
	case 'A', 'C':
		return models.StatusAdded, true, true
	case 'M':
		return models.StatusModified, true, true
	case 'D':
		return models.StatusDeleted, true, true
	case 'R':
		return models.StatusRenamed, true, true
	case 'T':
		return models.StatusTypeChanged, true, true
	case ' ':
		return 0, false, false
	default:
		return models.StatusModified, true, true
	}
}
