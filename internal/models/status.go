package models

import "github.com/dustin/go-humanize"

// StatusKind classifies a change to a single path.
type StatusKind int

// Change kinds reported by the status engine.
const (
	StatusModified StatusKind = iota
	StatusAdded
	StatusDeleted
	StatusUntracked
	StatusRenamed
	StatusTypeChanged
)

// Symbol returns the single-character porcelain style marker for the kind.
func (k StatusKind) Symbol() string {
	switch k {
	case StatusModified:
		return "M"
	case StatusAdded:
		return "A"
	case StatusDeleted:
		return "D"
	case StatusUntracked:
		return "?"
	case StatusRenamed:
		return "R"
	case StatusTypeChanged:
		return "T"
	default:
		return " "
	}
}

// Description returns a human readable name for the kind.
func (k StatusKind) Description() string {
	switch k {
	case StatusModified:
		return "modified"
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusUntracked:
		return "untracked"
	case StatusRenamed:
		return "renamed"
	case StatusTypeChanged:
		return "type changed"
	default:
		return "unknown"
	}
}

func (k StatusKind) String() string { return k.Description() }

// FileStatusRecord is the reconciled status of one path.
type FileStatusRecord struct {
	Path   string // repository relative, slash separated
	Kind   StatusKind
	From   string // rename source, only set for StatusRenamed
	Staged bool
	Size   *int64 // nil when the file is absent from the working tree
}

// FormatSize renders the worktree size, or "-" when the file is gone.
func (r FileStatusRecord) FormatSize() string {
	if r.Size == nil {
		return "-"
	}
	if *r.Size < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(*r.Size))
}

// DisplayPath shows renames as "from -> to".
func (r FileStatusRecord) DisplayPath() string {
	if r.Kind == StatusRenamed && r.From != "" {
		return r.From + " -> " + r.Path
	}
	return r.Path
}
