// Package models defines the data objects shared across gitix packages.
package models

import (
	"fmt"
	"time"
)

// RemoteStatus summarizes how the current branch relates to its remote.
// It is recomputed on demand and never persisted.
type RemoteStatus struct {
	Name        string
	URL         string
	Branch      string
	Ahead       int
	Behind      int
	HasTracking bool       // Whether refs/remotes/<remote>/<branch> exists
	LastFetch   *time.Time // nil when the remote was never fetched
}

// Summary renders the ahead/behind counters the way the header shows them.
func (r RemoteStatus) Summary() string {
	if !r.HasTracking {
		return fmt.Sprintf("%s (no upstream, %d local)", r.Branch, r.Ahead)
	}
	return fmt.Sprintf("%s ↑%d ↓%d", r.Branch, r.Ahead, r.Behind)
}

// SyncKind identifies which sync action produced an operation record.
type SyncKind int

// Sync actions.
const (
	SyncFetch SyncKind = iota
	SyncPull
	SyncPush
	SyncRefresh
	SyncCommit
)

func (k SyncKind) String() string {
	switch k {
	case SyncFetch:
		return "fetch"
	case SyncPull:
		return "pull"
	case SyncPush:
		return "push"
	case SyncRefresh:
		return "refresh"
	case SyncCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// SyncOutcome is the lifecycle state of a sync operation.
type SyncOutcome int

// Outcomes. Records in the operation log are only ever Success or Error;
// Pending and InProgress are used by the UI while an action runs.
const (
	OutcomePending SyncOutcome = iota
	OutcomeInProgress
	OutcomeSuccess
	OutcomeError
)

func (o SyncOutcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeInProgress:
		return "in progress"
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// SyncOperation is an immutable record of one sync attempt.
type SyncOperation struct {
	Kind      SyncKind
	Outcome   SyncOutcome
	Message   string
	Timestamp time.Time
}

// NewSyncOperation stamps a finished operation with the current time.
func NewSyncOperation(kind SyncKind, outcome SyncOutcome, message string) SyncOperation {
	return SyncOperation{Kind: kind, Outcome: outcome, Message: message, Timestamp: time.Now()}
}

// Succeeded reports whether the operation finished successfully.
func (op SyncOperation) Succeeded() bool { return op.Outcome == OutcomeSuccess }

// RepoOverview holds the repository statistics shown next to the status.
type RepoOverview struct {
	Commits      int        // reachable from HEAD
	Branches     int        // local branches
	LatestAuthor string     // "Name <email>" of the HEAD commit
	LatestWhen   *time.Time // nil on an unborn branch
}

// Summary renders the statistics on one line.
func (o RepoOverview) Summary() string {
	s := fmt.Sprintf("%d commit(s), %d branch(es)", o.Commits, o.Branches)
	if o.LatestAuthor != "" {
		s += ", latest by " + o.LatestAuthor
	}
	return s
}
