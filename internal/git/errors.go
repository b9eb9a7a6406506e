package git

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of
// these so callers can classify it with errors.Is or KindOf.
var (
	// ErrRepositoryAccess indicates the repository could not be opened or read.
	ErrRepositoryAccess = errors.New("repository access")

	// ErrObjectAccess indicates a commit, tree or blob could not be read.
	ErrObjectAccess = errors.New("object access")

	// ErrIndexIO indicates the staging index could not be read or written.
	ErrIndexIO = errors.New("index I/O")

	// ErrAuthentication indicates every credential provider was rejected.
	ErrAuthentication = errors.New("authentication failed")

	// ErrNetwork indicates the remote could not be reached.
	ErrNetwork = errors.New("network")

	// ErrConflict indicates a merge or rebase produced conflicting paths.
	ErrConflict = errors.New("conflict")

	// ErrUnbornBranch indicates HEAD points at a branch with no commits.
	// It is an expected state rather than a failure.
	ErrUnbornBranch = errors.New("unborn branch")
)

// Operation level errors.
var (
	// ErrOutsideRepository indicates a path resolves outside the repository root.
	ErrOutsideRepository = errors.New("path is outside the repository")

	// ErrNothingToCommit indicates the index matches HEAD.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrMissingIdentity indicates user.name or user.email is not configured.
	ErrMissingIdentity = errors.New("user.name and user.email must be configured")

	// ErrDetachedHead indicates HEAD does not point at a branch.
	ErrDetachedHead = errors.New("detached HEAD state")

	// ErrRemoteNotFound indicates the configured remote does not exist.
	ErrRemoteNotFound = errors.New("remote not found")

	// ErrNoTrackingBranch indicates the remote tracking ref does not exist.
	ErrNoTrackingBranch = errors.New("no remote tracking branch")

	// ErrDirtyWorktree indicates tracked files carry uncommitted changes.
	ErrDirtyWorktree = errors.New("working tree has uncommitted changes")
)

var errorKinds = []error{
	ErrRepositoryAccess,
	ErrObjectAccess,
	ErrIndexIO,
	ErrAuthentication,
	ErrNetwork,
	ErrConflict,
	ErrUnbornBranch,
}

// KindOf returns the error kind wrapped by err, or nil when err carries none.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range errorKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

func wrapKind(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func withKind(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}
