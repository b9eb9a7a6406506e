// Package cli implements the non-interactive gitix subcommands on top of the
// git service.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/neontowel/gitix/internal/git"
	"github.com/neontowel/gitix/internal/models"
)

// ErrReported marks failures whose message already reached the user through
// the service notifications. Callers exit non-zero without printing it again.
var ErrReported = errors.New("operation failed")

type gitService interface {
	Status(ctx context.Context) ([]models.FileStatusRecord, error)
	Stage(ctx context.Context, path string) error
	Unstage(ctx context.Context, path string) error
	StageAll(ctx context.Context) (git.BulkResult, error)
	UnstageAll(ctx context.Context) (git.BulkResult, error)
	Commit(ctx context.Context, message string) models.SyncOperation
	UpdateRemoteStatus(ctx context.Context) models.RemoteStatus
	Overview(ctx context.Context) (models.RepoOverview, error)
}

var _ gitService = (*git.Service)(nil)

type fileJSON struct {
	Path   string `json:"path"`
	From   string `json:"from,omitempty"`
	Kind   string `json:"kind"`
	Staged bool   `json:"staged"`
	Size   *int64 `json:"size,omitempty"`
}

type statusJSON struct {
	Branch   string     `json:"branch"`
	Remote   string     `json:"remote"`
	Tracking bool       `json:"tracking"`
	Ahead    int        `json:"ahead"`
	Behind   int        `json:"behind"`
	Files    []fileJSON `json:"files"`
}

// PrintStatus writes the status list to w, as JSON when asJSON is set and as
// a short porcelain-like listing otherwise.
func PrintStatus(ctx context.Context, gitSvc gitService, w io.Writer, asJSON bool) error {
	records, err := gitSvc.Status(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReported, err)
	}
	remote := gitSvc.UpdateRemoteStatus(ctx)

	if asJSON {
		return writeStatusJSON(w, records, remote)
	}
	return writeStatusText(w, records, remote)
}

func writeStatusJSON(w io.Writer, records []models.FileStatusRecord, remote models.RemoteStatus) error {
	out := statusJSON{
		Branch:   remote.Branch,
		Remote:   remote.Name,
		Tracking: remote.HasTracking,
		Ahead:    remote.Ahead,
		Behind:   remote.Behind,
		Files:    make([]fileJSON, 0, len(records)),
	}
	for _, rec := range records {
		out.Files = append(out.Files, fileJSON{
			Path:   rec.Path,
			From:   rec.From,
			Kind:   rec.Kind.Description(),
			Staged: rec.Staged,
			Size:   rec.Size,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeStatusText(w io.Writer, records []models.FileStatusRecord, remote models.RemoteStatus) error {
	if _, err := fmt.Fprintf(w, "## %s\n", remote.Summary()); err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "nothing to commit, working tree clean")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", statusCode(rec), rec.DisplayPath(), rec.FormatSize())
	}
	return tw.Flush()
}

// statusCode renders the two column XY code: the index column for staged
// records and the worktree column otherwise.
func statusCode(rec models.FileStatusRecord) string {
	sym := rec.Kind.Symbol()
	switch {
	case rec.Kind == models.StatusUntracked:
		return "??"
	case rec.Staged:
		return sym + " "
	default:
		return " " + sym
	}
}

type overviewJSON struct {
	Commits      int        `json:"commits"`
	Branches     int        `json:"branches"`
	LatestAuthor string     `json:"latest_author,omitempty"`
	LatestCommit *time.Time `json:"latest_commit_at,omitempty"`
}

// PrintOverview writes the repository statistics to w.
func PrintOverview(ctx context.Context, gitSvc gitService, w io.Writer, asJSON bool) error {
	ov, err := gitSvc.Overview(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(overviewJSON{
			Commits:      ov.Commits,
			Branches:     ov.Branches,
			LatestAuthor: ov.LatestAuthor,
			LatestCommit: ov.LatestWhen,
		})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Commits:\t%s\n", humanize.Comma(int64(ov.Commits)))
	fmt.Fprintf(tw, "Branches:\t%d\n", ov.Branches)
	if ov.LatestAuthor != "" {
		latest := ov.LatestAuthor
		if ov.LatestWhen != nil {
			latest += " (" + humanize.Time(*ov.LatestWhen) + ")"
		}
		fmt.Fprintf(tw, "Latest author:\t%s\n", latest)
	}
	return tw.Flush()
}

// StagePaths stages every path, continuing past failures.
func StagePaths(ctx context.Context, gitSvc gitService, paths []string, stderr io.Writer) error {
	return eachPath(paths, "Staged", stderr, func(p string) error { return gitSvc.Stage(ctx, p) })
}

// UnstagePaths unstages every path, continuing past failures.
func UnstagePaths(ctx context.Context, gitSvc gitService, paths []string, stderr io.Writer) error {
	return eachPath(paths, "Unstaged", stderr, func(p string) error { return gitSvc.Unstage(ctx, p) })
}

func eachPath(paths []string, verb string, stderr io.Writer, fn func(string) error) error {
	if len(paths) == 0 {
		return fmt.Errorf("no paths given")
	}
	failed := 0
	for _, p := range paths {
		if err := fn(p); err != nil {
			failed++
			continue
		}
		fmt.Fprintf(stderr, "%s %s\n", verb, p)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d path(s)", ErrReported, failed, len(paths))
	}
	return nil
}

// StageAll stages every changed path.
func StageAll(ctx context.Context, gitSvc gitService) error {
	return bulkError(gitSvc.StageAll(ctx))
}

// UnstageAll unstages every staged path.
func UnstageAll(ctx context.Context, gitSvc gitService) error {
	return bulkError(gitSvc.UnstageAll(ctx))
}

func bulkError(result git.BulkResult, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReported, err)
	}
	if failures := result.Err(); failures != nil {
		return fmt.Errorf("%w: %w", ErrReported, failures)
	}
	return nil
}

// Commit records a commit with message. The prompt reads the message from
// stdin when message is empty.
func Commit(ctx context.Context, gitSvc gitService, message string, stdin io.Reader, stderr io.Writer) error {
	if message == "" {
		var err error
		message, err = PromptCommitMessage(stdin, stderr)
		if err != nil {
			return err
		}
	}
	return OperationError(gitSvc.Commit(ctx, message))
}

// OperationError converts a failed sync operation into an error.
func OperationError(op models.SyncOperation) error {
	if op.Succeeded() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrReported, op.Message)
}

// InitRepository creates a repository at path.
func InitRepository(path string, stdout io.Writer) error {
	repo, err := git.Init(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Initialized empty repository in %s\n", repo.GitDir())
	return nil
}
