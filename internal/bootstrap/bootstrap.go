package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/neontowel/gitix/internal/app"
	"github.com/neontowel/gitix/internal/buildinfo"
	"github.com/neontowel/gitix/internal/cli"
	"github.com/neontowel/gitix/internal/config"
	"github.com/neontowel/gitix/internal/git"
	"github.com/neontowel/gitix/internal/log"
	"github.com/neontowel/gitix/internal/models"
	"github.com/neontowel/gitix/internal/theme"
	urfavecli "github.com/urfave/cli/v3"
)

// NewCommand builds the gitix command tree reading from stdin and writing
// to stdout and stderr.
func NewCommand(stdin io.Reader, stdout, stderr io.Writer) *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "gitix",
		Usage:                 "A terminal git client for status, staging and remote sync",
		Version:               buildinfo.Version(),
		EnableShellCompletion: true,
		Reader:                stdin,
		Writer:                stdout,
		ErrWriter:             stderr,
		Flags:                 globalFlags(),
		Commands:              subcommands(),
		Action:                runTUI,
		ShellComplete:         completeGlobalFlags,
	}
}

// Run executes the command line in args. Failures already shown to the user
// are returned wrapping cli.ErrReported.
func Run(ctx context.Context, args []string) error {
	defer func() {
		if err := log.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing debug log: %v\n", err)
		}
	}()
	return NewCommand(os.Stdin, os.Stdout, os.Stderr).Run(ctx, args)
}

// IsReported reports whether err was already printed by a notification.
func IsReported(err error) bool {
	return errors.Is(err, cli.ErrReported)
}

// session is the per-invocation state shared by the subcommands.
type session struct {
	cfg    *config.AppConfig
	svc    *git.Service
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func openSession(cmd *urfavecli.Command, notify git.NotifyFn) (*session, error) {
	stderr := errWriter(cmd)
	cfg, err := loadCLIConfig(stderr,
		cmd.String("config-file"),
		cmd.String("theme"),
		cmd.String("remote"),
		cmd.StringSlice("config"),
	)
	if err != nil {
		return nil, err
	}
	setupDebugLog(stderr, cmd.String("debug-log"), cfg)

	if notify == nil {
		notify = cliNotify(stderr)
	}
	svc, err := newCLIGitService(cfg, cmd.String("repo"), notify)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:    cfg,
		svc:    svc,
		stdin:  inReader(cmd),
		stdout: outWriter(cmd),
		stderr: stderr,
	}, nil
}

func withSession(fn func(context.Context, *urfavecli.Command, *session) error) urfavecli.ActionFunc {
	return func(ctx context.Context, cmd *urfavecli.Command) error {
		s, err := openSession(cmd, nil)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, s)
	}
}

func (s *session) fetch(ctx context.Context) models.SyncOperation   { return s.svc.Fetch(ctx) }
func (s *session) push(ctx context.Context) models.SyncOperation    { return s.svc.Push(ctx) }
func (s *session) refresh(ctx context.Context) models.SyncOperation { return s.svc.Refresh(ctx) }

// runTUI is the default action that launches the TUI when no subcommand is
// given. Without a terminal the status is printed instead.
func runTUI(ctx context.Context, cmd *urfavecli.Command) error {
	stdout := outWriter(cmd)
	if !isTerminal(stdout) {
		return withSession(func(ctx context.Context, _ *urfavecli.Command, s *session) error {
			return cli.PrintStatus(ctx, s.svc, s.stdout, false)
		})(ctx, cmd)
	}

	s, err := openSession(cmd, tuiNotify)
	if err != nil {
		return err
	}

	model := app.NewModel(s.cfg, s.svc)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	model.Close()
	if err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}

// completeGlobalFlags offers theme names after --theme and the flag names
// otherwise.
func completeGlobalFlags(_ context.Context, cmd *urfavecli.Command) {
	out := outWriter(cmd)
	args := os.Args
	if len(args) > 2 {
		prev := args[len(args)-2]
		if prev == "--theme" || prev == "-t" {
			for _, name := range theme.AvailableThemes() {
				fmt.Fprintln(out, name)
			}
			return
		}
	}
	for _, sub := range cmd.Commands {
		if !sub.Hidden {
			fmt.Fprintln(out, sub.Name)
		}
	}
	outputFlags(out, cmd.Flags)
}

func outputFlags(w io.Writer, flags []urfavecli.Flag) {
	for _, flag := range flags {
		name := flag.Names()[0]
		prefix := "--"
		if len(name) == 1 {
			prefix = "-"
		}
		usage := ""
		if df, ok := flag.(urfavecli.DocGenerationFlag); ok {
			usage = df.GetUsage()
		}
		if usage != "" {
			fmt.Fprintf(w, "%s%s:%s\n", prefix, name, strings.ReplaceAll(usage, ":", "\\:"))
		} else {
			fmt.Fprintf(w, "%s%s\n", prefix, name)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec
}

func outWriter(cmd *urfavecli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *urfavecli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func inReader(cmd *urfavecli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}
