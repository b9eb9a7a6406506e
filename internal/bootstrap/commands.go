package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/neontowel/gitix/internal/buildinfo"
	"github.com/neontowel/gitix/internal/cli"
	"github.com/neontowel/gitix/internal/models"
	urfavecli "github.com/urfave/cli/v3"
)

func subcommands() []*urfavecli.Command {
	return []*urfavecli.Command{
		statusCommand(),
		stageCommand(),
		unstageCommand(),
		stageAllCommand(),
		unstageAllCommand(),
		commitCommand(),
		syncCommand("fetch", "Fetch from the remote", (*session).fetch),
		pullCommand(),
		syncCommand("push", "Push the current branch", (*session).push),
		syncCommand("refresh", "Fetch and recompute ahead/behind counters", (*session).refresh),
		overviewCommand(),
		configCommand(),
		initCommand(),
		versionCommand(),
	}
}

func statusCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:    "status",
		Aliases: []string{"st"},
		Usage:   "Show the working tree status",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: withSession(func(ctx context.Context, cmd *urfavecli.Command, s *session) error {
			return cli.PrintStatus(ctx, s.svc, s.stdout, cmd.Bool("json"))
		}),
	}
}

func stageCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "stage",
		Aliases:   []string{"add"},
		Usage:     "Stage paths",
		ArgsUsage: "<path>...",
		Action: withSession(func(ctx context.Context, cmd *urfavecli.Command, s *session) error {
			return cli.StagePaths(ctx, s.svc, cmd.Args().Slice(), s.stderr)
		}),
	}
}

func unstageCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "unstage",
		Usage:     "Unstage paths, keeping the working tree untouched",
		ArgsUsage: "<path>...",
		Action: withSession(func(ctx context.Context, cmd *urfavecli.Command, s *session) error {
			return cli.UnstagePaths(ctx, s.svc, cmd.Args().Slice(), s.stderr)
		}),
	}
}

func stageAllCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "stage-all",
		Usage: "Stage every changed path",
		Action: withSession(func(ctx context.Context, _ *urfavecli.Command, s *session) error {
			return cli.StageAll(ctx, s.svc)
		}),
	}
}

func unstageAllCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "unstage-all",
		Usage: "Unstage every staged path",
		Action: withSession(func(ctx context.Context, _ *urfavecli.Command, s *session) error {
			return cli.UnstageAll(ctx, s.svc)
		}),
	}
}

func commitCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "commit",
		Usage: "Commit the staged changes",
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "Commit message; read from stdin when omitted",
			},
		},
		Action: withSession(func(ctx context.Context, cmd *urfavecli.Command, s *session) error {
			return cli.Commit(ctx, s.svc, cmd.String("message"), s.stdin, s.stderr)
		}),
	}
}

func syncCommand(name, usage string, run func(*session, context.Context) models.SyncOperation) *urfavecli.Command {
	return &urfavecli.Command{
		Name:  name,
		Usage: usage,
		Action: withSession(func(ctx context.Context, _ *urfavecli.Command, s *session) error {
			return cli.OperationError(run(s, ctx))
		}),
	}
}

func pullCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "pull",
		Usage: "Fetch and integrate the remote tracking branch",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:  "rebase",
				Usage: "Replay local commits on top of the remote branch",
			},
			&urfavecli.BoolFlag{
				Name:  "merge",
				Usage: "Merge the remote branch into the local one",
			},
		},
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			if err := validatePullFlags(cmd); err != nil {
				return err
			}
			return withSession(func(ctx context.Context, cmd *urfavecli.Command, s *session) error {
				switch {
				case cmd.Bool("rebase"):
					return cli.OperationError(s.svc.PullWith(ctx, true))
				case cmd.Bool("merge"):
					return cli.OperationError(s.svc.PullWith(ctx, false))
				default:
					return cli.OperationError(s.svc.Pull(ctx))
				}
			})(ctx, cmd)
		},
	}
}

func validatePullFlags(cmd *urfavecli.Command) error {
	if cmd.Bool("rebase") && cmd.Bool("merge") {
		return fmt.Errorf("--rebase and --merge are mutually exclusive")
	}
	return nil
}

func overviewCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "overview",
		Usage: "Show commit, branch and latest author statistics",
		Flags: []urfavecli.Flag{
			&urfavecli.BoolFlag{
				Name:  "json",
				Usage: "Output as JSON",
			},
		},
		Action: withSession(func(ctx context.Context, cmd *urfavecli.Command, s *session) error {
			return cli.PrintOverview(ctx, s.svc, s.stdout, cmd.Bool("json"))
		}),
	}
}

func configCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "config",
		Usage:     fmt.Sprintf("Read or write repository settings (%s)", strings.Join(cli.SettingKeys(), ", ")),
		ArgsUsage: "[key [value]]",
		Action: withSession(func(_ context.Context, cmd *urfavecli.Command, s *session) error {
			root := s.svc.Repo().Root
			args := cmd.Args()
			switch args.Len() {
			case 0:
				return cli.ShowSettings(root, "", s.stdout)
			case 1:
				return cli.ShowSettings(root, args.First(), s.stdout)
			case 2:
				return cli.SetSetting(root, args.Get(0), args.Get(1), s.stderr)
			default:
				return fmt.Errorf("expected at most a key and a value, got %d arguments", args.Len())
			}
		}),
		ShellComplete: func(_ context.Context, cmd *urfavecli.Command) {
			if cmd.Args().Len() > 0 {
				return
			}
			for _, key := range cli.SettingKeys() {
				fmt.Fprintln(outWriter(cmd), key)
			}
		},
	}
}

func initCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "init",
		Usage:     "Create an empty repository",
		ArgsUsage: "[path]",
		Action: func(_ context.Context, cmd *urfavecli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				path = "."
			}
			return cli.InitRepository(path, outWriter(cmd))
		},
	}
}

func versionCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, cmd *urfavecli.Command) error {
			_, err := fmt.Fprintln(outWriter(cmd), buildinfo.String())
			return err
		},
	}
}
