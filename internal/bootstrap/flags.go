// Package bootstrap wires configuration, logging and the git service into the
// gitix command line.
package bootstrap

import (
	urfavecli "github.com/urfave/cli/v3"
)

// globalFlags returns all global flags for the application.
// Note: --version is provided automatically by urfave/cli via Command.Version
func globalFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "repo",
			Aliases: []string{"R"},
			Value:   ".",
			Usage:   "Path inside the repository to operate on",
		},
		&urfavecli.StringFlag{
			Name:    "remote",
			Aliases: []string{"r"},
			Usage:   "Remote to fetch from and push to",
		},
		&urfavecli.StringFlag{
			Name:  "debug-log",
			Usage: "Path to debug log file",
		},
		&urfavecli.StringFlag{
			Name:    "theme",
			Aliases: []string{"t"},
			Usage:   "Override the UI theme",
		},
		&urfavecli.StringFlag{
			Name:  "config-file",
			Usage: "Path to configuration file",
		},
		&urfavecli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"C"},
			Usage:   "Override config values (repeatable): --config=gitix.key=value",
		},
	}
}
