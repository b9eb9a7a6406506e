// Package main is the entry point for the gitix application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/neontowel/gitix/internal/bootstrap"
	"github.com/neontowel/gitix/internal/buildinfo"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	buildinfo.Set(version, commit, date, builtBy)
	buildinfo.Enrich()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := bootstrap.Run(ctx, os.Args)
	stop()
	if err != nil {
		if !bootstrap.IsReported(err) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}
