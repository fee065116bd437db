// Package main is the entry point for the codecanvas application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chmouel/codecanvas/internal/bootstrap"
	"github.com/chmouel/codecanvas/internal/buildinfo"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := bootstrap.Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
