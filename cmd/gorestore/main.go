package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/willibrandon/gorestore/cmd/gorestore/cli"
	"github.com/willibrandon/gorestore/cmd/gorestore/commands"
	"github.com/willibrandon/gorestore/cmd/gorestore/version"
)

// Version information (set via ldflags during build)
var (
	buildVersion = "dev"
	commit       = "none"
	date         = "unknown"
)

func main() {
	version.Version = buildVersion
	version.Commit = commit
	version.Date = date

	cli.SetupVersion()

	cli.AddCommand(commands.NewVersionCommand(cli.Environment.Console))
	cli.AddCommand(commands.NewResolveCommand(cli.Environment))
	cli.AddCommand(commands.NewCheckCommand(cli.Environment))

	// Cancel the restore on interrupt; a second signal exits immediately.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	err := cli.Execute(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, commands.ErrReported) {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if ctx.Err() != nil {
		os.Exit(130) // 128 + SIGINT
	}
	os.Exit(1)
}
