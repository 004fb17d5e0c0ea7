package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/agripanel/listquery/pkg/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(cli.Options{Name: "listquery"}).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
