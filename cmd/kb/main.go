// Command kb composes Markdown knowledge blocks into a registry, a search
// corpus and a cross-link graph, and publishes them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/udigitrentals/github-kb/internal/adapters/driving/cli"
	"github.com/udigitrentals/github-kb/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, bootstrap)
	stop()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
