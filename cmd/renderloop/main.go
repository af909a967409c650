// Package main provides the renderloop CLI entry point.
// renderloop runs a renderer example repeatedly, saving each run's output and timing it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"renderloop/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.NewApp().Execute(ctx, os.Args[1:])

	stop()
	os.Exit(code)
}
