package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"recap/internal/cli"
	"recap/internal/client"
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "recap: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	c, err := client.New()
	if err != nil {
		return err
	}
	deps := &cli.Dependencies{Client: c}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(deps).ExecuteContext(ctx)
}
