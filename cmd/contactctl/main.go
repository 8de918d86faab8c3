// Command contactctl drives the two phase contact submission from a terminal:
// compose stores the message, send delivers it with a verification token
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"contactgate/internal/platform/logger"
)

func main() {
	lo := logger.FromEnv()
	if os.Getenv("LOG_LEVEL") == "" {
		lo.Level = "warn"
	}
	lo.Service = "contactctl"
	logger.Init(lo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errNotSent) {
			fmt.Fprintln(os.Stderr, "contactctl:", err)
		}
		os.Exit(1)
	}
}
