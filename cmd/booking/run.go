package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

type lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Done() <-chan os.Signal
	StopTimeout() time.Duration
}

// run starts app, blocks until ctx is cancelled or fx requests shutdown, then
// stops it within the fx stop timeout. It returns the process exit code.
func run(ctx context.Context, app lifecycle, stderr io.Writer) int {
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(stderr, "failed to start homebooking: %v\n", err)
		return 1
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(stderr, "failed to stop homebooking: %v\n", err)
		return 1
	}
	return 0
}
