package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"textprep/internal/app"
	"textprep/internal/httputil"
	"textprep/internal/queue"
	"textprep/internal/worker"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()
	deps.Log.Info("normalize worker starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, deps); err != nil {
		deps.Log.Error("worker service stopped", "err", err)
	}
}

func run(ctx context.Context, deps app.Deps) error {
	g, ctx := errgroup.WithContext(ctx)

	// Run queue worker
	g.Go(func() error {
		h := worker.NormalizeHandler(deps.Processor, deps.Store, deps.Log)
		return deps.Queue.Worker(ctx, queue.TaskTypeNormalize, h)
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps.Config.Port, deps.Log, "worker")
	})

	// Wait for either to fail
	return g.Wait()
}
