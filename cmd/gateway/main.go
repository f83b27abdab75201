package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"textprep/internal/app"
	"textprep/internal/httputil"
	"textprep/internal/imageprep"
	"textprep/internal/llm"
	"textprep/internal/media"
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

	// Without an external broker the gateway drains its own queue.
	if local, ok := deps.Queue.(*queue.LocalQueue); ok {
		go func() {
			h := worker.NormalizeHandler(deps.Processor, deps.Store, deps.Log)
			if err := local.Worker(context.Background(), queue.TaskTypeNormalize, h); err != nil {
				deps.Log.Error("in-process worker stopped", "err", err)
			}
		}()
	}

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, newRouter(deps)); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/normalize", normalizeHandler(deps))
	r.Post("/api/normalize/batch", batchHandler(deps))

	r.Post("/api/documents", uploadHandler(deps))
	r.Get("/api/documents/{id}", documentHandler(deps))
	r.Get("/api/documents/{id}/tokens", tokensHandler(deps))

	r.Post("/api/text/translate", translateHandler(deps))
	r.Post("/api/text/entities", entitiesHandler(deps))
	r.Post("/api/text/sentiment", sentimentHandler(deps))
	r.Post("/api/text/generate", generateHandler(deps))
	r.Post("/api/text/embed", embedHandler(deps))
	r.Post("/api/chat", chatHandler(deps))
	r.Post("/api/prompt/clean", cleanPromptHandler(deps))

	r.Post("/api/images/prepare", prepareImageHandler(deps))
	r.Post("/api/images/generate", generateImageHandler(deps))
	r.Post("/api/images/describe", describeImageHandler(deps))
	r.Post("/api/audio/transcribe", transcribeHandler(deps))

	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}

// failRemote maps errors from remote capabilities to a status code.
func failRemote(log *slog.Logger, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		httputil.Fail(log, w, op+" is not available: no model provider configured", err, http.StatusNotImplemented)
	case errors.Is(err, media.ErrUnsupportedSize):
		httputil.Fail(log, w, err.Error(), err, http.StatusBadRequest)
	case errors.Is(err, imageprep.ErrTooLarge):
		httputil.Fail(log, w, "image too large after preparation", err, http.StatusRequestEntityTooLarge)
	case errors.Is(err, context.DeadlineExceeded):
		httputil.Fail(log, w, op+" timed out", err, http.StatusGatewayTimeout)
	default:
		httputil.Fail(log, w, op+" failed", err, http.StatusBadGateway)
	}
}
