package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"textprep/internal/app"
	"textprep/internal/extract"
	"textprep/internal/httputil"
	"textprep/internal/queue"
	"textprep/internal/store"
)

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+1<<10)

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		kind, err := extract.Detect(header.Filename, header.Header.Get("Content-Type"))
		if err != nil {
			httputil.Fail(deps.Log, w, "unsupported file type (only TXT, PDF and CSV allowed)", err, http.StatusBadRequest)
			return
		}
		stem, lem, err := formFlags(deps, r)
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid stem or lemmatize flag", err, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		rows, err := extract.Rows(kind, content)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to extract text", err, http.StatusUnprocessableEntity)
			return
		}

		doc, err := deps.Store.CreateDocument(ctx, header.Filename, string(kind))
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist document", err, http.StatusInternalServerError)
			return
		}

		body, err := json.Marshal(queue.NormalizePayload{
			DocumentID: doc.ID,
			Rows:       rows,
			Stem:       stem,
			Lemmatize:  lem,
		})
		if err != nil {
			fail(deps, ctx, w, "marshal payload failed", err, doc.ID, http.StatusInternalServerError, true)
			return
		}
		task := queue.Task{Type: queue.TaskTypeNormalize, Payload: body}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			fail(deps, ctx, w, "failed to enqueue document; please retry", err, doc.ID, http.StatusInternalServerError, true)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"document_id": doc.ID.String(),
			"status":      doc.Status,
			"rows":        len(rows),
		})
	}
}

func formFlags(deps app.Deps, r *http.Request) (bool, bool, error) {
	stem, lem := deps.Config.Stem, deps.Config.Lemmatize
	var err error
	if v := r.FormValue("stem"); v != "" {
		if stem, err = strconv.ParseBool(v); err != nil {
			return false, false, err
		}
	}
	if v := r.FormValue("lemmatize"); v != "" {
		if lem, err = strconv.ParseBool(v); err != nil {
			return false, false, err
		}
	}
	return stem, lem, nil
}

// fail is gateway-specific error handler that can mark documents as failed
func fail(deps app.Deps, ctx context.Context, w http.ResponseWriter, message string, err error, docID uuid.UUID, status int, markFailed bool) {
	log := deps.Log.With("document_id", docID)
	if markFailed && docID != uuid.Nil {
		if upErr := deps.Store.UpdateDocumentStatus(ctx, docID, store.StatusFailed); upErr != nil {
			log.Error("failed to mark document failed", "err", upErr)
		}
	}

	httputil.Fail(log, w, message, err, status)
}

func documentID(deps app.Deps, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	docID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return docID, true
}

func documentHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID, ok := documentID(deps, w, r)
		if !ok {
			return
		}
		doc, err := deps.Store.GetDocument(r.Context(), docID)
		if errors.Is(err, store.ErrNotFound) {
			httputil.Fail(deps.Log, w, "document not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load document", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, doc)
	}
}

func tokensHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docID, ok := documentID(deps, w, r)
		if !ok {
			return
		}
		doc, err := deps.Store.GetDocument(r.Context(), docID)
		if errors.Is(err, store.ErrNotFound) {
			httputil.Fail(deps.Log, w, "document not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load document", err, http.StatusInternalServerError)
			return
		}
		switch doc.Status {
		case store.StatusProcessing:
			httputil.Fail(deps.Log, w, "tokens not ready", nil, http.StatusConflict)
			return
		case store.StatusFailed:
			httputil.Fail(deps.Log, w, "document processing failed", nil, http.StatusUnprocessableEntity)
			return
		}
		sets, err := deps.Store.ListTokens(r.Context(), docID)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load tokens", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"document_id": docID,
			"status":      doc.Status,
			"rows":        sets,
		})
	}
}
