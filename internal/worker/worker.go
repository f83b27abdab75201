// Package worker turns queued normalize tasks into stored token sets.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"textprep/internal/processor"
	"textprep/internal/queue"
	"textprep/internal/store"
)

// NormalizeHandler returns the queue handler for queue.TaskTypeNormalize.
// A document is marked failed once its task has used its last attempt.
func NormalizeHandler(p *processor.Processor, st store.Store, log *slog.Logger) queue.Handler {
	return func(ctx context.Context, task queue.Task) error {
		var payload queue.NormalizePayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			// Redelivery cannot fix a malformed payload.
			log.Error("dropping undecodable normalize task", "id", task.ID, "err", err)
			return nil
		}
		err := Normalize(ctx, p, st, payload)
		if err == nil {
			log.Info("document normalized", "document_id", payload.DocumentID, "rows", len(payload.Rows))
			return nil
		}
		if lastAttempt(task) {
			if upErr := st.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusFailed); upErr != nil {
				log.Error("failed to mark document failed", "document_id", payload.DocumentID, "err", upErr)
			}
		}
		return err
	}
}

// Normalize stores one token set per payload row and marks the document ready.
func Normalize(ctx context.Context, p *processor.Processor, st store.Store, payload queue.NormalizePayload) error {
	tokens, err := p.TokenizeBatch(ctx, payload.Rows, payload.Stem, payload.Lemmatize)
	if err != nil {
		return fmt.Errorf("normalize rows: %w", err)
	}
	sets := make([]store.TokenSet, len(tokens))
	for i, toks := range tokens {
		sets[i] = store.TokenSet{
			DocumentID: payload.DocumentID,
			Row:        i,
			Tokens:     toks,
			Stemmed:    payload.Stem,
			Lemmatized: payload.Lemmatize,
		}
	}
	if err := st.SaveTokens(ctx, payload.DocumentID, sets); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return st.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusReady)
}

func lastAttempt(task queue.Task) bool {
	limit := task.MaxAttempts
	if limit == 0 {
		limit = queue.DefaultMaxAttempts
	}
	return task.Attempts+1 >= limit
}
