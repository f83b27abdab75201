package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"textprep/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

const (
	TaskTypeNormalize TaskType = "normalize"
)

// NormalizePayload asks a worker to normalize the extracted rows of a
// stored document.
type NormalizePayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	Rows       []string  `json:"rows"`
	Stem       bool      `json:"stem"`
	Lemmatize  bool      `json:"lemmatize"`
}

// DefaultMaxAttempts bounds redelivery of a failing task.
const DefaultMaxAttempts = 5

// Task is a unit of work handed from the gateway to workers.
type Task struct {
	ID          uuid.UUID
	Type        TaskType
	Payload     []byte
	Attempts    int
	MaxAttempts int
	NotBefore   time.Time
}

type Handler func(context.Context, Task) error

// Queue exposes a minimal contract to enqueue and consume tasks.
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	// Worker blocks, feeding tasks of taskType to handler until ctx ends.
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
	Close() error
}

// EnqueueWithRetry attempts to enqueue with retries and exponential backoff.
func EnqueueWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = q.Enqueue(ctx, task); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base)):
		}
	}
	return err
}

// nextAttempt bumps the attempt counter and reports whether task should be
// redelivered, setting NotBefore to the back-off deadline.
func nextAttempt(task *Task, base time.Duration) bool {
	task.Attempts++
	if task.MaxAttempts == 0 {
		task.MaxAttempts = DefaultMaxAttempts
	}
	if task.Attempts >= task.MaxAttempts {
		return false
	}
	task.NotBefore = time.Now().Add(retry.ExponentialBackoff(task.Attempts, base))
	return true
}

// waitUntil sleeps until t or ctx is done.
func waitUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
