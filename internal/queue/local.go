package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrQueueFull is returned by the local queue when its buffer is exhausted.
	ErrQueueFull = errors.New("queue full")
	// ErrClosed is returned by Enqueue once the queue has been closed.
	ErrClosed = errors.New("queue closed")
)

// LocalQueue is an in-process queue for single-binary deployments
// (QUEUE_PROVIDER=none) and tests. Tasks are lost on restart.
type LocalQueue struct {
	log     *slog.Logger
	backoff time.Duration

	mu       sync.Mutex
	channels map[TaskType]chan Task
	size     int
	closed   bool
}

func NewLocal(log *slog.Logger, size int) *LocalQueue {
	if size <= 0 {
		size = 256
	}
	return &LocalQueue{log: log, backoff: time.Second, channels: make(map[TaskType]chan Task), size: size}
}

func (q *LocalQueue) channel(t TaskType) (chan Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, false
	}
	ch, ok := q.channels[t]
	if !ok {
		ch = make(chan Task, q.size)
		q.channels[t] = ch
	}
	return ch, true
}

func (q *LocalQueue) Enqueue(_ context.Context, task Task) error {
	if task.Type == "" {
		return errors.New("task type required")
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	ch, ok := q.channel(task.Type)
	if !ok {
		return ErrClosed
	}
	select {
	case ch <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *LocalQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	ch, ok := q.channel(taskType)
	if !ok {
		return ErrClosed
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-ch:
			if err := waitUntil(ctx, task.NotBefore); err != nil {
				return nil
			}
			if err := handler(ctx, task); err != nil {
				if !nextAttempt(&task, q.backoff) {
					q.log.Error("task permanently failed", "id", task.ID, "type", task.Type, "original_err", err)
					continue
				}
				if err := q.Enqueue(ctx, task); err != nil {
					q.log.Error("failed to re-enqueue task after failure", "id", task.ID, "err", err)
				}
			}
		}
	}
}

// Close rejects further enqueues. Tasks already buffered are still delivered
// to running workers.
func (q *LocalQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}
