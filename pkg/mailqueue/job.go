package mailqueue

import (
	"context"
	"errors"
	"time"
)

var ErrQueueClosed = errors.New("mail queue closed")

// Job is one login link delivery.
type Job struct {
	ID         string    `json:"id"`
	To         string    `json:"to"`
	Name       string    `json:"name"`
	Link       string    `json:"link"`
	Attempt    int       `json:"attempt"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks until a job is available or ctx is done.
	Dequeue(ctx context.Context) (Job, error)
	Close() error
}
