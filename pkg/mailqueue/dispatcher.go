package mailqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/conference-backend/internal/metrics"
	"go.uber.org/zap"
)

// Handler performs one delivery attempt.
type Handler func(ctx context.Context, job Job) error

type Options struct {
	Workers     int
	MaxAttempts int
	Backoff     time.Duration
}

// Dispatcher runs delivery workers over a Queue. A failed job is retried by the
// worker that took it, with linear backoff, until MaxAttempts is reached.
type Dispatcher struct {
	queue  Queue
	handle Handler
	opts   Options
	log    *zap.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

func NewDispatcher(queue Queue, handle Handler, opts Options, log *zap.Logger) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Dispatcher{
		queue:  queue,
		handle: handle,
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
}

// EnqueueLoginLink submits a login link for delivery and returns without waiting for it.
func (d *Dispatcher) EnqueueLoginLink(ctx context.Context, to, name, link string) error {
	return d.Enqueue(ctx, Job{To: to, Name: name, Link: link})
}

func (d *Dispatcher) Enqueue(ctx context.Context, job Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = d.now().UTC()
	}
	return d.queue.Enqueue(ctx, job)
}

// Start launches the workers. They stop when ctx is cancelled or the queue closes.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
	d.log.Info("Mail dispatcher started", zap.Int("workers", d.opts.Workers))
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	log := d.log.With(zap.Int("worker", id))

	for {
		job, err := d.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrQueueClosed) {
				return
			}
			log.Error("Failed to dequeue mail job", zap.Error(err))
			if !sleep(ctx, time.Second) {
				return
			}
			continue
		}

		d.process(ctx, log, job)
	}
}

// process retries a job in place with linear backoff. The worker never puts a
// job back on its own queue.
func (d *Dispatcher) process(ctx context.Context, log *zap.Logger, job Job) {
	for {
		job.Attempt++
		fields := []zap.Field{
			zap.String("job_id", job.ID),
			zap.String("to", job.To),
			zap.Int("attempt", job.Attempt),
		}

		err := d.safeHandle(ctx, job)
		if err == nil {
			metrics.RecordMailDelivery("sent")
			log.Info("Delivered login link", fields...)
			return
		}

		if job.Attempt >= d.opts.MaxAttempts {
			metrics.RecordMailDelivery("failed")
			log.Error("Giving up on login link delivery", append(fields, zap.Error(err))...)
			return
		}

		metrics.RecordMailDelivery("retry")
		log.Warn("Login link delivery failed, retrying", append(fields, zap.Error(err))...)

		if !sleep(ctx, d.opts.Backoff*time.Duration(job.Attempt)) {
			log.Warn("Dropping login link on shutdown", fields...)
			return
		}
	}
}

func (d *Dispatcher) safeHandle(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("mail handler panicked")
			d.log.Error("Recovered mail handler panic", zap.Any("panic", r), zap.String("job_id", job.ID))
		}
	}()
	return d.handle(ctx, job)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
