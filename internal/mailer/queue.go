package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Queue delivers messages in the background. Enqueue never blocks and never
// reports delivery failures to the caller; they are logged.
type Queue struct {
	sender  Sender
	log     *slog.Logger
	jobs    chan Message
	workers int
	timeout time.Duration
	observe func(result string)

	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

func NewQueue(sender Sender, log *slog.Logger, size, workers int) *Queue {
	if size <= 0 {
		size = 64
	}
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		sender:  sender,
		log:     log.With("component", "mail_queue"),
		jobs:    make(chan Message, size),
		workers: workers,
		timeout: 30 * time.Second,
		observe: func(string) {},
	}
}

// Observe registers fn to be called with "sent", "failed" or "dropped" for
// every message. It must be called before Start.
func (q *Queue) Observe(fn func(result string)) {
	if fn != nil {
		q.observe = fn
	}
}

func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.run(i)
	}
}

// Enqueue schedules msg for delivery and reports whether it was accepted.
func (q *Queue) Enqueue(msg Message) bool {
	if msg.To == "" || !q.sender.Configured() {
		return false
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.jobs <- msg:
		return true
	default:
		q.log.Warn("mail_dropped", "reason", "queue full", "to", msg.To, "subject", msg.Subject)
		q.observe("dropped")
		return false
	}
}

func (q *Queue) run(worker int) {
	defer q.wg.Done()
	for msg := range q.jobs {
		q.deliver(worker, msg)
	}
}

func (q *Queue) deliver(worker int, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("mail_worker_panic", "worker", worker, "panic", r)
			q.observe("failed")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if err := q.sender.Send(ctx, msg); err != nil {
		q.log.Error("mail_send_failed", "worker", worker, "to", msg.To, "subject", msg.Subject, "error", err)
		q.observe("failed")
		return
	}
	q.log.Info("mail_sent", "worker", worker, "to", msg.To, "subject", msg.Subject)
	q.observe("sent")
}

// Close stops accepting messages and waits for pending ones until ctx ends.
func (q *Queue) Close(ctx context.Context) error {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.jobs)
		q.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
