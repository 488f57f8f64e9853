package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// Worker drains a bounded queue of outbound messages on a single goroutine.
// Enqueue never blocks the request path: when the queue is full, or the
// worker is already closed, the message is dropped and logged.
type Worker struct {
	sender Sender
	queue  chan Message
	log    *slog.Logger
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool

	retryBase     time.Duration
	retryAttempts uint64
}

func NewWorker(sender Sender, queueSize int, log *slog.Logger) *Worker {
	return &Worker{
		sender:        sender,
		queue:         make(chan Message, queueSize),
		log:           log,
		retryBase:     500 * time.Millisecond,
		retryAttempts: 3,
	}
}

// Start launches the delivery goroutine. It runs until ctx is cancelled or
// Close is called.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			// Cancellation wins over a ready queue.
			select {
			case <-ctx.Done():
				w.discardQueued()
				return
			default:
			}
			select {
			case <-ctx.Done():
				w.discardQueued()
				return
			case msg, ok := <-w.queue:
				if !ok {
					return
				}
				w.deliver(ctx, msg)
			}
		}
	}()
}

// Enqueue hands a message to the worker without waiting for delivery.
// Messages enqueued after Close are dropped.
func (w *Worker) Enqueue(msg Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.log.Warn("mail worker closed, dropping message", "to", msg.To, "subject", msg.Subject)
		return
	}
	select {
	case w.queue <- msg:
	default:
		w.log.Warn("mail queue full, dropping message", "to", msg.To, "subject", msg.Subject)
	}
}

// Close stops accepting messages and waits for the delivery goroutine to
// exit. Queued messages are still delivered on the way out, unless the
// Start context was already cancelled, in which case they are logged and
// dropped. Close is idempotent and safe to race with Enqueue.
func (w *Worker) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Worker) discardQueued() {
	for {
		select {
		case msg, ok := <-w.queue:
			if !ok {
				return
			}
			w.log.Warn("worker stopping, dropping queued message", "to", msg.To, "subject", msg.Subject)
		default:
			return
		}
	}
}

func (w *Worker) deliver(ctx context.Context, msg Message) {
	backoff := retry.WithMaxRetries(w.retryAttempts, retry.NewExponential(w.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := w.sender.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		w.log.Error("mail delivery failed", "to", msg.To, "subject", msg.Subject, "err", err)
		return
	}
	w.log.Info("mail delivered", "to", msg.To, "subject", msg.Subject)
}
