package mailer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []Message
	failures int // fail this many sends before succeeding
}

func (f *fakeSender) Send(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) delivered() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.sent...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerDeliversEnqueuedMail(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(sender, 4, discardLogger())
	w.Start(context.Background())

	w.Enqueue(Welcome("ada@example.com", "ada"))
	w.Close()

	sent := sender.delivered()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@example.com", sent[0].To)
	assert.Equal(t, "Welcome note from Eventrite", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "Hello ada")
}

func TestWorkerRetriesTransientFailures(t *testing.T) {
	sender := &fakeSender{failures: 2}
	w := NewWorker(sender, 1, discardLogger())
	w.retryBase = time.Millisecond
	w.Start(context.Background())

	w.Enqueue(Welcome("grace@example.com", "grace"))
	w.Close()

	require.Len(t, sender.delivered(), 1)
}

func TestWorkerGivesUpAfterMaxRetries(t *testing.T) {
	sender := &fakeSender{failures: 10}
	w := NewWorker(sender, 1, discardLogger())
	w.retryBase = time.Millisecond
	w.Start(context.Background())

	w.Enqueue(Welcome("grace@example.com", "grace"))
	w.Close()

	assert.Empty(t, sender.delivered())
}

func TestEnqueueAfterCloseDropsMessage(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(sender, 4, discardLogger())
	w.Start(context.Background())
	w.Close()

	assert.NotPanics(t, func() {
		w.Enqueue(Welcome("late@example.com", "late"))
	})
	assert.Empty(t, sender.delivered())
}

func TestCloseIsIdempotent(t *testing.T) {
	w := NewWorker(&fakeSender{}, 1, discardLogger())
	w.Start(context.Background())
	w.Close()
	assert.NotPanics(t, w.Close)
}

func TestCancelledContextDropsQueuedMail(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(sender, 4, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w.Enqueue(Welcome("ada@example.com", "ada"))
	w.Start(ctx)
	w.Close()

	assert.Empty(t, sender.delivered())
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	// Worker never started, so the queue fills up without being drained.
	w := NewWorker(&fakeSender{}, 1, discardLogger())

	w.Enqueue(Welcome("a@example.com", "a"))
	w.Enqueue(Welcome("b@example.com", "b")) // dropped, must not block

	assert.Len(t, w.queue, 1)
}

func TestWelcomeBody(t *testing.T) {
	msg := Welcome("ada@example.com", "ada")
	assert.True(t, strings.Contains(msg.HTML, "created an account with us here at Eventrite"))
}

func TestNewSMTPSenderRequiresHostAndFrom(t *testing.T) {
	_, err := NewSMTPSender("", 587, "u", "p", "no-reply@eventrite.io")
	assert.Error(t, err)

	_, err = NewSMTPSender("smtp.example.com", 587, "u", "p", "")
	assert.Error(t, err)

	s, err := NewSMTPSender("smtp.example.com", 587, "u", "p", "no-reply@eventrite.io")
	require.NoError(t, err)
	assert.NotNil(t, s)
}
