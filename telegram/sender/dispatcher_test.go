package sender

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 4})
	var ran atomic.Int32
	if err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		ran.Add(1)
		return nil
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	d.Close()
	if ran.Load() != 1 {
		t.Fatalf("job ran %d times", ran.Load())
	}
}

func TestDispatcherCountsFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 4, MaxDuration: time.Second})
	if err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		return errors.New("telegram: Forbidden (403)")
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	d.Close()
	if d.ErrorCount() != 1 {
		t.Fatalf("error count = %d", d.ErrorCount())
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestClassifyAPIError(t *testing.T) {
	if kind := classifyError(errors.New("telegram: Forbidden (403)")); kind != "http_4xx" {
		t.Fatalf("kind = %q", kind)
	}
}

func TestSanitizeErrorMessageHidesToken(t *testing.T) {
	err := errors.New("Post \"https://api.telegram.org/bot12345:AAbbCCdd-ee/sendMessage\": EOF")
	msg := sanitizeErrorMessage(err)
	if msg == "" || msg == err.Error() {
		t.Fatalf("token not redacted: %q", msg)
	}
}
