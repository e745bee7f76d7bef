package async_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"

	"github.com/dmleblanc/gitrelay/pkg/utils/async"
)

func TestDispatch_RunsDetached(t *testing.T) {
	done := make(chan struct{})

	// Cancelled parent context must not cancel the task
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	async.Dispatch(ctx, "test-task", func(taskCtx context.Context) error {
		gt.NoError(t, taskCtx.Err())
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestDispatch_RecoversPanic(t *testing.T) {
	var mu sync.Mutex
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&lockedWriter{mu: &mu, buf: &buf}, nil))
	ctx := ctxlog.With(context.Background(), logger)

	done := make(chan struct{})
	async.Dispatch(ctx, "panicking-task", func(context.Context) error {
		defer close(done)
		panic("boom")
	})

	<-done
	// The deferred recover runs after the task body returns; poll for
	// the log line rather than racing it.
	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		out := buf.String()
		mu.Unlock()
		if strings.Contains(out, "panic in async task") && strings.Contains(out, "panicking-task") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("panic not logged: %s", out)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDispatch_LogsError(t *testing.T) {
	var mu sync.Mutex
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&lockedWriter{mu: &mu, buf: &buf}, nil))
	ctx := ctxlog.With(context.Background(), logger)

	done := make(chan struct{})
	async.Dispatch(ctx, "failing-task", func(context.Context) error {
		defer close(done)
		return context.DeadlineExceeded
	})

	<-done
	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		out := buf.String()
		mu.Unlock()
		if strings.Contains(out, "async task failed") && strings.Contains(out, "failing-task") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("error not logged: %s", out)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

type lockedWriter struct {
	mu  *sync.Mutex
	buf *bytes.Buffer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
