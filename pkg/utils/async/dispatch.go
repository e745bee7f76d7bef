package async

import (
	"context"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs task on a new goroutine detached from the caller's
// cancellation, so an HTTP response can be written before the task
// finishes. The caller's logger is carried over; panics are recovered
// and both panics and returned errors are logged and reported to
// Sentry (a no-op when Sentry is not configured).
func Dispatch(ctx context.Context, name string, task func(ctx context.Context) error) {
	taskCtx := ctxlog.With(context.Background(), ctxlog.From(ctx))

	go func() {
		logger := ctxlog.From(taskCtx)

		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async task",
					"task", name,
					"recover", r,
					"stack", string(debug.Stack()),
				)
				sentry.CurrentHub().Recover(r)
			}
		}()

		if err := task(taskCtx); err != nil {
			logger.Error("async task failed", "task", name, "error", err)
			sentry.CaptureException(err)
		}
	}()
}
