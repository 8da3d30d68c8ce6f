package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/collie-dev/collie/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// callWithRetry runs one external call with an independent per-attempt
// timeout and bounded exponential backoff. Only transient-tagged errors
// are retried; permanent and malformed errors abort immediately. A
// per-attempt timeout counts as transient.
func (uc *reviewUseCase) callWithRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	logger := ctxlog.From(ctx)
	delay := uc.cfg.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= uc.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return goerr.Wrap(ctx.Err(), op+" aborted during backoff", goerr.T(types.ErrTagTransient))
			}
			delay *= 2
		}

		callCtx, cancel := context.WithTimeout(ctx, uc.cfg.CallTimeout)
		err := fn(callCtx)
		cancel()

		if err == nil {
			if attempt > 1 {
				logger.Info("external call recovered", "op", op, "attempt", attempt)
			}
			return nil
		}

		if errors.Is(err, context.DeadlineExceeded) {
			err = goerr.Wrap(err, op+" timed out", goerr.T(types.ErrTagTransient))
		}
		lastErr = err

		if !types.IsRetryable(err) {
			return err
		}

		logger.Warn("transient failure on external call",
			"op", op,
			"attempt", attempt,
			"max_attempts", uc.cfg.MaxAttempts,
			"error", err,
		)
	}

	return goerr.Wrap(lastErr, op+" exhausted retries",
		goerr.T(types.ErrTagTransient),
		goerr.V("attempts", uc.cfg.MaxAttempts),
	)
}
