package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cloo-solutions/onboardai/internal/domain"
	"github.com/cloo-solutions/onboardai/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultWorkers bounds concurrent ask and brief executions.
const DefaultWorkers = 2

// ErrTimedOut is returned when work does not finish within its deadline.
var ErrTimedOut = domain.NewDomainError(domain.ErrCodeUnavailable, "execution timed out")

// Executor runs request work on a bounded pool. Each run gets its own data
// access handle. A slot stays taken until the work actually returns, so
// abandoned work still counts against the bound.
type Executor struct {
	sem      *semaphore.Weighted
	handles  service.HandleProvider
	logger   *zap.Logger
	inFlight atomic.Int64
}

func NewExecutor(handles service.HandleProvider, workers int, logger *zap.Logger) *Executor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		sem:     semaphore.NewWeighted(int64(workers)),
		handles: handles,
		logger:  logger,
	}
}

// InFlight returns the number of runs currently holding a slot.
func (e *Executor) InFlight() int64 {
	return e.inFlight.Load()
}

type runResult[T any] struct {
	value T
	err   error
}

// Run executes fn within timeout, counting the wait for a free slot. On
// timeout it returns ErrTimedOut at once; the work's context is cancelled
// and its handle is released when it returns. A panic in fn is returned as
// an error.
func Run[T any](ctx context.Context, e *Executor, timeout time.Duration, fn func(ctx context.Context, repos service.Repositories) (T, error)) (T, error) {
	var zero T
	runCtx, cancel := context.WithTimeout(ctx, timeout)

	if err := e.sem.Acquire(runCtx, 1); err != nil {
		cancel()
		return zero, timeoutOr(runCtx, err)
	}
	e.inFlight.Add(1)

	done := make(chan runResult[T], 1)
	go func() {
		defer e.sem.Release(1)
		defer e.inFlight.Add(-1)
		defer cancel()

		var res runResult[T]
		defer func() {
			if r := recover(); r != nil {
				res = runResult[T]{err: fmt.Errorf("worker panic: %v", r)}
			}
			done <- res
		}()

		handle, err := e.handles.Acquire(runCtx)
		if err != nil {
			res.err = err
			return
		}
		defer handle.Release()

		res.value, res.err = fn(runCtx, handle)
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-runCtx.Done():
		select {
		case res := <-done:
			return res.value, res.err
		default:
		}
		e.logger.Warn("execution abandoned", zap.Duration("timeout", timeout), zap.Error(runCtx.Err()))
		return zero, timeoutOr(runCtx, runCtx.Err())
	}
}

func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimedOut
	}
	return err
}
