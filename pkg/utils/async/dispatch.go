package async

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

// Group runs handlers in background goroutines and lets the owner wait for
// them before shutting down. The zero value is ready to use.
type Group struct {
	wg sync.WaitGroup
}

// Dispatch executes a handler function asynchronously in a new goroutine.
// The handler gets a background context carrying the caller's logger, so it
// outlives the request that started it. Errors and panics are logged.
func (g *Group) Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger := logging.From(bgCtx)
				logger.Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logger := logging.From(bgCtx)
			logger.Error("async handler failed", "error", err, "values", goerr.Values(err))
		}
	}()
}

// Wait blocks until every dispatched handler has returned
func (g *Group) Wait() {
	g.wg.Wait()
}
