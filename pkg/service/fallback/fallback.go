// Package fallback runs an ordered list of interchangeable backends until one
// succeeds, collecting every failure on the way.
package fallback

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
)

// ErrNoBackend is returned when a chain has nothing to call
var ErrNoBackend = errors.New("no backend configured")

// Backend is one candidate of a chain
type Backend[T any] struct {
	Name string
	Call func(ctx context.Context) (T, error)
}

// Failure is the error a backend returned
type Failure struct {
	Position int
	Backend  string
	Err      error
}

// ExhaustedError is returned when every backend failed
type ExhaustedError struct {
	Failures []Failure
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Backend + ": " + f.Err.Error()
	}
	return "all backends failed: " + strings.Join(parts, "; ")
}

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Result is the outcome of a chain run
type Result[T any] struct {
	Value    T
	Position int // index of the backend that answered, -1 when degraded
	Backend  string
	Degraded bool
	Failures []Failure
}

// Chain tries backends in order
type Chain[T any] struct {
	backends []Backend[T]
	timeout  time.Duration
	degrade  func(ctx context.Context, err *ExhaustedError) T
}

// Option is a functional option for Chain
type Option[T any] func(*Chain[T])

// WithTimeout bounds each backend call. A timeout counts as a failure.
func WithTimeout[T any](d time.Duration) Option[T] {
	return func(c *Chain[T]) {
		c.timeout = d
	}
}

// WithDegrade turns exhaustion into a value instead of an error
func WithDegrade[T any](fn func(ctx context.Context, err *ExhaustedError) T) Option[T] {
	return func(c *Chain[T]) {
		c.degrade = fn
	}
}

// New creates a chain over backends, tried in the given order
func New[T any](backends []Backend[T], opts ...Option[T]) *Chain[T] {
	c := &Chain[T]{backends: backends}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run calls backends in order and returns the first success. When all fail it
// degrades if configured, otherwise returns an error wrapping *ExhaustedError.
// Cancellation of ctx stops the chain and is returned as is.
func (c *Chain[T]) Run(ctx context.Context) (*Result[T], error) {
	if len(c.backends) == 0 {
		return nil, goerr.Wrap(ErrNoBackend, "fallback chain is empty")
	}

	logger := logging.From(ctx)
	var failures []Failure

	for i, b := range c.backends {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "fallback chain canceled", goerr.V("backend", b.Name))
		}

		v, err := c.call(ctx, b)
		if err == nil {
			return &Result[T]{
				Value:    v,
				Position: i,
				Backend:  b.Name,
				Failures: failures,
			}, nil
		}

		if ctx.Err() != nil {
			return nil, goerr.Wrap(ctx.Err(), "fallback chain canceled", goerr.V("backend", b.Name))
		}

		logger.Warn("backend failed, trying next",
			"backend", b.Name,
			"position", i,
			"error", err,
		)
		failures = append(failures, Failure{Position: i, Backend: b.Name, Err: err})
	}

	exhausted := &ExhaustedError{Failures: failures}
	if c.degrade != nil {
		logger.Error("all backends failed, degrading", "error", exhausted)
		return &Result[T]{
			Value:    c.degrade(ctx, exhausted),
			Position: -1,
			Degraded: true,
			Failures: failures,
		}, nil
	}

	return nil, goerr.Wrap(exhausted, "all backends failed")
}

func (c *Chain[T]) call(ctx context.Context, b Backend[T]) (T, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return b.Call(ctx)
}
