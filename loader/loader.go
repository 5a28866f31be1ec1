// Package loader owns the compiled-path handle. A Loader opens the
// kernel library at most once at a time, memoizes a successful open and
// exposes wrappers that marshal plain Go containers into the typed
// buffers the kernels expect.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Kernels is the typed-buffer contract of the compiled path.
type Kernels interface {
	Fibonacci(n uint32) uint64
	FibonacciRecursive(n uint32) uint64
	BubbleSort(buf []int32)
	QuickSort(buf []int32)
	MatrixMultiply(a, b, out []float64, size int)
	ImageBlur(src, dst []byte, width, height int)
	PrimeSieve(limit uint32) []uint32
	Close() error
}

// OpenFunc performs the one-time load of the compiled artifact.
type OpenFunc func(ctx context.Context) (Kernels, error)

// LoadError reports that the compiled path could not be initialized.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load compiled kernels: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader lazily opens the kernels and hands out the memoized handle.
// Construct one per process at the entry point and pass it around.
type Loader struct {
	open   OpenFunc
	logger *slog.Logger

	mu      sync.RWMutex
	kernels Kernels

	flight singleflight.Group
	loads  atomic.Int64
}

// New creates a Loader that calls open on first use.
func New(open OpenFunc, logger *slog.Logger) *Loader {
	return &Loader{
		open:   open,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// EnsureLoaded returns the loaded kernels, opening them on first use.
// Concurrent first callers share a single open. A failed open is not
// memoized: the loader stays unloaded and the next call tries again.
func (l *Loader) EnsureLoaded(ctx context.Context) (Kernels, error) {
	if k := l.current(); k != nil {
		return k, nil
	}

	ch := l.flight.DoChan("load", func() (any, error) {
		if k := l.current(); k != nil {
			return k, nil
		}

		l.loads.Add(1)
		start := time.Now()

		k, err := l.open(context.WithoutCancel(ctx))
		if err != nil {
			l.logger.ErrorContext(ctx, "kernel load failed",
				slog.String("error", err.Error()),
			)

			return nil, &LoadError{Err: err}
		}
		if k == nil {
			return nil, &LoadError{Err: fmt.Errorf("open returned no kernels")}
		}

		l.mu.Lock()
		l.kernels = k
		l.mu.Unlock()

		l.logger.InfoContext(ctx, "kernels loaded",
			slog.Duration("load_time", time.Since(start)),
		)

		return k, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return res.Val.(Kernels), nil
	}
}

func (l *Loader) current() Kernels {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.kernels
}

// Loaded reports whether the kernels are currently open.
func (l *Loader) Loaded() bool {
	return l.current() != nil
}

// Loads returns how many times the underlying open was attempted.
func (l *Loader) Loads() int64 {
	return l.loads.Load()
}

// Close releases the kernels if loaded. The loader can be reused
// afterwards and will open again on demand.
func (l *Loader) Close() error {
	l.mu.Lock()
	k := l.kernels
	l.kernels = nil
	l.mu.Unlock()

	if k == nil {
		return nil
	}

	return k.Close()
}
