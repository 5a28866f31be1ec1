package loader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/duelbench/algo"
)

// fakeKernels implements Kernels on top of the Go algorithms.
type fakeKernels struct {
	closed atomic.Bool
}

func (f *fakeKernels) Fibonacci(n uint32) uint64 { return algo.Fibonacci(int(n)) }
func (f *fakeKernels) FibonacciRecursive(n uint32) uint64 { return algo.FibonacciRecursive(int(n)) }

func (f *fakeKernels) BubbleSort(buf []int32) { sortInt32(buf, algo.BubbleSort) }
func (f *fakeKernels) QuickSort(buf []int32) { sortInt32(buf, algo.QuickSort) }

func (f *fakeKernels) MatrixMultiply(a, b, out []float64, size int) {
	copy(out, algo.MatrixMultiply(a, b, size))
}

func (f *fakeKernels) ImageBlur(src, dst []byte, width, height int) {
	copy(dst, algo.ImageBlur(src, width, height))
}

func (f *fakeKernels) PrimeSieve(limit uint32) []uint32 {
	primes := algo.PrimeSieve(int(limit))
	out := make([]uint32, len(primes))
	for i, p := range primes {
		out[i] = uint32(p)
	}

	return out
}

func (f *fakeKernels) Close() error {
	f.closed.Store(true)

	return nil
}

func sortInt32(buf []int32, sort func([]int) []int) {
	in := make([]int, len(buf))
	for i, v := range buf {
		in[i] = int(v)
	}
	for i, v := range sort(in) {
		buf[i] = int32(v)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFakeLoader() (*Loader, *fakeKernels) {
	k := &fakeKernels{}
	l := New(func(context.Context) (Kernels, error) { return k, nil }, discardLogger())

	return l, k
}

func TestEnsureLoadedOnce(t *testing.T) {
	l, k := newFakeLoader()
	ctx := context.Background()

	assert.False(t, l.Loaded())

	got1, err := l.EnsureLoaded(ctx)
	require.NoError(t, err)
	got2, err := l.EnsureLoaded(ctx)
	require.NoError(t, err)

	assert.Same(t, k, got1)
	assert.Same(t, k, got2)
	assert.Equal(t, int64(1), l.Loads())
	assert.True(t, l.Loaded())
}

func TestEnsureLoadedConcurrentFirstUse(t *testing.T) {
	release := make(chan struct{})
	var opens atomic.Int64

	l := New(func(context.Context) (Kernels, error) {
		opens.Add(1)
		<-release

		return &fakeKernels{}, nil
	}, discardLogger())

	const callers = 16

	var wg sync.WaitGroup
	errs := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.EnsureLoaded(context.Background())
			errs <- err
		}()
	}

	// Give the goroutines a chance to pile up on the in-flight load.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), opens.Load())
}

func TestEnsureLoadedFailureIsRetried(t *testing.T) {
	boom := errors.New("artifact missing")
	fail := true

	l := New(func(context.Context) (Kernels, error) {
		if fail {
			return nil, boom
		}

		return &fakeKernels{}, nil
	}, discardLogger())

	_, err := l.EnsureLoaded(context.Background())
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, boom)
	assert.False(t, l.Loaded())

	// Wrapped operations surface the same failure.
	_, err = l.QuickSort(context.Background(), []int{3, 1, 2})
	require.ErrorAs(t, err, &loadErr)

	fail = false
	_, err = l.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.True(t, l.Loaded())
	assert.Equal(t, int64(3), l.Loads())
}

func TestEnsureLoadedNilKernels(t *testing.T) {
	l := New(func(context.Context) (Kernels, error) { return nil, nil }, discardLogger())

	_, err := l.EnsureLoaded(context.Background())

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.False(t, l.Loaded())
}

func TestEnsureLoadedContextCanceled(t *testing.T) {
	release := make(chan struct{})
	l := New(func(context.Context) (Kernels, error) {
		<-release

		return &fakeKernels{}, nil
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.EnsureLoaded(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	_, err = l.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), l.Loads())
}

func TestClose(t *testing.T) {
	l, k := newFakeLoader()

	require.NoError(t, l.Close())

	_, err := l.EnsureLoaded(context.Background())
	require.NoError(t, err)
	require.NoError(t, l.Close())

	assert.True(t, k.closed.Load())
	assert.False(t, l.Loaded())
}

func TestWrappedOperations(t *testing.T) {
	l, _ := newFakeLoader()
	ctx := context.Background()

	fib, err := l.Fibonacci(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(12586269025), fib)

	fibRec, err := l.FibonacciRecursive(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, algo.Fibonacci(15), fibRec)

	in := []int{5, -2, 9, 0, 5}
	bubble, err := l.BubbleSort(ctx, in)
	require.NoError(t, err)
	quick, err := l.QuickSort(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, []int{-2, 0, 5, 5, 9}, bubble)
	assert.Equal(t, bubble, quick)
	assert.Equal(t, []int{5, -2, 9, 0, 5}, in)

	m, err := l.MatrixMultiply(ctx, []float64{1, 2, 3, 4}, []float64{5, 6, 7, 8}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{19, 22, 43, 50}, m)

	px := make([]byte, 3*3*Channels)
	for i := range px {
		px[i] = 77
	}
	blurred, err := l.ImageBlur(ctx, px, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, px, blurred)

	primes, err := l.PrimeSieve(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, primes)

	empty, err := l.PrimeSieve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{}, empty)
}

func TestWrappedOperationsRejectMalformedInput(t *testing.T) {
	l, _ := newFakeLoader()
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"negative fibonacci", func() error { _, err := l.Fibonacci(ctx, -1); return err }},
		{"oversized fibonacci", func() error { _, err := l.FibonacciRecursive(ctx, math.MaxUint32+1); return err }},
		{"int32 overflow", func() error { _, err := l.BubbleSort(ctx, []int{math.MaxInt32 + 1}); return err }},
		{"short matrix", func() error { _, err := l.MatrixMultiply(ctx, []float64{1}, []float64{1, 2, 3, 4}, 2); return err }},
		{"short image", func() error { _, err := l.ImageBlur(ctx, make([]byte, 10), 3, 3); return err }},
		{"oversized sieve", func() error { _, err := l.PrimeSieve(ctx, math.MaxUint32+1); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), ErrInvalidInput)
		})
	}
}
