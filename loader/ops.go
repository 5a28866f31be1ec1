package loader

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when a container cannot be marshaled into
// the layout a kernel expects. The kernels do no bounds checking, so
// shapes are validated before crossing the boundary.
var ErrInvalidInput = errors.New("invalid kernel input")

// Channels is the number of interleaved bytes per pixel.
const Channels = 4

// Fibonacci runs the iterative kernel.
func (l *Loader) Fibonacci(ctx context.Context, n int) (uint64, error) {
	k, err := l.EnsureLoaded(ctx)
	if err != nil {
		return 0, err
	}

	un, err := toUint32(n)
	if err != nil {
		return 0, err
	}

	return k.Fibonacci(un), nil
}

// FibonacciRecursive runs the naive recursive kernel.
func (l *Loader) FibonacciRecursive(ctx context.Context, n int) (uint64, error) {
	k, err := l.EnsureLoaded(ctx)
	if err != nil {
		return 0, err
	}

	un, err := toUint32(n)
	if err != nil {
		return 0, err
	}

	return k.FibonacciRecursive(un), nil
}

// BubbleSort returns a sorted copy of arr.
func (l *Loader) BubbleSort(ctx context.Context, arr []int) ([]int, error) {
	k, err := l.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	buf, err := toInt32s(arr)
	if err != nil {
		return nil, err
	}
	k.BubbleSort(buf)

	return fromInt32s(buf), nil
}

// QuickSort returns a sorted copy of arr.
func (l *Loader) QuickSort(ctx context.Context, arr []int) ([]int, error) {
	k, err := l.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	buf, err := toInt32s(arr)
	if err != nil {
		return nil, err
	}
	k.QuickSort(buf)

	return fromInt32s(buf), nil
}

// MatrixMultiply multiplies two size×size row-major matrices.
func (l *Loader) MatrixMultiply(ctx context.Context, a, b []float64, size int) ([]float64, error) {
	k, err := l.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	if size < 0 || len(a) != size*size || len(b) != size*size {
		return nil, fmt.Errorf("%w: matrices of %d and %d values for size %d",
			ErrInvalidInput, len(a), len(b), size)
	}

	ca := append([]float64(nil), a...)
	cb := append([]float64(nil), b...)
	out := make([]float64, size*size)
	k.MatrixMultiply(ca, cb, out, size)

	return out, nil
}

// ImageBlur blurs interleaved RGBA pixels into a new buffer.
func (l *Loader) ImageBlur(ctx context.Context, pixels []byte, width, height int) ([]byte, error) {
	k, err := l.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	if width < 0 || height < 0 || len(pixels) != width*height*Channels {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d image",
			ErrInvalidInput, len(pixels), width, height)
	}

	src := append([]byte(nil), pixels...)
	dst := make([]byte, len(src))
	k.ImageBlur(src, dst, width, height)

	return dst, nil
}

// PrimeSieve returns the primes <= limit.
func (l *Loader) PrimeSieve(ctx context.Context, limit int) ([]int, error) {
	k, err := l.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	if limit < 2 {
		return []int{}, nil
	}

	ul, err := toUint32(limit)
	if err != nil {
		return nil, err
	}

	primes := k.PrimeSieve(ul)
	out := make([]int, len(primes))
	for i, p := range primes {
		out[i] = int(p)
	}

	return out, nil
}

func toUint32(n int) (uint32, error) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit uint32", ErrInvalidInput, n)
	}

	return uint32(n), nil
}

func toInt32s(in []int) ([]int32, error) {
	out := make([]int32, len(in))
	for i, v := range in {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("%w: element %d = %d does not fit int32",
				ErrInvalidInput, i, v)
		}
		out[i] = int32(v)
	}

	return out, nil
}

func fromInt32s(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}

	return out
}
