//go:build !cgo || !(linux || darwin)

package kernels

import "github.com/pkg/errors"

// Library is unavailable on this build; Open always fails.
type Library struct{}

// Open reports ErrUnsupported.
func Open(path string) (*Library, error) {
	return nil, errors.Wrapf(ErrUnsupported, "open %s", path)
}

func (l *Library) Path() string { return "" }
func (l *Library) Fibonacci(uint32) uint64 { return 0 }
func (l *Library) FibonacciRecursive(uint32) uint64 { return 0 }
func (l *Library) BubbleSort([]int32) {}
func (l *Library) QuickSort([]int32) {}
func (l *Library) MatrixMultiply(_, _, _ []float64, _ int) {}
func (l *Library) ImageBlur(_, _ []byte, _, _ int) {}
func (l *Library) PrimeSieve(uint32) []uint32 { return nil }
func (l *Library) Close() error { return nil }
