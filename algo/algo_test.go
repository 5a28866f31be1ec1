package algo

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFibonacci(t *testing.T) {
	tests := []struct {
		n    int
		want uint64
	}{
		{-3, 0},
		{0, 0},
		{1, 1},
		{2, 1},
		{10, 55},
		{20, 6765},
		{50, 12586269025},
		{93, 12200160415121876738},
	}

	for _, tt := range tests {
		if got := Fibonacci(tt.n); got != tt.want {
			t.Errorf("Fibonacci(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestFibonacciRecursiveMatchesIterative(t *testing.T) {
	for n := 0; n <= 25; n++ {
		assert.Equal(t, Fibonacci(n), FibonacciRecursive(n), "n=%d", n)
	}
}

func TestSortsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	inputs := [][]int{
		{},
		{1},
		{2, 1},
		{5, 5, 5, 5},
		{9, 8, 7, 6, 5, 4, 3, 2, 1},
		{1, 2, 3, 4, 5},
	}
	random := make([]int, 500)
	for i := range random {
		random[i] = rng.Intn(100)
	}
	inputs = append(inputs, random)

	for _, in := range inputs {
		orig := slices.Clone(in)
		want := slices.Clone(in)
		slices.Sort(want)

		bubble := BubbleSort(in)
		quick := QuickSort(in)

		assert.Equal(t, want, bubble)
		assert.Equal(t, want, quick)
		assert.Equal(t, orig, in, "input must be left untouched")
	}
}

func TestMatrixMultiply(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{5, 6, 7, 8}

	assert.Equal(t, []float64{19, 22, 43, 50}, MatrixMultiply(a, b, 2))
}

func TestMatrixMultiplyIdentity(t *testing.T) {
	const size = 3
	a := []float64{1.5, 2, 3, 4, 5, 6, 7, 8, 9.25}
	id := []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}

	assert.Equal(t, a, MatrixMultiply(a, id, size))
	assert.Equal(t, a, MatrixMultiply(id, a, size))
}

func TestMatrixMultiplyMalformedPanics(t *testing.T) {
	assert.Panics(t, func() {
		MatrixMultiply([]float64{1}, []float64{1, 2, 3, 4}, 2)
	})
}

func TestImageBlurUniform(t *testing.T) {
	const w, h = 3, 3
	px := make([]byte, w*h*Channels)
	for i := 0; i < len(px); i += Channels {
		copy(px[i:i+Channels], []byte{10, 20, 30, 255})
	}

	out := ImageBlur(px, w, h)

	require.Len(t, out, len(px))
	assert.Equal(t, px, out)
}

func TestImageBlurCenterAverage(t *testing.T) {
	const w, h = 3, 3
	px := make([]byte, w*h*Channels)
	// Only the top-left red channel is non-zero.
	px[0] = 200

	out := ImageBlur(px, w, h)

	center := (1*w + 1) * Channels
	assert.Equal(t, byte(200/9), out[center])
	assert.Equal(t, byte(200), out[0], "border copied unchanged")
	assert.Equal(t, byte(0), px[center], "input untouched")
}

func TestImageBlurDegenerate(t *testing.T) {
	assert.Empty(t, ImageBlur(nil, 0, 0))

	row := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	assert.Equal(t, row, ImageBlur(row, 2, 1))
}

func TestPrimeSieve(t *testing.T) {
	assert.Equal(t, []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, PrimeSieve(30))
	assert.Equal(t, []int{}, PrimeSieve(1))
	assert.Equal(t, []int{}, PrimeSieve(0))
	assert.Equal(t, []int{}, PrimeSieve(-5))
	assert.Equal(t, []int{2}, PrimeSieve(2))
	assert.Len(t, PrimeSieve(1000), 168)
}
