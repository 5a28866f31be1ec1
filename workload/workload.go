// Package workload generates the inputs fed to both execution paths.
// Shapes are fixed by the requested sizes; contents come from a seeded
// random source so a run can be replayed with the same seed.
package workload

import (
	"fmt"
	mrand "math/rand"
	"time"
)

// DefaultMax is the exclusive upper bound used by RandomArray when the
// caller passes a non-positive max.
const DefaultMax = 1000

// Sizes holds the input size parameters for every benchmark.
type Sizes struct {
	FibonacciN          int `json:"fibonacci_n"           yaml:"fibonacci_n"           mapstructure:"fibonacci-n"`
	FibonacciRecursiveN int `json:"fibonacci_recursive_n" yaml:"fibonacci_recursive_n" mapstructure:"fibonacci-recursive-n"`
	BubbleSortSize      int `json:"bubble_sort_size"      yaml:"bubble_sort_size"      mapstructure:"bubble-sort-size"`
	QuickSortSize       int `json:"quick_sort_size"       yaml:"quick_sort_size"       mapstructure:"quick-sort-size"`
	MaxValue            int `json:"max_value"             yaml:"max_value"             mapstructure:"max-value"`
	MatrixSize          int `json:"matrix_size"           yaml:"matrix_size"           mapstructure:"matrix-size"`
	ImageWidth          int `json:"image_width"           yaml:"image_width"           mapstructure:"image-width"`
	ImageHeight         int `json:"image_height"          yaml:"image_height"          mapstructure:"image-height"`
	SieveLimit          int `json:"sieve_limit"           yaml:"sieve_limit"           mapstructure:"sieve-limit"`
}

// DefaultSizes returns sizes that finish in a few seconds on a laptop.
func DefaultSizes() Sizes {
	return Sizes{
		FibonacciN:          90,
		FibonacciRecursiveN: 30,
		BubbleSortSize:      5000,
		QuickSortSize:       100000,
		MaxValue:            DefaultMax,
		MatrixSize:          128,
		ImageWidth:          512,
		ImageHeight:         512,
		SieveLimit:          1000000,
	}
}

// Validate rejects negative sizes.
func (s Sizes) Validate() error {
	fields := []struct {
		name string
		v    int
	}{
		{"fibonacci-n", s.FibonacciN},
		{"fibonacci-recursive-n", s.FibonacciRecursiveN},
		{"bubble-sort-size", s.BubbleSortSize},
		{"quick-sort-size", s.QuickSortSize},
		{"matrix-size", s.MatrixSize},
		{"image-width", s.ImageWidth},
		{"image-height", s.ImageHeight},
		{"sieve-limit", s.SieveLimit},
	}

	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", f.name, f.v)
		}
	}

	return nil
}

// Generator produces random inputs. It is not safe for concurrent use.
type Generator struct {
	seed int64
	rng  *mrand.Rand
}

// NewGenerator creates a Generator. A zero seed is replaced with one
// taken from the clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		seed: seed,
		rng:  mrand.New(mrand.NewSource(seed)),
	}
}

// Seed returns the effective seed.
func (g *Generator) Seed() int64 {
	return g.seed
}

// RandomArray returns size integers uniform in [0, max).
func (g *Generator) RandomArray(size, max int) []int {
	if max <= 0 {
		max = DefaultMax
	}

	out := make([]int, size)
	for i := range out {
		out[i] = g.rng.Intn(max)
	}

	return out
}

// RandomMatrix returns size*size floats uniform in [0, 100).
func (g *Generator) RandomMatrix(size int) []float64 {
	out := make([]float64, size*size)
	for i := range out {
		out[i] = g.rng.Float64() * 100
	}

	return out
}

// RandomImageData returns width*height RGBA pixels with random color
// channels and opaque alpha.
func (g *Generator) RandomImageData(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i] = byte(g.rng.Intn(256))
		pixels[i+1] = byte(g.rng.Intn(256))
		pixels[i+2] = byte(g.rng.Intn(256))
		pixels[i+3] = 255
	}

	return pixels
}
