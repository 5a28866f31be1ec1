package harness

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"time"
)

// Func is a zero-argument benchmark body bound to its input.
type Func func(ctx context.Context) (any, error)

// Benchmark runs interpreted then compiled, sequentially, and times each
// with the monotonic clock. Load latency of the compiled path on first
// use is part of its measured time. An error from either path aborts the
// benchmark.
func Benchmark(ctx context.Context, name string, compiled, interpreted Func) (*Result, error) {
	interpretedOut, interpretedTime, err := measure(ctx, interpreted)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", name, Interpreted, err)
	}

	compiledOut, compiledTime, err := measure(ctx, compiled)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", name, Compiled, err)
	}

	return &Result{
		Name:              name,
		CompiledTime:      compiledTime,
		InterpretedTime:   interpretedTime,
		CompiledResult:    compiledOut,
		InterpretedResult: interpretedOut,
		Speedup:           CalculateSpeedup(compiledTime, interpretedTime),
		Winner:            DetermineWinner(compiledTime, interpretedTime),
		Agree:             Equivalent(compiledOut, interpretedOut),
	}, nil
}

func measure(ctx context.Context, fn Func) (any, time.Duration, error) {
	start := time.Now()
	out, err := fn(ctx)
	elapsed := time.Since(start)

	return out, elapsed, err
}

// CalculateSpeedup returns interpreted/compiled rounded to two decimals.
// A zero compiled time has no meaningful ratio and yields 0.
func CalculateSpeedup(compiled, interpreted time.Duration) float64 {
	if compiled <= 0 {
		return 0
	}

	ratio := float64(interpreted) / float64(compiled)

	return math.Round(ratio*100) / 100
}

// DetermineWinner returns the faster path. Ties go to the compiled path.
func DetermineWinner(compiled, interpreted time.Duration) Path {
	if compiled <= interpreted {
		return Compiled
	}

	return Interpreted
}

// floatTolerance is the relative difference allowed between float
// outputs of the two paths.
const floatTolerance = 1e-9

// Equivalent reports whether two benchmark outputs agree: exactly for
// integers and bytes, within floatTolerance for floats.
func Equivalent(a, b any) bool {
	switch av := a.(type) {
	case []float64:
		bv, ok := b.([]float64)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !closeEnough(av[i], bv[i]) {
				return false
			}
		}

		return true
	case float64:
		bv, ok := b.(float64)

		return ok && closeEnough(av, bv)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func closeEnough(a, b float64) bool {
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))

	return diff <= floatTolerance*scale || diff <= floatTolerance
}
