package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/weiihann/duelbench/algo"
	"github.com/weiihann/duelbench/loader"
	"github.com/weiihann/duelbench/workload"
)

// KnownBenchmarks returns the catalog in run order.
func KnownBenchmarks() []string {
	return []string{
		"fibonacci",
		"fibonacci-recursive",
		"bubble-sort",
		"quick-sort",
		"matrix-multiply",
		"image-blur",
		"prime-sieve",
	}
}

// RunConfig holds parameters for a single Runner execution.
type RunConfig struct {
	Sizes workload.Sizes
	// Only restricts the run to the named benchmarks. Empty runs all.
	Only []string
	// Preload opens the kernels before timing so load latency is not
	// charged to the first compiled measurement.
	Preload bool
	// KeepOutputs retains raw outputs on each Result.
	KeepOutputs bool
}

// Runner feeds identical generated inputs to both paths for every
// selected benchmark.
type Runner struct {
	Loader    *loader.Loader
	Generator *workload.Generator
	Logger    *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(
	ld *loader.Loader,
	gen *workload.Generator,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		Loader:    ld,
		Generator: gen,
		Logger:    logger.With(slog.Int64("seed", gen.Seed())),
	}
}

type benchCase struct {
	name        string
	compiled    Func
	interpreted Func
}

// Run executes the selected benchmarks one after another.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*Run, error) {
	if err := cfg.Sizes.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sizes: %w", err)
	}

	selected, err := selectBenchmarks(cfg.Only)
	if err != nil {
		return nil, err
	}

	if cfg.Preload {
		if _, err := r.Loader.EnsureLoaded(ctx); err != nil {
			return nil, err
		}
	}

	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Seed:      r.Generator.Seed(),
		Sizes:     cfg.Sizes,
		Results:   make([]Result, 0, len(selected)),
	}

	logger := r.Logger.With(slog.String("run_id", run.ID))

	for _, name := range selected {
		bc := r.prepare(name, cfg.Sizes)

		logger.InfoContext(ctx, "starting benchmark", slog.String("benchmark", name))

		res, err := Benchmark(ctx, bc.name, bc.compiled, bc.interpreted)
		if err != nil {
			return nil, err
		}

		logger.InfoContext(ctx, "benchmark finished",
			slog.String("benchmark", name),
			slog.Duration("interpreted", res.InterpretedTime),
			slog.Duration("compiled", res.CompiledTime),
			slog.Float64("speedup", res.Speedup),
			slog.String("winner", string(res.Winner)),
		)

		if !res.Agree {
			logger.WarnContext(ctx, "outputs differ between paths",
				slog.String("benchmark", name),
			)
		}

		if !cfg.KeepOutputs {
			*res = res.WithoutOutputs()
		}

		run.Results = append(run.Results, *res)
	}

	return run, nil
}

func selectBenchmarks(only []string) ([]string, error) {
	known := KnownBenchmarks()
	if len(only) == 0 {
		return known, nil
	}

	for _, name := range only {
		if !slices.Contains(known, name) {
			return nil, fmt.Errorf("unknown benchmark %q", name)
		}
	}

	selected := make([]string, 0, len(only))
	for _, name := range known {
		if slices.Contains(only, name) {
			selected = append(selected, name)
		}
	}

	return selected, nil
}

// prepare generates the input for name once and binds it to both paths.
func (r *Runner) prepare(name string, s workload.Sizes) benchCase {
	ld := r.Loader
	gen := r.Generator

	switch name {
	case "fibonacci":
		n := s.FibonacciN

		return benchCase{
			name:        name,
			compiled:    func(ctx context.Context) (any, error) { return ld.Fibonacci(ctx, n) },
			interpreted: func(context.Context) (any, error) { return algo.Fibonacci(n), nil },
		}

	case "fibonacci-recursive":
		n := s.FibonacciRecursiveN

		return benchCase{
			name:        name,
			compiled:    func(ctx context.Context) (any, error) { return ld.FibonacciRecursive(ctx, n) },
			interpreted: func(context.Context) (any, error) { return algo.FibonacciRecursive(n), nil },
		}

	case "bubble-sort":
		arr := gen.RandomArray(s.BubbleSortSize, s.MaxValue)

		return benchCase{
			name:        name,
			compiled:    func(ctx context.Context) (any, error) { return ld.BubbleSort(ctx, arr) },
			interpreted: func(context.Context) (any, error) { return algo.BubbleSort(arr), nil },
		}

	case "quick-sort":
		arr := gen.RandomArray(s.QuickSortSize, s.MaxValue)

		return benchCase{
			name:        name,
			compiled:    func(ctx context.Context) (any, error) { return ld.QuickSort(ctx, arr) },
			interpreted: func(context.Context) (any, error) { return algo.QuickSort(arr), nil },
		}

	case "matrix-multiply":
		size := s.MatrixSize
		a := gen.RandomMatrix(size)
		b := gen.RandomMatrix(size)

		return benchCase{
			name:        name,
			compiled:    func(ctx context.Context) (any, error) { return ld.MatrixMultiply(ctx, a, b, size) },
			interpreted: func(context.Context) (any, error) { return algo.MatrixMultiply(a, b, size), nil },
		}

	case "image-blur":
		w, h := s.ImageWidth, s.ImageHeight
		px := gen.RandomImageData(w, h)

		return benchCase{
			name:        name,
			compiled:    func(ctx context.Context) (any, error) { return ld.ImageBlur(ctx, px, w, h) },
			interpreted: func(context.Context) (any, error) { return algo.ImageBlur(px, w, h), nil },
		}

	default: // prime-sieve
		limit := s.SieveLimit

		return benchCase{
			name:        name,
			compiled:    func(ctx context.Context) (any, error) { return ld.PrimeSieve(ctx, limit) },
			interpreted: func(context.Context) (any, error) { return algo.PrimeSieve(limit), nil },
		}
	}
}
