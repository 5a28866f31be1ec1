package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/weiihann/duelbench/harness"
	"github.com/weiihann/duelbench/kernels"
	"github.com/weiihann/duelbench/loader"
	"github.com/weiihann/duelbench/report"
	"github.com/weiihann/duelbench/workload"
)

func newRunCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark catalog on both execution paths",
		Long: `Generate seeded inputs and run each benchmark through the Go
implementation and then the compiled kernel library, comparing wall time
and outputs. The kernel library is built on first use if missing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg runConfig
			if err := loadConfig(cmd, &cfg); err != nil {
				return err
			}

			return runBenchmark(cmd.Context(), logger, cmd.OutOrStdout(), cfg)
		},
	}

	addSizeFlags(cmd)
	addKernelFlags(cmd)

	flags := cmd.Flags()
	flags.StringSlice("only", nil,
		"Benchmarks to run (default: all, see 'duelbench list')")
	flags.Int64("seed", 0,
		"Random seed (0 = use current time)")
	flags.String("format", "auto",
		"Output format: auto, markdown, table, json, yaml")
	flags.String("prom-file", "",
		"Also write results as a Prometheus textfile to this path")
	flags.Bool("skip-build", false,
		"Fail instead of building a missing kernel library")
	flags.Bool("preload", false,
		"Load the kernels before timing starts")
	flags.Bool("keep-outputs", false,
		"Include raw outputs in JSON and YAML reports")

	return cmd
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg runConfig,
) error {
	format, err := resolveFormat(cfg.Format, out)
	if err != nil {
		return err
	}

	ld := loader.New(func(ctx context.Context) (loader.Kernels, error) {
		lib, err := kernels.Load(ctx, logger, kernels.LoadConfig{
			LibraryPath: cfg.Library,
			CacheDir:    cfg.CacheDir,
			CC:          cfg.CC,
			SkipBuild:   cfg.SkipBuild,
		})
		if err != nil {
			return nil, err
		}

		return lib, nil
	}, logger)

	defer func() {
		if err := ld.Close(); err != nil {
			logger.WarnContext(ctx, "close kernels", slog.String("error", err.Error()))
		}
	}()

	gen := workload.NewGenerator(cfg.Seed)

	logger.InfoContext(ctx, "starting run",
		slog.Int64("seed", gen.Seed()),
		slog.Any("only", cfg.Only),
		slog.Any("sizes", cfg.Sizes),
	)

	runner := harness.NewRunner(ld, gen, logger)

	run, err := runner.Run(ctx, harness.RunConfig{
		Sizes:       cfg.Sizes,
		Only:        cfg.Only,
		Preload:     cfg.Preload,
		KeepOutputs: cfg.KeepOutputs,
	})
	if err != nil {
		return fmt.Errorf("run benchmarks: %w", err)
	}

	if err := report.Write(out, format, run); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if cfg.PromFile != "" {
		if err := report.WritePrometheus(cfg.PromFile, run); err != nil {
			return err
		}

		logger.InfoContext(ctx, "prometheus textfile written",
			slog.String("path", cfg.PromFile),
		)
	}

	logger.InfoContext(ctx, "run complete", slog.String("run_id", run.ID))

	return nil
}

// resolveFormat maps "auto" to a table on terminals and markdown
// otherwise.
func resolveFormat(name string, out io.Writer) (report.Format, error) {
	if name != "" && name != "auto" {
		return report.ParseFormat(name)
	}

	if f, ok := out.(*os.File); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return report.FormatTable, nil
		}
	}

	return report.FormatMarkdown, nil
}

type buildConfig struct {
	Library  string `mapstructure:"library"`
	CacheDir string `mapstructure:"cache-dir"`
	CC       string `mapstructure:"cc"`
}

func newBuildCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the kernel library without running benchmarks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg buildConfig
			if err := loadConfig(cmd, &cfg); err != nil {
				return err
			}

			path := cfg.Library
			if path == "" {
				dir := cfg.CacheDir
				if dir == "" {
					var err error
					if dir, err = kernels.DefaultCacheDir(); err != nil {
						return err
					}
				}
				path = kernels.ResolveLibrary(dir)
			}

			built, err := kernels.Build(cmd.Context(), logger, kernels.BuildConfig{
				CC:         cfg.CC,
				OutputPath: path,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), built)

			return err
		},
	}

	addKernelFlags(cmd)

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the benchmark catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range harness.KnownBenchmarks() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

type reportConfig struct {
	Input    string `mapstructure:"input"`
	Format   string `mapstructure:"format"`
	PromFile string `mapstructure:"prom-file"`
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render a JSON run in another format",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg reportConfig
			if err := loadConfig(cmd, &cfg); err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if cfg.Input != "" && cfg.Input != "-" {
				f, err := os.Open(cfg.Input)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()

				in = f
			}

			run, err := report.Decode(in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			format, err := resolveFormat(cfg.Format, out)
			if err != nil {
				return err
			}

			if err := report.Write(out, format, run); err != nil {
				return err
			}

			if cfg.PromFile != "" {
				return report.WritePrometheus(cfg.PromFile, run)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("input", "",
		"JSON run file written by 'duelbench run --format json' (default: stdin)")
	flags.String("format", "auto",
		"Output format: auto, markdown, table, json, yaml")
	flags.String("prom-file", "",
		"Also write results as a Prometheus textfile to this path")

	return cmd
}
