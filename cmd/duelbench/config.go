package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weiihann/duelbench/workload"
)

// envPrefix namespaces environment overrides, e.g. DUELBENCH_MATRIX_SIZE.
const envPrefix = "DUELBENCH"

type runConfig struct {
	workload.Sizes `mapstructure:",squash"`

	Only        []string `mapstructure:"only"`
	Seed        int64    `mapstructure:"seed"`
	Format      string   `mapstructure:"format"`
	PromFile    string   `mapstructure:"prom-file"`
	Library     string   `mapstructure:"library"`
	CacheDir    string   `mapstructure:"cache-dir"`
	CC          string   `mapstructure:"cc"`
	SkipBuild   bool     `mapstructure:"skip-build"`
	Preload     bool     `mapstructure:"preload"`
	KeepOutputs bool     `mapstructure:"keep-outputs"`
}

// loadConfig layers flags over environment over the optional config file
// over flag defaults, and decodes the result into out.
func loadConfig(cmd *cobra.Command, out any) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return nil
}

func addSizeFlags(cmd *cobra.Command) {
	d := workload.DefaultSizes()

	flags := cmd.Flags()
	flags.Int("fibonacci-n", d.FibonacciN,
		"Fibonacci index for the iterative benchmark")
	flags.Int("fibonacci-recursive-n", d.FibonacciRecursiveN,
		"Fibonacci index for the recursive benchmark")
	flags.Int("bubble-sort-size", d.BubbleSortSize,
		"Array length for bubble sort")
	flags.Int("quick-sort-size", d.QuickSortSize,
		"Array length for quick sort")
	flags.Int("max-value", d.MaxValue,
		"Exclusive upper bound for generated array values")
	flags.Int("matrix-size", d.MatrixSize,
		"Side length of the square matrices")
	flags.Int("image-width", d.ImageWidth,
		"Width of the generated RGBA image")
	flags.Int("image-height", d.ImageHeight,
		"Height of the generated RGBA image")
	flags.Int("sieve-limit", d.SieveLimit,
		"Inclusive upper bound for the prime sieve")
}

func addKernelFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("library", "",
		"Path to a prebuilt kernel library (default: resolved in the cache dir)")
	flags.String("cache-dir", "",
		"Directory for built kernel libraries (default: user cache dir)")
	flags.String("cc", "",
		"C compiler used to build the kernels (default: $CC, then cc)")
}
