// Package main provides the CLI entry point for duelbench, which races
// natively compiled kernels against their Go counterparts on identical
// inputs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(logger, level)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	root := &cobra.Command{
		Use:   "duelbench",
		Short: "Compiled versus interpreted benchmark harness",
		Long: `Duelbench runs the same CPU-bound algorithms through a natively
compiled kernel library and through plain Go, on identical seeded inputs,
and reports which path was faster and whether their outputs agree.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			name, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}

			return level.UnmarshalText([]byte(name))
		},
	}

	pflags := root.PersistentFlags()
	pflags.String("config", "",
		"Path to a YAML config file")
	pflags.String("log-level", "info",
		"Log level: debug, info, warn, error")

	root.AddCommand(
		newRunCmd(logger),
		newBuildCmd(logger),
		newListCmd(),
		newReportCmd(),
	)

	return root
}
