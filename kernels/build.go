package kernels

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
)

// BuildConfig describes how to compile the kernel library.
type BuildConfig struct {
	// CC is the C compiler. Defaults to $CC, then "cc".
	CC         string
	OutputPath string
	ExtraFlags []string
}

func (c BuildConfig) compiler() string {
	if c.CC != "" {
		return c.CC
	}
	if cc := os.Getenv("CC"); cc != "" {
		return cc
	}

	return "cc"
}

// Build compiles the embedded kernel source into a shared object at
// cfg.OutputPath and returns that path.
func Build(ctx context.Context, logger *slog.Logger, cfg BuildConfig) (string, error) {
	if cfg.OutputPath == "" {
		return "", errors.New("build kernels: output path is required")
	}

	cc := cfg.compiler()

	srcDir, err := os.MkdirTemp("", "duelbench-kernels-")
	if err != nil {
		return "", errors.Wrap(err, "create build dir")
	}
	defer os.RemoveAll(srcDir)

	srcPath := filepath.Join(srcDir, "kernels.c")
	if err := os.WriteFile(srcPath, source, 0o644); err != nil {
		return "", errors.Wrap(err, "write kernel source")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
		return "", errors.Wrapf(err, "create output dir for %s", cfg.OutputPath)
	}

	// Compile next to the target and rename so a half-written artifact is
	// never opened.
	tmpOut := filepath.Join(srcDir, filepath.Base(cfg.OutputPath))

	args := make([]string, 0, len(cfg.ExtraFlags)+6)
	args = append(args, "-O2", "-shared", "-fPIC")
	args = append(args, cfg.ExtraFlags...)
	args = append(args, "-o", tmpOut, srcPath)

	logger.InfoContext(ctx, "building kernel library",
		slog.String("cc", cc),
		slog.String("output", cfg.OutputPath),
	)

	cmd := exec.CommandContext(ctx, cc, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "build kernels with %s\noutput: %s", cc, out.String())
	}

	if err := moveFile(tmpOut, cfg.OutputPath); err != nil {
		return "", err
	}

	logger.InfoContext(ctx, "kernel library built",
		slog.String("output", cfg.OutputPath),
	)

	return cfg.OutputPath, nil
}

// moveFile renames src to dst, falling back to copy-and-rename when the
// two live on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, "read built artifact %s", src)
	}

	staged := dst + ".partial"
	if err := os.WriteFile(staged, data, 0o755); err != nil {
		return errors.Wrapf(err, "stage artifact %s", staged)
	}

	return errors.Wrapf(os.Rename(staged, dst), "install artifact %s", dst)
}
