// Package kernels is the compiled path: a C kernel library built to a
// shared object, opened with dlopen, and called through cgo with typed
// buffers.
package kernels

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// ABIVersion must match DUEL_ABI_VERSION in csrc/kernels.c.
const ABIVersion = 1

// ErrUnsupported is returned by Open when the binary was built without
// cgo or for a platform without dlopen.
var ErrUnsupported = errors.New("compiled kernels are not supported on this build")

//go:embed csrc/kernels.c
var source []byte

// Source returns the embedded C source of the kernel library.
func Source() []byte {
	return source
}

// SourceHash returns the hex SHA-256 of the embedded C source.
func SourceHash() string {
	sum := sha256.Sum256(source)

	return hex.EncodeToString(sum[:])
}

// ResolveLibrary returns the artifact path for the current source inside
// dir. The name embeds the source hash, so edits to the kernels never
// reuse a stale artifact.
func ResolveLibrary(dir string) string {
	ext := ".so"
	if runtime.GOOS == "darwin" {
		ext = ".dylib"
	}

	return filepath.Join(dir, "libduelkernels-"+SourceHash()[:12]+ext)
}

// DefaultCacheDir returns the per-user directory used for built artifacts.
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve user cache dir")
	}

	return filepath.Join(dir, "duelbench"), nil
}

// LoadConfig controls where the kernel library comes from.
type LoadConfig struct {
	// LibraryPath points at a prebuilt artifact. When empty the artifact
	// is resolved inside CacheDir.
	LibraryPath string
	CacheDir    string
	CC          string
	// SkipBuild fails instead of compiling a missing artifact.
	SkipBuild bool
}

// Load resolves, builds when missing, and opens the kernel library.
func Load(ctx context.Context, logger *slog.Logger, cfg LoadConfig) (*Library, error) {
	path := cfg.LibraryPath
	if path == "" {
		dir := cfg.CacheDir
		if dir == "" {
			var err error
			if dir, err = DefaultCacheDir(); err != nil {
				return nil, err
			}
		}
		path = ResolveLibrary(dir)
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "stat kernel library %s", path)
		}
		if cfg.SkipBuild {
			return nil, errors.Errorf("kernel library %s not found and build is skipped", path)
		}
		if _, err := Build(ctx, logger, BuildConfig{CC: cfg.CC, OutputPath: path}); err != nil {
			return nil, err
		}
	}

	lib, err := Open(path)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "kernel library opened",
		slog.String("path", path),
		slog.Int("abi", ABIVersion),
	)

	return lib, nil
}
