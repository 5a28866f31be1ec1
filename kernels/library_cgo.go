//go:build cgo && (linux || darwin)

package kernels

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

typedef uint32_t (*abi_version_fn)(void);
typedef uint64_t (*fibonacci_fn)(uint32_t);
typedef void (*sort_fn)(int32_t *, size_t);
typedef void (*matrix_multiply_fn)(const double *, const double *, double *, size_t);
typedef void (*image_blur_fn)(const uint8_t *, uint8_t *, size_t, size_t);
typedef size_t (*prime_sieve_fn)(uint32_t, uint8_t *, uint32_t *);

static uint32_t call_abi_version(void *fn) {
	return ((abi_version_fn)fn)();
}

static uint64_t call_fibonacci(void *fn, uint32_t n) {
	return ((fibonacci_fn)fn)(n);
}

static void call_sort(void *fn, int32_t *arr, size_t len) {
	((sort_fn)fn)(arr, len);
}

static void call_matrix_multiply(void *fn, const double *a, const double *b, double *out, size_t size) {
	((matrix_multiply_fn)fn)(a, b, out, size);
}

static void call_image_blur(void *fn, const uint8_t *src, uint8_t *dst, size_t w, size_t h) {
	((image_blur_fn)fn)(src, dst, w, h);
}

static size_t call_prime_sieve(void *fn, uint32_t limit, uint8_t *scratch, uint32_t *out) {
	return ((prime_sieve_fn)fn)(limit, scratch, out);
}
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
)

// Library is an opened kernel artifact. Methods take typed buffers laid
// out exactly as the C side expects; Go memory is passed directly since
// the kernels never retain pointers past the call.
type Library struct {
	path   string
	handle unsafe.Pointer

	fibonacci          unsafe.Pointer
	fibonacciRecursive unsafe.Pointer
	bubbleSort         unsafe.Pointer
	quickSort          unsafe.Pointer
	matrixMultiply     unsafe.Pointer
	imageBlur          unsafe.Pointer
	primeSieve         unsafe.Pointer

	closeOnce sync.Once
	closeErr  error
}

// dlerror state is per-thread; serialize dlopen/dlsym/dlerror sequences.
var dlMu sync.Mutex

// Open loads the artifact at path, resolves every kernel symbol and
// verifies the ABI version.
func Open(path string) (*Library, error) {
	dlMu.Lock()
	defer dlMu.Unlock()

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if handle == nil {
		return nil, errors.Errorf("dlopen %s: %s", path, C.GoString(C.dlerror()))
	}

	lib := &Library{path: path, handle: handle}

	abi, err := lookup(handle, "duel_abi_version")
	if err != nil {
		C.dlclose(handle)
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if v := uint32(C.call_abi_version(abi)); v != ABIVersion {
		C.dlclose(handle)
		return nil, errors.Errorf("open %s: abi version %d, want %d", path, v, ABIVersion)
	}

	symbols := []struct {
		name string
		dst  *unsafe.Pointer
	}{
		{"duel_fibonacci", &lib.fibonacci},
		{"duel_fibonacci_recursive", &lib.fibonacciRecursive},
		{"duel_bubble_sort", &lib.bubbleSort},
		{"duel_quick_sort", &lib.quickSort},
		{"duel_matrix_multiply", &lib.matrixMultiply},
		{"duel_image_blur", &lib.imageBlur},
		{"duel_prime_sieve", &lib.primeSieve},
	}

	for _, s := range symbols {
		ptr, err := lookup(handle, s.name)
		if err != nil {
			C.dlclose(handle)
			return nil, errors.Wrapf(err, "open %s", path)
		}
		*s.dst = ptr
	}

	return lib, nil
}

func lookup(handle unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	C.dlerror()
	ptr := C.dlsym(handle, cname)
	if ptr == nil {
		return nil, errors.Errorf("dlsym %s: %s", name, C.GoString(C.dlerror()))
	}

	return ptr, nil
}

// Path returns the artifact path the library was opened from.
func (l *Library) Path() string {
	return l.path
}

// Fibonacci calls duel_fibonacci.
func (l *Library) Fibonacci(n uint32) uint64 {
	return uint64(C.call_fibonacci(l.fibonacci, C.uint32_t(n)))
}

// FibonacciRecursive calls duel_fibonacci_recursive.
func (l *Library) FibonacciRecursive(n uint32) uint64 {
	return uint64(C.call_fibonacci(l.fibonacciRecursive, C.uint32_t(n)))
}

// BubbleSort sorts buf in place.
func (l *Library) BubbleSort(buf []int32) {
	l.sort(l.bubbleSort, buf)
}

// QuickSort sorts buf in place.
func (l *Library) QuickSort(buf []int32) {
	l.sort(l.quickSort, buf)
}

func (l *Library) sort(fn unsafe.Pointer, buf []int32) {
	if len(buf) == 0 {
		return
	}

	C.call_sort(fn, (*C.int32_t)(unsafe.Pointer(&buf[0])), C.size_t(len(buf)))
}

// MatrixMultiply writes a×b into out. All three hold size*size values.
func (l *Library) MatrixMultiply(a, b, out []float64, size int) {
	if size == 0 {
		return
	}

	C.call_matrix_multiply(l.matrixMultiply,
		(*C.double)(unsafe.Pointer(&a[0])),
		(*C.double)(unsafe.Pointer(&b[0])),
		(*C.double)(unsafe.Pointer(&out[0])),
		C.size_t(size),
	)
}

// ImageBlur writes the blurred src into dst. Both hold width*height*4 bytes.
func (l *Library) ImageBlur(src, dst []byte, width, height int) {
	if len(src) == 0 {
		return
	}

	C.call_image_blur(l.imageBlur,
		(*C.uint8_t)(unsafe.Pointer(&src[0])),
		(*C.uint8_t)(unsafe.Pointer(&dst[0])),
		C.size_t(width),
		C.size_t(height),
	)
}

// PrimeSieve returns the primes <= limit.
func (l *Library) PrimeSieve(limit uint32) []uint32 {
	if limit < 2 {
		return []uint32{}
	}

	scratch := make([]byte, int(limit)+1)
	// pi(n) <= n/2 + 1 is loose but needs no log.
	out := make([]uint32, int(limit)/2+1)

	n := C.call_prime_sieve(l.primeSieve,
		C.uint32_t(limit),
		(*C.uint8_t)(unsafe.Pointer(&scratch[0])),
		(*C.uint32_t)(unsafe.Pointer(&out[0])),
	)

	return out[:int(n)]
}

// Close unloads the artifact. Calls after the first are no-ops.
func (l *Library) Close() error {
	l.closeOnce.Do(func() {
		dlMu.Lock()
		defer dlMu.Unlock()

		if C.dlclose(l.handle) != 0 {
			l.closeErr = errors.Errorf("dlclose %s: %s", l.path, C.GoString(C.dlerror()))
		}
	})

	return l.closeErr
}
