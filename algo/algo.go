// Package algo holds the directly-called Go implementations of the
// benchmark algorithms. Every function here has a twin in the kernels
// package and both must agree on identical input.
package algo

// Fibonacci returns the n-th Fibonacci number using an iterative
// accumulation. Values wrap modulo 2^64 past n = 93.
func Fibonacci(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n == 1 {
		return 1
	}

	var a, b uint64 = 0, 1
	for i := 2; i <= n; i++ {
		a, b = b, a+b
	}

	return b
}

// FibonacciRecursive is the naive exponential recursion.
func FibonacciRecursive(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n == 1 {
		return 1
	}

	return FibonacciRecursive(n-1) + FibonacciRecursive(n-2)
}

// BubbleSort returns a sorted copy of arr. The input is left untouched.
func BubbleSort(arr []int) []int {
	result := make([]int, len(arr))
	copy(result, arr)

	n := len(result)
	for i := 0; i < n; i++ {
		for j := 0; j < n-1-i; j++ {
			if result[j] > result[j+1] {
				result[j], result[j+1] = result[j+1], result[j]
			}
		}
	}

	return result
}

// QuickSort returns a sorted copy of arr using Lomuto partitioning with
// the last element as pivot.
func QuickSort(arr []int) []int {
	result := make([]int, len(arr))
	copy(result, arr)
	quickSort(result, 0, len(result)-1)

	return result
}

func quickSort(arr []int, low, high int) {
	if low < high {
		p := partition(arr, low, high)
		quickSort(arr, low, p-1)
		quickSort(arr, p+1, high)
	}
}

func partition(arr []int, low, high int) int {
	pivot := arr[high]
	i := low - 1

	for j := low; j < high; j++ {
		if arr[j] <= pivot {
			i++
			arr[i], arr[j] = arr[j], arr[i]
		}
	}
	arr[i+1], arr[high] = arr[high], arr[i+1]

	return i + 1
}

// MatrixMultiply multiplies two size×size row-major matrices. The caller
// guarantees both have size*size elements.
func MatrixMultiply(a, b []float64, size int) []float64 {
	result := make([]float64, size*size)

	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			for k := 0; k < size; k++ {
				result[i*size+j] += a[i*size+k] * b[k*size+j]
			}
		}
	}

	return result
}

// PrimeSieve returns all primes <= limit in ascending order.
func PrimeSieve(limit int) []int {
	primes := []int{}
	if limit < 2 {
		return primes
	}

	composite := make([]bool, limit+1)
	for p := 2; p*p <= limit; p++ {
		if composite[p] {
			continue
		}
		for i := p * p; i <= limit; i += p {
			composite[i] = true
		}
	}

	for i := 2; i <= limit; i++ {
		if !composite[i] {
			primes = append(primes, i)
		}
	}

	return primes
}
