package tasks

import (
	"context"
	"fmt"
	"time"
)

// maxFibonacciPosition is the largest position whose value fits in int64.
const maxFibonacciPosition = 92

// FibonacciResult is the outcome of a Fibonacci calculation.
type FibonacciResult struct {
	FibonacciNumber int64   `json:"fibonacci_number"`
	Position        int     `json:"position"`
	ExecutionTime   float64 `json:"execution_time"`
}

// CalculateFibonacci computes the nth Fibonacci number. Positions above 30
// use the naive recursive form, which burns CPU for seconds around n=35-40
// and is exactly why this workload belongs on a background worker.
func CalculateFibonacci(ctx context.Context, n int) (*FibonacciResult, error) {
	if n < 0 {
		return nil, fmt.Errorf("tasks: position must be non-negative, got %d", n)
	}
	if n > maxFibonacciPosition {
		return nil, fmt.Errorf("tasks: position %d overflows int64 (max %d)", n, maxFibonacciPosition)
	}

	startTime := time.Now()
	var result int64
	if n <= 30 {
		result = fibIterative(n)
	} else {
		result = fibRecursive(n)
	}

	return &FibonacciResult{
		FibonacciNumber: result,
		Position:        n,
		ExecutionTime:   roundSeconds(time.Since(startTime)),
	}, nil
}

func fibIterative(n int) int64 {
	if n <= 1 {
		return int64(n)
	}
	var a, b int64 = 0, 1
	for i := 2; i <= n; i++ {
		a, b = b, a+b
	}
	return b
}

func fibRecursive(n int) int64 {
	if n <= 1 {
		return int64(n)
	}
	return fibRecursive(n-1) + fibRecursive(n-2)
}
