// Package tasks contains the example workloads processed by dispatchq
// workers. The core knows nothing about them; they are registered as
// opaque job functions at worker start.
package tasks

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Function refs under which the example workloads are registered.
const (
	RefFindPrimes   = "find_primes_in_range"
	RefFibonacci    = "calculate_fibonacci"
	RefFetchWeather = "fetch_weather_for_cities"
)

// PrimesResult is the outcome of a prime search.
type PrimesResult struct {
	Primes        []int   `json:"primes"`
	Count         int     `json:"count"`
	Range         string  `json:"range"`
	ExecutionTime float64 `json:"execution_time"`
}

// FindPrimesInRange finds all primes in [start, end] by trial division.
// Deliberately CPU-bound; ranges up to ~100000 take seconds.
func FindPrimesInRange(ctx context.Context, start, end int) (*PrimesResult, error) {
	if start > end {
		return nil, fmt.Errorf("tasks: invalid range %d-%d", start, end)
	}

	startTime := time.Now()
	var primes []int
	for n := start; n <= end; n++ {
		if isPrime(n) {
			primes = append(primes, n)
		}
	}

	return &PrimesResult{
		Primes:        primes,
		Count:         len(primes),
		Range:         fmt.Sprintf("%d-%d", start, end),
		ExecutionTime: roundSeconds(time.Since(startTime)),
	}, nil
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	for i := 3; i <= int(math.Sqrt(float64(n))); i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// roundSeconds converts a duration to seconds rounded to 2 decimals.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
