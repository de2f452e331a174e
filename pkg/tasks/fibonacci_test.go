package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFibonacci(t *testing.T) {
	cases := []struct {
		n    int
		want int64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{10, 55},
		{20, 6765},
		{30, 832040},
		{32, 2178309}, // exercises the recursive path
	}

	for _, tc := range cases {
		result, err := CalculateFibonacci(context.Background(), tc.n)
		require.NoError(t, err, "n=%d", tc.n)
		assert.Equal(t, tc.want, result.FibonacciNumber, "n=%d", tc.n)
		assert.Equal(t, tc.n, result.Position)
	}
}

func TestCalculateFibonacci_Negative(t *testing.T) {
	_, err := CalculateFibonacci(context.Background(), -1)
	assert.Error(t, err)
}

func TestCalculateFibonacci_Overflow(t *testing.T) {
	// Position 92 is the last value that fits in int64.
	assert.Equal(t, int64(7540113804746346429), fibIterative(92))

	_, err := CalculateFibonacci(context.Background(), 93)
	assert.Error(t, err)
}

func TestFibIterativeMatchesRecursive(t *testing.T) {
	for n := 0; n <= 25; n++ {
		assert.Equal(t, fibRecursive(n), fibIterative(n), "n=%d", n)
	}
}
