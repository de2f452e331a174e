// Command demo runs the example workloads inline, without a queue or
// worker, and prints their results and execution times.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/forgeworks/dispatchq/pkg/tasks"
)

func main() {
	ctx := context.Background()

	fmt.Println("== prime number generation ==")
	for _, r := range [][2]int{{1, 1000}, {1, 10000}, {1, 50000}} {
		result, err := tasks.FindPrimesInRange(ctx, r[0], r[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "primes failed:", err)
			continue
		}
		fmt.Printf("range %s: %d primes in %.2fs\n", result.Range, result.Count, result.ExecutionTime)
	}

	fmt.Println("\n== fibonacci calculation ==")
	for _, n := range []int{25, 30, 35, 38} {
		result, err := tasks.CalculateFibonacci(ctx, n)
		if err != nil {
			fmt.Fprintln(os.Stderr, "fibonacci failed:", err)
			continue
		}
		fmt.Printf("fib(%d) = %d in %.2fs\n", result.Position, result.FibonacciNumber, result.ExecutionTime)
	}

	fmt.Println("\n== weather fetch ==")
	apiKey := os.Getenv("DISPATCHQ_OPENWEATHER_API_KEY")
	if apiKey == "" {
		fmt.Println("skipped: set DISPATCHQ_OPENWEATHER_API_KEY to run the weather demo")
		return
	}
	weather := tasks.NewWeatherFetcher(tasks.WeatherConfig{APIKey: apiKey})
	result, err := weather.FetchForCities(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "weather fetch failed:", err)
		os.Exit(1)
	}
	fmt.Printf("fetched %d/%d cities in %.2fs\n",
		result.SuccessfulRequests, result.TotalCitiesAttempted, result.ExecutionTime)
	for _, c := range result.CitiesData {
		fmt.Printf("%s, %s: %.1f°C - %s\n", c.City, c.Country, c.Temperature, c.Description)
	}
}
