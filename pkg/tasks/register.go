package tasks

import (
	"github.com/forgeworks/dispatchq/pkg/registry"
)

// Register wires the example workloads into a function registry. The
// weather fetcher is passed in so its API key and HTTP client come from
// process configuration.
func Register(r *registry.Registry, weather *WeatherFetcher) {
	r.Register(RefFindPrimes, FindPrimesInRange)
	r.Register(RefFibonacci, CalculateFibonacci)
	r.Register(RefFetchWeather, weather.FetchForCities)
}
