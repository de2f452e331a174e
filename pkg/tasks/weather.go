package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/sony/gobreaker"
)

// DefaultWeatherBaseURL is the OpenWeatherMap current-weather endpoint.
const DefaultWeatherBaseURL = "http://api.openweathermap.org/data/2.5/weather"

// defaultCities are the locations fetched by one weather job.
var defaultCities = []string{
	"London,UK",
	"New York,US",
	"Tokyo,JP",
	"Paris,FR",
	"Sydney,AU",
	"Mumbai,IN",
	"São Paulo,BR",
	"Cairo,EG",
	"Moscow,RU",
	"Cape Town,ZA",
	"Toronto,CA",
	"Berlin,DE",
	"Bangkok,TH",
	"Mexico City,MX",
	"Buenos Aires,AR",
}

// CityWeather is the per-city slice of a weather result.
type CityWeather struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"`
}

// WeatherResult is the outcome of one weather fetch job. Per-city failures
// are collected rather than failing the job.
type WeatherResult struct {
	CitiesData           []CityWeather `json:"cities_data"`
	SuccessfulRequests   int           `json:"successful_requests"`
	FailedRequests       []string      `json:"failed_requests"`
	TotalCitiesAttempted int           `json:"total_cities_attempted"`
	ExecutionTime        float64       `json:"execution_time"`
}

// WeatherConfig configures a WeatherFetcher.
type WeatherConfig struct {
	// APIKey is the OpenWeatherMap API key. Required.
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// Cities overrides the default city list.
	Cities []string

	// HTTPClient overrides the default 10s-timeout client.
	HTTPClient *http.Client

	// RequestDelay is the pause between requests to stay under rate limits.
	RequestDelay time.Duration
}

// WeatherFetcher fetches current weather for a list of cities. Requests go
// through a circuit breaker so a dead upstream fails fast instead of
// burning the full timeout per city.
type WeatherFetcher struct {
	cfg     WeatherConfig
	breaker *gobreaker.CircuitBreaker
}

// NewWeatherFetcher creates a fetcher with the given configuration.
func NewWeatherFetcher(cfg WeatherConfig) *WeatherFetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultWeatherBaseURL
	}
	if len(cfg.Cities) == 0 {
		cfg.Cities = defaultCities
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = 100 * time.Millisecond
	}

	return &WeatherFetcher{
		cfg: cfg,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweathermap",
			MaxRequests: 3,
			Timeout:     30 * time.Second,
		}),
	}
}

// weatherQuery holds the request parameters for one city lookup.
type weatherQuery struct {
	City  string `url:"q"`
	AppID string `url:"appid"`
	Units string `url:"units"`
}

// owmResponse mirrors the subset of the OpenWeatherMap payload we keep.
type owmResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// FetchForCities fetches current weather for the configured city list.
// I/O-bound: typically 5-15 seconds for the full list.
func (f *WeatherFetcher) FetchForCities(ctx context.Context) (*WeatherResult, error) {
	if f.cfg.APIKey == "" {
		return nil, errors.New("tasks: OpenWeatherMap API key not configured")
	}

	startTime := time.Now()
	result := &WeatherResult{
		FailedRequests:       []string{},
		TotalCitiesAttempted: len(f.cfg.Cities),
	}

	for _, city := range f.cfg.Cities {
		cw, err := f.fetchCity(ctx, city)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.FailedRequests = append(result.FailedRequests, fmt.Sprintf("%s (%v)", city, err))
		} else {
			result.CitiesData = append(result.CitiesData, *cw)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.cfg.RequestDelay):
		}
	}

	result.SuccessfulRequests = len(result.CitiesData)
	result.ExecutionTime = roundSeconds(time.Since(startTime))
	return result, nil
}

func (f *WeatherFetcher) fetchCity(ctx context.Context, city string) (*CityWeather, error) {
	out, err := f.breaker.Execute(func() (any, error) {
		params, err := query.Values(weatherQuery{
			City:  city,
			AppID: f.cfg.APIKey,
			Units: "metric",
		})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.BaseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}

		resp, err := f.cfg.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
		}

		var payload owmResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		return &payload, nil
	})
	if err != nil {
		return nil, err
	}

	payload := out.(*owmResponse)
	cw := &CityWeather{
		City:        payload.Name,
		Country:     payload.Sys.Country,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		cw.Description = payload.Weather[0].Description
	}
	return cw, nil
}
