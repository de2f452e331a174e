package tasks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWeatherServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func okWeatherPayload(city string) string {
	return fmt.Sprintf(`{
		"name": %q,
		"sys": {"country": "GB"},
		"main": {"temp": 18.5, "feels_like": 17.0, "humidity": 72},
		"weather": [{"description": "light rain"}],
		"wind": {"speed": 4.1}
	}`, city)
}

func TestWeatherFetcher_FetchForCities(t *testing.T) {
	srv := newWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		fmt.Fprint(w, okWeatherPayload(r.URL.Query().Get("q")))
	})

	f := NewWeatherFetcher(WeatherConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		Cities:       []string{"London,UK", "Paris,FR"},
		RequestDelay: time.Millisecond,
	})

	result, err := f.FetchForCities(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalCitiesAttempted)
	assert.Equal(t, 2, result.SuccessfulRequests)
	assert.Empty(t, result.FailedRequests)
	require.Len(t, result.CitiesData, 2)
	assert.Equal(t, "London,UK", result.CitiesData[0].City)
	assert.Equal(t, "GB", result.CitiesData[0].Country)
	assert.Equal(t, 18.5, result.CitiesData[0].Temperature)
	assert.Equal(t, 72, result.CitiesData[0].Humidity)
	assert.Equal(t, "light rain", result.CitiesData[0].Description)
}

func TestWeatherFetcher_CollectsPerCityFailures(t *testing.T) {
	srv := newWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Atlantis,XX" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, okWeatherPayload(r.URL.Query().Get("q")))
	})

	f := NewWeatherFetcher(WeatherConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		Cities:       []string{"London,UK", "Atlantis,XX", "Paris,FR"},
		RequestDelay: time.Millisecond,
	})

	result, err := f.FetchForCities(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessfulRequests)
	require.Len(t, result.FailedRequests, 1)
	assert.Contains(t, result.FailedRequests[0], "Atlantis,XX")
	assert.Contains(t, result.FailedRequests[0], "404")
}

func TestWeatherFetcher_MissingAPIKey(t *testing.T) {
	f := NewWeatherFetcher(WeatherConfig{})
	_, err := f.FetchForCities(context.Background())
	assert.ErrorContains(t, err, "API key")
}

func TestWeatherFetcher_ContextCancelled(t *testing.T) {
	srv := newWeatherServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, okWeatherPayload("London"))
	})

	f := NewWeatherFetcher(WeatherConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		Cities:       []string{"London,UK", "Paris,FR"},
		RequestDelay: 10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := f.FetchForCities(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWeatherFetcher_DefaultCityList(t *testing.T) {
	f := NewWeatherFetcher(WeatherConfig{APIKey: "test-key"})
	assert.Len(t, f.cfg.Cities, 15)
}
