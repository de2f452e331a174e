// Package routes wires the task API handlers onto a router.
package routes

import (
	"log/slog"

	"github.com/gorilla/mux"

	"github.com/forgeworks/dispatchq/api/rest/handlers"
	"github.com/forgeworks/dispatchq/pkg/dispatcher"
)

// Setup configures all API routes.
func Setup(r *mux.Router, d *dispatcher.Dispatcher, logger *slog.Logger) {
	h := handlers.NewTaskHandler(d, logger)

	r.HandleFunc("/tasks/primes", h.EnqueuePrimes).Methods("POST")
	r.HandleFunc("/tasks/fibonacci", h.EnqueueFibonacci).Methods("POST")
	r.HandleFunc("/tasks/weather", h.EnqueueWeather).Methods("POST")
	r.HandleFunc("/tasks/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/", h.Index).Methods("GET")
}
