// Package handlers implements the HTTP handlers for the task API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/forgeworks/dispatchq/pkg/core"
	"github.com/forgeworks/dispatchq/pkg/dispatcher"
	"github.com/forgeworks/dispatchq/pkg/tasks"
)

// TaskHandler handles task submission and status requests.
type TaskHandler struct {
	dispatcher *dispatcher.Dispatcher
	logger     *slog.Logger
}

// NewTaskHandler creates a task handler over the given dispatcher.
func NewTaskHandler(d *dispatcher.Dispatcher, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{dispatcher: d, logger: logger}
}

// PrimesRequest is the body for POST /tasks/primes.
type PrimesRequest struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FibonacciRequest is the body for POST /tasks/fibonacci.
type FibonacciRequest struct {
	N int `json:"n"`
}

// TaskResponse echoes the handle for a submitted task.
type TaskResponse struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TaskStatusResponse is the polled projection of a job record.
type TaskStatusResponse struct {
	TaskID     string          `json:"task_id"`
	Status     string          `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      *core.JobError  `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// EnqueuePrimes handles POST /tasks/primes.
func (h *TaskHandler) EnqueuePrimes(w http.ResponseWriter, r *http.Request) {
	var req PrimesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.submit(w, r, tasks.RefFindPrimes,
		fmt.Sprintf("Prime generation task enqueued for range %d-%d", req.Start, req.End),
		req.Start, req.End)
}

// EnqueueFibonacci handles POST /tasks/fibonacci.
func (h *TaskHandler) EnqueueFibonacci(w http.ResponseWriter, r *http.Request) {
	var req FibonacciRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.submit(w, r, tasks.RefFibonacci,
		fmt.Sprintf("Fibonacci calculation task enqueued for n=%d", req.N),
		req.N)
}

// EnqueueWeather handles POST /tasks/weather.
func (h *TaskHandler) EnqueueWeather(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, tasks.RefFetchWeather, "Weather data fetching task enqueued")
}

func (h *TaskHandler) submit(w http.ResponseWriter, r *http.Request, ref, message string, args ...any) {
	taskID, err := h.dispatcher.Submit(r.Context(), ref, args...)
	if err != nil {
		h.logger.Error("task submission failed", "function", ref, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, "Failed to enqueue task: "+err.Error(), status)
		return
	}

	writeJSON(w, http.StatusAccepted, TaskResponse{
		TaskID:  taskID,
		Status:  string(core.StatusQueued),
		Message: message,
	})
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	job, err := h.dispatcher.Status(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, core.ErrJobNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		h.logger.Error("task status lookup failed", "task_id", taskID, "error", err)
		http.Error(w, "Failed to get task status", http.StatusServiceUnavailable)
		return
	}

	resp := TaskStatusResponse{
		TaskID:     job.ID,
		Status:     string(job.Status),
		Error:      job.Err(),
		CreatedAt:  job.CreatedAt,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.Status == core.StatusSucceeded {
		resp.Result = json.RawMessage(job.Result)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Index handles GET / with a short service description.
func (h *TaskHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "dispatchq background task processing",
		"endpoints": map[string]string{
			"enqueue_primes":    "POST /tasks/primes",
			"enqueue_fibonacci": "POST /tasks/fibonacci",
			"enqueue_weather":   "POST /tasks/weather",
			"check_task_status": "GET /tasks/{id}",
			"health":            "GET /health",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
