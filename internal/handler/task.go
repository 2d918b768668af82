package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"taskdeck/internal/auth"
	"taskdeck/internal/model"
	"taskdeck/internal/repository"
	"taskdeck/internal/telemetry"
	"taskdeck/internal/view"
)

var tracer = otel.Tracer("taskdeck/internal/handler")

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	repo    *repository.TaskRepository
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(repo *repository.TaskRepository, logger *slog.Logger, metrics *telemetry.Metrics) *TaskHandler {
	return &TaskHandler{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}
}

// Routes returns the chi router with task routes. The bulk-delete route is
// registered ahead of the {id} routes so "completed" is never captured as a
// task id.
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Delete("/completed/all", h.DeleteCompleted)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

// List returns the caller's tasks filtered, sorted and annotated per the
// filter/sort query parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.List")
	defer span.End()

	identity, ok := auth.FromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := view.ParseFilter(r.URL.Query().Get("filter"))
	sortBy := view.ParseSort(r.URL.Query().Get("sort"))

	tasks, err := h.repo.List(ctx, identity.Subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tasks", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to list tasks")
		h.recordMetrics(ctx, "GET", "/api/tasks", http.StatusInternalServerError, start)
		return
	}

	annotated := view.Derive(tasks, filter, sortBy, time.Now())

	span.SetAttributes(
		attribute.Int("task.count", len(annotated)),
		attribute.String("view.filter", string(filter)),
		attribute.String("view.sort", string(sortBy)),
	)
	h.logger.InfoContext(ctx, "tasks listed",
		slog.Int("count", len(annotated)),
		slog.String("filter", string(filter)),
		slog.String("sort", string(sortBy)),
	)

	respondJSON(w, http.StatusOK, annotated)
	h.recordMetrics(ctx, "GET", "/api/tasks", http.StatusOK, start)
}

// Create adds a new task for the caller.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Create")
	defer span.End()

	identity, ok := auth.FromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		h.recordMetrics(ctx, "POST", "/api/tasks", http.StatusBadRequest, start)
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.WarnContext(ctx, "validation failed", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, err.Error())
		h.recordMetrics(ctx, "POST", "/api/tasks", http.StatusBadRequest, start)
		return
	}

	task, err := h.repo.Create(ctx, identity.Subject, &req)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create task", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to create task")
		h.recordMetrics(ctx, "POST", "/api/tasks", http.StatusInternalServerError, start)
		return
	}

	span.SetAttributes(attribute.String("task.id", task.ID))
	h.logger.InfoContext(ctx, "task created",
		slog.String("id", task.ID),
		slog.Bool("recurring", task.IsRecurring),
	)

	respondJSON(w, http.StatusCreated, task)
	h.recordMetrics(ctx, "POST", "/api/tasks", http.StatusCreated, start)
}

// GetByID returns one of the caller's tasks.
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.GetByID",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	identity, ok := auth.FromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	task, err := h.repo.GetByID(ctx, identity.Subject, id)
	if err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, "task not found")
			h.recordMetrics(ctx, "GET", "/api/tasks/{id}", http.StatusNotFound, start)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get task", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to get task")
		h.recordMetrics(ctx, "GET", "/api/tasks/{id}", http.StatusInternalServerError, start)
		return
	}

	respondJSON(w, http.StatusOK, task)
	h.recordMetrics(ctx, "GET", "/api/tasks/{id}", http.StatusOK, start)
}

// Update applies a partial update. Completing a recurring task spawns its
// next occurrence; the updated task is returned either way.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Update",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	identity, ok := auth.FromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		h.recordMetrics(ctx, "PUT", "/api/tasks/{id}", http.StatusBadRequest, start)
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.WarnContext(ctx, "validation failed", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, err.Error())
		h.recordMetrics(ctx, "PUT", "/api/tasks/{id}", http.StatusBadRequest, start)
		return
	}

	result, err := h.repo.Update(ctx, identity.Subject, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTaskNotFound):
			respondError(w, http.StatusNotFound, "task not found")
			h.recordMetrics(ctx, "PUT", "/api/tasks/{id}", http.StatusNotFound, start)
		case errors.Is(err, model.ErrPatternRequired), errors.Is(err, model.ErrInvalidPattern):
			h.logger.WarnContext(ctx, "validation failed", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, err.Error())
			h.recordMetrics(ctx, "PUT", "/api/tasks/{id}", http.StatusBadRequest, start)
		default:
			h.logger.ErrorContext(ctx, "failed to update task", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "failed to update task")
			h.recordMetrics(ctx, "PUT", "/api/tasks/{id}", http.StatusInternalServerError, start)
		}
		return
	}

	if req.Completed != nil && *req.Completed {
		h.metrics.TaskCompletions.Add(ctx, 1)
	}
	if result.Successor != nil {
		h.metrics.RecurrenceSpawns.Add(ctx, 1)
		span.SetAttributes(attribute.String("task.successor_id", result.Successor.ID))
		h.logger.InfoContext(ctx, "next occurrence created",
			slog.String("id", result.Successor.ID),
			slog.String("parent_id", id),
		)
	}

	h.logger.InfoContext(ctx, "task updated", slog.String("id", id))

	respondJSON(w, http.StatusOK, result.Task)
	h.recordMetrics(ctx, "PUT", "/api/tasks/{id}", http.StatusOK, start)
}

// Delete removes a single task, or the whole series when the deleteSeries
// query flag is set.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")
	series := r.URL.Query().Get("deleteSeries") == "true"

	ctx, span := tracer.Start(ctx, "TaskHandler.Delete",
		trace.WithAttributes(
			attribute.String("task.id", id),
			attribute.Bool("task.series", series),
		),
	)
	defer span.End()

	identity, ok := auth.FromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if series {
		deleted, err := h.repo.DeleteSeries(ctx, identity.Subject, id)
		if err != nil {
			if errors.Is(err, model.ErrTaskNotFound) {
				respondError(w, http.StatusNotFound, "task not found")
				h.recordMetrics(ctx, "DELETE", "/api/tasks/{id}", http.StatusNotFound, start)
				return
			}
			h.logger.ErrorContext(ctx, "failed to delete series", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "failed to delete series")
			h.recordMetrics(ctx, "DELETE", "/api/tasks/{id}", http.StatusInternalServerError, start)
			return
		}

		h.logger.InfoContext(ctx, "series deleted",
			slog.String("id", id),
			slog.Int64("deleted", deleted),
		)
		respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
		h.recordMetrics(ctx, "DELETE", "/api/tasks/{id}", http.StatusOK, start)
		return
	}

	if err := h.repo.Delete(ctx, identity.Subject, id); err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, "task not found")
			h.recordMetrics(ctx, "DELETE", "/api/tasks/{id}", http.StatusNotFound, start)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete task", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to delete task")
		h.recordMetrics(ctx, "DELETE", "/api/tasks/{id}", http.StatusInternalServerError, start)
		return
	}

	h.logger.InfoContext(ctx, "task deleted", slog.String("id", id))

	w.WriteHeader(http.StatusNoContent)
	h.recordMetrics(ctx, "DELETE", "/api/tasks/{id}", http.StatusNoContent, start)
}

// DeleteCompleted bulk-deletes the caller's completed tasks.
func (h *TaskHandler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.DeleteCompleted")
	defer span.End()

	identity, ok := auth.FromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	deleted, err := h.repo.DeleteCompleted(ctx, identity.Subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete completed tasks", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to delete completed tasks")
		h.recordMetrics(ctx, "DELETE", "/api/tasks/completed/all", http.StatusInternalServerError, start)
		return
	}

	span.SetAttributes(attribute.Int64("task.deleted", deleted))
	h.logger.InfoContext(ctx, "completed tasks deleted", slog.Int64("deleted", deleted))

	respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
	h.recordMetrics(ctx, "DELETE", "/api/tasks/completed/all", http.StatusOK, start)
}

// Health returns a health check response.
func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (h *TaskHandler) recordMetrics(ctx context.Context, method, route string, status int, start time.Time) {
	duration := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	h.metrics.RequestCounter.Add(ctx, 1, attrs)
	h.metrics.RequestDuration.Record(ctx, duration, attrs)
}
