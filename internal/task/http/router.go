package http

import (
	"net/http"
	"time"

	commonhttp "github.com/AlibekovAA/task-tracker/backend/internal/common/http"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/jwtverify"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
	"github.com/AlibekovAA/task-tracker/backend/internal/task/domain"
	"github.com/AlibekovAA/task-tracker/backend/internal/task/service"
)

type createTaskRequest struct {
	Description string `json:"description"`
}

type updateTaskRequest struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type taskResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type statsResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

type Handler struct {
	tasks          *service.TaskService
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewHandler(tasks *service.TaskService, requestTimeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{tasks: tasks, requestTimeout: requestTimeout, log: log}
}

// Register mounts the task endpoints behind authenticate.
func (h *Handler) Register(mux *http.ServeMux, authenticate func(http.Handler) http.Handler) {
	timeout := commonhttp.WithTimeout(h.requestTimeout)

	mux.Handle("/api/tasks", authenticate(timeout(h.collection)))
	mux.Handle("/api/tasks/", authenticate(timeout(h.item)))
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) {
	userID, ok := jwtverify.UserIDFromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, errUnauthenticated, h.log)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, userID)
	case http.MethodPost:
		h.create(w, r, userID)
	default:
		commonhttp.WriteMethodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (h *Handler) item(w http.ResponseWriter, r *http.Request) {
	userID, ok := jwtverify.UserIDFromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, errUnauthenticated, h.log)
		return
	}

	taskID, action, ok := commonhttp.ExtractTaskPath(r.URL.Path)
	if !ok {
		commonhttp.WriteNotFound(w, r)
		return
	}

	switch {
	case taskID == "stats" && action == "":
		if r.Method != http.MethodGet {
			commonhttp.WriteMethodNotAllowed(w, r, http.MethodGet)
			return
		}
		h.stats(w, r, userID)
	case action == "toggle":
		if r.Method != http.MethodPost {
			commonhttp.WriteMethodNotAllowed(w, r, http.MethodPost)
			return
		}
		h.toggle(w, r, userID, taskID)
	case action == "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, userID, taskID)
		case http.MethodPut, http.MethodPatch:
			h.update(w, r, userID, taskID)
		case http.MethodDelete:
			h.delete(w, r, userID, taskID)
		default:
			commonhttp.WriteMethodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
		}
	default:
		commonhttp.WriteNotFound(w, r)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, userID string) {
	tasks, err := h.tasks.List(r.Context(), userID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	out := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = toTaskResponse(t)
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{"tasks": out})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, userID string) {
	var req createTaskRequest
	if !commonhttp.ReadJSON(w, r, &req) {
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, service.CreateInput{Description: req.Description})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	w.Header().Set("Location", "/api/tasks/"+string(task.ID))
	commonhttp.WriteJSON(w, http.StatusCreated, map[string]any{"task": toTaskResponse(task)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, userID, taskID string) {
	task, err := h.tasks.Get(r.Context(), userID, taskID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{"task": toTaskResponse(task)})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, userID, taskID string) {
	var req updateTaskRequest
	if !commonhttp.ReadJSON(w, r, &req) {
		return
	}

	task, err := h.tasks.Update(r.Context(), userID, taskID, service.UpdateInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{"task": toTaskResponse(task)})
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, userID, taskID string) {
	task, err := h.tasks.Toggle(r.Context(), userID, taskID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{"task": toTaskResponse(task)})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, userID, taskID string) {
	if err := h.tasks.Delete(r.Context(), userID, taskID); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request, userID string) {
	stats, err := h.tasks.Stats(r.Context(), userID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{"stats": statsResponse{
		Total:     stats.Total,
		Completed: stats.Completed,
		Pending:   stats.Pending,
	}})
}

func toTaskResponse(t domain.Task) taskResponse {
	return taskResponse{
		ID:          string(t.ID),
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
