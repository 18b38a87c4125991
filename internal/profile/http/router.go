package http

import (
	"net/http"
	"time"

	commonerrors "github.com/AlibekovAA/task-tracker/backend/internal/common/errors"
	commonhttp "github.com/AlibekovAA/task-tracker/backend/internal/common/http"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/jwtverify"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
	"github.com/AlibekovAA/task-tracker/backend/internal/profile/service"
)

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type Handler struct {
	profiles       *service.ProfileService
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewHandler(profiles *service.ProfileService, requestTimeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{profiles: profiles, requestTimeout: requestTimeout, log: log}
}

func (h *Handler) Register(mux *http.ServeMux, authenticate func(http.Handler) http.Handler) {
	mux.Handle("/api/profile", authenticate(commonhttp.WithTimeout(h.requestTimeout)(h.profile)))
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := jwtverify.UserIDFromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, commonerrors.ErrUnauthenticated, h.log)
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := h.profiles.GetProfile(r.Context(), userID)
		if err != nil {
			commonhttp.HandleError(w, r, err, h.log)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
	case http.MethodPut, http.MethodPatch:
		var req updateProfileRequest
		if !commonhttp.ReadJSON(w, r, &req) {
			return
		}
		user, err := h.profiles.UpdateProfile(r.Context(), userID, service.UpdateInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			commonhttp.HandleError(w, r, err, h.log)
			return
		}
		commonhttp.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
	default:
		commonhttp.WriteMethodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodPatch)
	}
}
