package http

import (
	"net/http"
	"time"

	"github.com/AlibekovAA/task-tracker/backend/internal/auth/service"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/dto"
	commonhttp "github.com/AlibekovAA/task-tracker/backend/internal/common/http"
	"github.com/AlibekovAA/task-tracker/backend/internal/common/logger"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      dto.User  `json:"user"`
}

type Handler struct {
	auth           *service.AuthService
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewHandler(auth *service.AuthService, requestTimeout time.Duration, log *logger.Logger) *Handler {
	return &Handler{auth: auth, requestTimeout: requestTimeout, log: log}
}

// Register mounts the public credential endpoints. /register is kept as an
// alias of /signup.
func (h *Handler) Register(mux *http.ServeMux) {
	post := commonhttp.RequireMethod(http.MethodPost)
	timeout := commonhttp.WithTimeout(h.requestTimeout)

	mux.HandleFunc("/api/auth/signup", post(timeout(h.signup)))
	mux.HandleFunc("/api/auth/register", post(timeout(h.signup)))
	mux.HandleFunc("/api/auth/login", post(timeout(h.login)))
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !commonhttp.ReadJSON(w, r, &req) {
		h.log.WithFields(r.Context(), logger.Fields{"action": "signup_invalid_json"}).Warn("signup failed: invalid json")
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toAuthResponse(result))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !commonhttp.ReadJSON(w, r, &req) {
		h.log.WithFields(r.Context(), logger.Fields{"action": "login_invalid_json"}).Warn("login failed: invalid json")
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toAuthResponse(result))
}

func toAuthResponse(result service.AuthResult) authResponse {
	return authResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	}
}
