package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/lfca/church-admin-be/internal/auth"
	"github.com/lfca/church-admin-be/internal/http/respond"
	"github.com/lfca/church-admin-be/internal/models"
	"github.com/lfca/church-admin-be/internal/models/dto"
	"github.com/lfca/church-admin-be/internal/session"
	"github.com/lfca/church-admin-be/internal/storage"
)

// AuthHandler owns the register/login/reset endpoints, delegating credential
// work to the session store and its identity provider.
type AuthHandler struct {
	sessions *session.Store
	users    storage.UserStore
	tokens   *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(sessions *session.Store, users storage.UserStore, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{sessions: sessions, users: users, tokens: tokens}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/reset-password", h.handleResetPassword)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.FullName) == "" {
		respond.Error(w, http.StatusBadRequest, "email and full_name are required")
		return
	}
	// Signup attaches the default member role and does not authenticate.
	if err := h.sessions.Signup(r.Context(), req.Email, req.Password, strings.TrimSpace(req.FullName)); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "an account with this email already exists")
		default:
			respond.Error(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	respond.JSON(w, http.StatusCreated, "account created, proceed to login", nil)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if err := h.sessions.Login(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.Printf("login failed for %s: %v", req.Email, err)
		respond.Error(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	user, err := h.users.FindUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		log.Printf("login: fetch user %s: %v", req.Email, err)
		respond.Error(w, http.StatusInternalServerError, "failed to sign in")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	sess := h.sessions.Session()
	if sess == nil {
		sess = &models.UserSession{ID: user.ID, Email: user.Email, Name: user.FullName, Role: user.Role}
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, Session: *sess})
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		respond.Error(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.sessions.ResetPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "no account with this email")
			return
		}
		log.Printf("reset password for %s: %v", req.Email, err)
		respond.Error(w, http.StatusInternalServerError, "failed to start password reset")
		return
	}
	respond.JSON(w, http.StatusOK, "password reset initiated", nil)
}
