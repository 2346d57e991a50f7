package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/logging"
	"github.com/jonathan/flower-resume/internal/server/middleware"
	"github.com/jonathan/flower-resume/internal/types"
	"go.uber.org/zap"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, logger *zap.Logger) *AuthHandler {
	logger = logging.OrNop(logger)
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	h.issueToken(w, r, http.StatusCreated, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.issueToken(w, r, http.StatusOK, user)
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, r *http.Request, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, status, types.LoginResponse{
		User:  user,
		Token: token,
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, user)
}

// UpdateAccount renames the authenticated user. The reply carries a fresh
// token so clients reading claims stay in sync.
func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req types.UpdateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, err := h.userService.Rename(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.issueToken(w, r, http.StatusOK, user)
}

// DeleteAccount removes the authenticated user and everything they own.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req types.DeleteAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.userService.DeleteAccount(r.Context(), userID, req.Password); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("account deleted", zap.String("user_id", userID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePassword handles password update requests for the authenticated user.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req types.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"message": "Password updated successfully",
	})
}

func (h *AuthHandler) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeJSON(w, h.logger, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}
