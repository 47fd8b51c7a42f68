package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	"taskboard/internal/metrics"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	user, token, err := h.authUsecase.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			respondError(c, http.StatusBadRequest, ve.Message)
		case errors.Is(err, domain.ErrEmailTaken):
			respondError(c, http.StatusConflict, errEmailTaken)
		default:
			h.logger.ErrorContext(c.Request.Context(), "register", "error", err)
			respondError(c, http.StatusInternalServerError, errInternalServer)
		}
		return
	}

	respondOK(c, http.StatusCreated, gin.H{"user": user.Public(), "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
// Unknown email and wrong password produce the same response, so the
// caller cannot probe which accounts exist.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	user, token, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			respondError(c, http.StatusUnauthorized, errInvalidCredentials)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	respondOK(c, http.StatusOK, gin.H{"user": user.Public(), "token": token})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("userID")

	user, err := h.authUsecase.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, errUserNotFound)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "current user", "error", err)
		respondError(c, http.StatusInternalServerError, errInternalServer)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"user": user.Public()})
}
