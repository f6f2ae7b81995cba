package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/service"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/middleware"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	service service.AuthService
	limiter middleware.RateLimiter
	logger  *slog.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(service service.AuthService, limiter middleware.RateLimiter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		limiter: limiter,
		logger:  logger,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login handles POST /user/token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [AuthHandler] Invalid login request", "error", err)
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	allowed, err := h.limiter.Allow(ctx, req.Email)
	if err != nil {
		h.logger.Warn("⚠️ [AuthHandler] Login limiter unavailable", "error", err)
	}
	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many failed login attempts. Try again later."})
		return
	}

	_, tokens, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if recErr := h.limiter.RecordFailure(ctx, req.Email); recErr != nil {
				h.logger.Warn("⚠️ [AuthHandler] Failed to record login failure", "error", recErr)
			}
		}
		handleServiceError(c, h.logger, err)
		return
	}

	if err := h.limiter.Reset(ctx, req.Email); err != nil {
		h.logger.Warn("⚠️ [AuthHandler] Failed to reset login attempts", "error", err)
	}

	c.JSON(http.StatusOK, newTokenResponse(tokens))
}

// RefreshToken handles POST /user/token/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tokens, err := h.service.RefreshToken(req.RefreshToken)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(tokens))
}

// Logout handles POST /user/token/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.service.Logout(req.RefreshToken); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func newTokenResponse(tokens *service.TokenPair) TokenResponse {
	return TokenResponse{
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    tokens.ExpiresIn,
	}
}
