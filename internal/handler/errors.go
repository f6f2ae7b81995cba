package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/service"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/middleware"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/validation"
)

var errInvalidID = errors.New("invalid id")

// currentUserID reads the id stored by the auth middleware.
func currentUserID(c *gin.Context, logger *slog.Logger) (uint, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		logger.Error("❌ [Handler] User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
		return 0, false
	}

	userID, ok := value.(uint)
	if !ok {
		logger.Error("❌ [Handler] Invalid user ID type")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return 0, false
	}
	return userID, true
}

// pathID parses the :id route parameter. Malformed ids read as not found.
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

func respondValidation(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "validation failed",
		"fields": fields,
	})
}

// respondBindError answers a failed ShouldBindJSON.
func respondBindError(c *gin.Context, err error) {
	fields, _ := validation.FieldErrors(err)
	respondValidation(c, fields)
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(c *gin.Context, logger *slog.Logger, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		respondValidation(c, validationErr.Fields)
	case errors.Is(err, service.ErrEmailRequired):
		respondValidation(c, map[string]string{"email": "is required"})
	case errors.Is(err, service.ErrEmailAlreadyExists):
		respondValidation(c, map[string]string{"email": "user with this email already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		respondValidation(c, map[string]string{"non_field_errors": err.Error()})
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, repository.ErrTokenNotFound), errors.Is(err, repository.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, errInvalidID),
		errors.Is(err, repository.ErrRecipeNotFound),
		errors.Is(err, repository.ErrAttributeNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	default:
		logger.Error("❌ [Handler] Internal server error", "error", err, "request_id", middleware.GetRequestID(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
