package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/service"
)

// AttributeHandler serves the tag and ingredient endpoints
type AttributeHandler[T models.Attribute] struct {
	service service.AttributeService[T]
	logger  *slog.Logger
}

// NewAttributeHandler creates a handler for tags or ingredients
func NewAttributeHandler[T models.Attribute](service service.AttributeService[T], logger *slog.Logger) *AttributeHandler[T] {
	return &AttributeHandler[T]{
		service: service,
		logger:  logger,
	}
}

type AttributeRequest struct {
	Name string `json:"name" binding:"required"`
}

// AttributePatchRequest leaves the name alone when it is omitted.
type AttributePatchRequest struct {
	Name *string `json:"name"`
}

// List handles GET on the collection
func (h *AttributeHandler[T]) List(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	items, err := h.service.List(userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toAttributeResponses(items))
}

// Create handles POST on the collection
func (h *AttributeHandler[T]) Create(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	var req AttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.service.Create(userID, req.Name)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toAttributeResponse(*item))
}

// Get handles GET on an item
func (h *AttributeHandler[T]) Get(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	id, err := pathID(c)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	item, err := h.service.Get(userID, id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toAttributeResponse(*item))
}

// Rename handles PUT on an item; name is the only writable field
func (h *AttributeHandler[T]) Rename(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	id, err := pathID(c)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	var req AttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.service.Rename(userID, id, req.Name)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toAttributeResponse(*item))
}

// Patch handles PATCH on an item. An empty body changes nothing.
func (h *AttributeHandler[T]) Patch(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	id, err := pathID(c)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	var req AttributePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	var item *T
	if req.Name == nil {
		item, err = h.service.Get(userID, id)
	} else {
		item, err = h.service.Rename(userID, id, *req.Name)
	}
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toAttributeResponse(*item))
}

// Delete handles DELETE on an item
func (h *AttributeHandler[T]) Delete(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	id, err := pathID(c)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	if err := h.service.Delete(userID, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
