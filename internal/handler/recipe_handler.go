package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/service"
)

// RecipeHandler handles recipe CRUD for the authenticated user
type RecipeHandler struct {
	service service.RecipeService
	logger  *slog.Logger
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(service service.RecipeService, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		service: service,
		logger:  logger,
	}
}

// List handles GET /recipe/recipes
func (h *RecipeHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	recipes, err := h.service.ListRecipes(userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, toRecipeResponse(&recipes[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /recipe/recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	// Unknown keys such as "user" are dropped by the decoder
	var in service.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.service.CreateRecipe(userID, in)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toRecipeDetailResponse(recipe))
}

// Get handles GET /recipe/recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	id, err := pathID(c)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	recipe, err := h.service.GetRecipe(userID, id)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toRecipeDetailResponse(recipe))
}

// Update handles PUT /recipe/recipes/:id
func (h *RecipeHandler) Update(c *gin.Context) {
	h.update(c, false)
}

// Patch handles PATCH /recipe/recipes/:id
func (h *RecipeHandler) Patch(c *gin.Context) {
	h.update(c, true)
}

func (h *RecipeHandler) update(c *gin.Context, partial bool) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	id, err := pathID(c)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	var in service.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.service.UpdateRecipe(userID, id, in, partial)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toRecipeDetailResponse(recipe))
}

// Delete handles DELETE /recipe/recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	id, err := pathID(c)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	if err := h.service.DeleteRecipe(userID, id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
