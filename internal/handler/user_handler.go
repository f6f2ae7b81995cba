package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/service"
)

// UserHandler handles account creation and the caller's own profile
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=5,max=128"`
	Name     string `json:"name" binding:"required,notblank,max=255"`
}

// UpdateUserRequest is shared by PUT and PATCH; PUT additionally requires every field.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitnil,email,max=255"`
	Password *string `json:"password" binding:"omitnil,min=5,max=128"`
	Name     *string `json:"name" binding:"omitnil,notblank,max=255"`
}

// Create handles POST /user/create
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("⚠️ [UserHandler] Invalid create request", "error", err)
		respondBindError(c, err)
		return
	}

	user, err := h.userService.CreateUser(req.Email, req.Password, req.Name)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Me handles GET /user/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateMe handles PUT /user/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	h.update(c, false)
}

// PatchMe handles PATCH /user/me
func (h *UserHandler) PatchMe(c *gin.Context) {
	h.update(c, true)
}

func (h *UserHandler) update(c *gin.Context, partial bool) {
	userID, ok := currentUserID(c, h.logger)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if !partial {
		missing := make(map[string]string)
		if req.Email == nil {
			missing["email"] = "is required"
		}
		if req.Password == nil {
			missing["password"] = "is required"
		}
		if req.Name == nil {
			missing["name"] = "is required"
		}
		if len(missing) > 0 {
			respondValidation(c, missing)
			return
		}
	}

	user, err := h.userService.UpdateUser(userID, service.UserUpdate{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}
