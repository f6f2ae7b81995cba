package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/handler"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/metrics"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/middleware"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/validation"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health     *handler.HealthHandler
	User       *handler.UserHandler
	Auth       *handler.AuthHandler
	Recipe     *handler.RecipeHandler
	Tag        *handler.AttributeHandler[models.Tag]
	Ingredient *handler.AttributeHandler[models.Ingredient]
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.Configure(v)
	}
}

func SetupRouter(
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	m *metrics.Metrics,
	logger *slog.Logger,
) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies(nil)
	r.HandleMethodNotAllowed = true

	r.Use(
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.Error("💥 [HTTP] Panic recovered", "panic", recovered, "request_id", middleware.GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}),
		middleware.RequestID(),
		middleware.Logger(logger),
		m.Middleware(),
	)

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method \"" + c.Request.Method + "\" not allowed."})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
	})

	v1 := r.Group("/api/v1")

	// Public routes
	v1.GET("/health", h.Health.Check)
	v1.GET("/metrics", m.Handler())

	userGroup := v1.Group("/user")
	{
		userGroup.POST("/create", h.User.Create)
		userGroup.POST("/token", h.Auth.Login)
		userGroup.POST("/token/refresh", h.Auth.RefreshToken)
		userGroup.POST("/token/logout", h.Auth.Logout)
	}

	// Protected routes
	me := userGroup.Group("/me", authMiddleware.RequireAuth())
	{
		me.GET("", h.User.Me)
		me.PUT("", h.User.UpdateMe)
		me.PATCH("", h.User.PatchMe)
	}

	recipeGroup := v1.Group("/recipe", authMiddleware.RequireAuth())
	{
		recipeGroup.GET("/recipes", h.Recipe.List)
		recipeGroup.POST("/recipes", h.Recipe.Create)
		recipeGroup.GET("/recipes/:id", h.Recipe.Get)
		recipeGroup.PUT("/recipes/:id", h.Recipe.Update)
		recipeGroup.PATCH("/recipes/:id", h.Recipe.Patch)
		recipeGroup.DELETE("/recipes/:id", h.Recipe.Delete)

		mountAttribute(recipeGroup.Group("/tags"), h.Tag)
		mountAttribute(recipeGroup.Group("/ingredients"), h.Ingredient)
	}

	return r
}

func mountAttribute[T models.Attribute](g *gin.RouterGroup, h *handler.AttributeHandler[T]) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Rename)
	g.PATCH("/:id", h.Patch)
	g.DELETE("/:id", h.Delete)
}
