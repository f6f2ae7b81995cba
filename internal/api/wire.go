package api

import (
	"database/sql"
	"log/slog"

	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/config"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/service"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/handler"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/metrics"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/middleware"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/validation"
)

// App is the composed HTTP application.
type App struct {
	Handlers       Handlers
	AuthMiddleware *middleware.AuthMiddleware
	AuthService    service.AuthService
	UserService    service.UserService
}

// NewApp builds repositories, services and handlers on top of db.
func NewApp(
	db *gorm.DB,
	cfg *config.Config,
	limiter middleware.RateLimiter,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*App, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	v := validation.New()

	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)

	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg, logger)
	userService := service.NewUserService(userRepo, refreshTokenRepo, logger)
	recipeService := service.NewRecipeService(
		repository.NewTransactor(db), recipeRepo, tagRepo, ingredientRepo, v, m, logger,
	)
	tagService := service.NewAttributeService(tagRepo, v, m, logger)
	ingredientService := service.NewAttributeService(ingredientRepo, v, m, logger)

	return &App{
		Handlers: Handlers{
			Health:     handler.NewHealthHandler(pinger(sqlDB)),
			User:       handler.NewUserHandler(userService, logger),
			Auth:       handler.NewAuthHandler(authService, limiter, logger),
			Recipe:     handler.NewRecipeHandler(recipeService, logger),
			Tag:        handler.NewAttributeHandler(tagService, logger),
			Ingredient: handler.NewAttributeHandler(ingredientService, logger),
		},
		AuthMiddleware: middleware.NewAuthMiddleware(authService, logger),
		AuthService:    authService,
		UserService:    userService,
	}, nil
}

func pinger(db *sql.DB) handler.Pinger {
	if db == nil {
		return nil
	}
	return db
}
