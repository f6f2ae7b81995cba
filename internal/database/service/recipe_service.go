package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/validation"
)

// decimal(5,2): at most three integer digits
var maxPrice = decimal.NewFromInt(1000)

// Prices with exponents outside this range are rejected before any decimal arithmetic.
const (
	minPriceExponent = -20
	maxPriceExponent = 3
)

// AttributeInput is an embedded tag or ingredient in a recipe payload.
type AttributeInput struct {
	Name string `json:"name" validate:"notblank,max=255"`
}

// RecipeInput is a recipe payload. Nil fields were not supplied; a non-nil
// empty Tags or Ingredients slice clears the relation.
type RecipeInput struct {
	Title       *string           `json:"title" validate:"omitnil,notblank,max=255"`
	Description *string           `json:"description"`
	Duration    *int              `json:"duration" validate:"omitnil,gte=0,lte=2147483647"`
	Price       *decimal.Decimal  `json:"price"`
	Link        *string           `json:"link" validate:"omitnil,max=255"`
	Tags        *[]AttributeInput `json:"tags" validate:"omitnil,dive"`
	Ingredients *[]AttributeInput `json:"ingredients" validate:"omitnil,dive"`
}

func (in *RecipeInput) normalize() {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(in.Title)
	trim(in.Link)
	for _, list := range []*[]AttributeInput{in.Tags, in.Ingredients} {
		if list == nil {
			continue
		}
		for i := range *list {
			(*list)[i].Name = strings.TrimSpace((*list)[i].Name)
		}
	}
}

func (in *RecipeInput) applyTo(recipe *models.Recipe) {
	if in.Title != nil {
		recipe.Title = *in.Title
	}
	if in.Description != nil {
		recipe.Description = *in.Description
	}
	if in.Duration != nil {
		recipe.Duration = *in.Duration
	}
	if in.Price != nil {
		recipe.Price = *in.Price
	}
	if in.Link != nil {
		recipe.Link = *in.Link
	}
}

// RecipeService defines the interface for recipe business logic.
// Every operation is scoped to the calling user.
type RecipeService interface {
	ListRecipes(userID uint) ([]models.Recipe, error)
	GetRecipe(userID, recipeID uint) (*models.Recipe, error)
	CreateRecipe(userID uint, in RecipeInput) (*models.Recipe, error)
	UpdateRecipe(userID, recipeID uint, in RecipeInput, partial bool) (*models.Recipe, error)
	DeleteRecipe(userID, recipeID uint) error
}

type recipeService struct {
	transactor     repository.Transactor
	recipeRepo     repository.RecipeRepository
	tagRepo        repository.AttributeRepository[models.Tag]
	ingredientRepo repository.AttributeRepository[models.Ingredient]
	validator      *validation.Validator
	recorder       WriteRecorder
	logger         *slog.Logger
}

// NewRecipeService creates a new recipe service instance. recorder may be nil.
func NewRecipeService(
	transactor repository.Transactor,
	recipeRepo repository.RecipeRepository,
	tagRepo repository.AttributeRepository[models.Tag],
	ingredientRepo repository.AttributeRepository[models.Ingredient],
	validator *validation.Validator,
	recorder WriteRecorder,
	logger *slog.Logger,
) RecipeService {
	return &recipeService{
		transactor:     transactor,
		recipeRepo:     recipeRepo,
		tagRepo:        tagRepo,
		ingredientRepo: ingredientRepo,
		validator:      validator,
		recorder:       recorderOrNoop(recorder),
		logger:         logger,
	}
}

func (s *recipeService) ListRecipes(userID uint) ([]models.Recipe, error) {
	return s.recipeRepo.ListByUser(userID)
}

func (s *recipeService) GetRecipe(userID, recipeID uint) (*models.Recipe, error) {
	return s.recipeRepo.FindByIDForUser(recipeID, userID)
}

func (s *recipeService) CreateRecipe(userID uint, in RecipeInput) (*models.Recipe, error) {
	in.normalize()
	if err := s.validate(&in, true); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{UserID: userID}
	in.applyTo(recipe)

	var resolved []resolution
	err := s.transactor.WithinTransaction(func(tx *gorm.DB) error {
		if err := s.recipeRepo.WithTx(tx).Create(recipe); err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		linked, err := s.linkAttributes(tx, recipe, &in)
		resolved = linked
		return err
	})
	if err != nil {
		s.logger.Error("❌ [RecipeService] Failed to create recipe", "user_id", userID, "error", err)
		return nil, err
	}

	s.record("create", resolved)
	s.logger.Info("✅ [RecipeService] Recipe created", "user_id", userID, "recipe_id", recipe.ID)
	return s.recipeRepo.FindByIDForUser(recipe.ID, userID)
}

func (s *recipeService) UpdateRecipe(userID, recipeID uint, in RecipeInput, partial bool) (*models.Recipe, error) {
	in.normalize()
	if err := s.validate(&in, !partial); err != nil {
		return nil, err
	}

	var resolved []resolution
	err := s.transactor.WithinTransaction(func(tx *gorm.DB) error {
		recipes := s.recipeRepo.WithTx(tx)

		recipe, err := recipes.FindByIDForUser(recipeID, userID)
		if err != nil {
			return err
		}

		in.applyTo(recipe)
		if err := recipes.UpdateFields(recipe); err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		resolved, err = s.linkAttributes(tx, recipe, &in)
		return err
	})
	if err != nil {
		if !errors.Is(err, repository.ErrRecipeNotFound) {
			s.logger.Error("❌ [RecipeService] Failed to update recipe", "recipe_id", recipeID, "error", err)
		}
		return nil, err
	}

	s.record("update", resolved)
	s.logger.Info("✅ [RecipeService] Recipe updated", "user_id", userID, "recipe_id", recipeID, "partial", partial)
	return s.recipeRepo.FindByIDForUser(recipeID, userID)
}

func (s *recipeService) DeleteRecipe(userID, recipeID uint) error {
	if err := s.recipeRepo.Delete(recipeID, userID); err != nil {
		if !errors.Is(err, repository.ErrRecipeNotFound) {
			s.logger.Error("❌ [RecipeService] Failed to delete recipe", "recipe_id", recipeID, "error", err)
		}
		return err
	}

	s.recorder.RecipeWritten("delete")
	s.logger.Info("🗑️ [RecipeService] Recipe deleted", "user_id", userID, "recipe_id", recipeID)
	return nil
}

// validate checks the whole payload before anything is written.
// requireAll is set for create and full update.
func (s *recipeService) validate(in *RecipeInput, requireAll bool) error {
	fields := s.validator.Struct(in)
	if fields == nil {
		fields = make(map[string]string)
	}

	if requireAll {
		if in.Title == nil {
			fields["title"] = "is required"
		}
		if in.Duration == nil {
			fields["duration"] = "is required"
		}
		if in.Price == nil {
			fields["price"] = "is required"
		}
	}

	if in.Price != nil {
		if msg := checkPrice(*in.Price); msg != "" {
			fields["price"] = msg
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkPrice(p decimal.Decimal) string {
	if exp := p.Exponent(); exp < minPriceExponent {
		return "must have no more than 2 decimal places"
	} else if exp > maxPriceExponent {
		return "must have no more than 5 digits in total"
	}
	if !p.Equal(p.Truncate(2)) {
		return "must have no more than 2 decimal places"
	}
	if p.Abs().GreaterThanOrEqual(maxPrice) {
		return "must have no more than 5 digits in total"
	}
	return ""
}

// resolution is one get-or-create outcome, reported once the transaction commits.
type resolution struct {
	kind    string
	created bool
}

func (s *recipeService) record(operation string, resolved []resolution) {
	s.recorder.RecipeWritten(operation)
	for _, r := range resolved {
		s.recorder.AttributeResolved(r.kind, r.created)
	}
}

// linkAttributes resolves the supplied relations and replaces the recipe's links.
// Omitted relations are left untouched.
func (s *recipeService) linkAttributes(tx *gorm.DB, recipe *models.Recipe, in *RecipeInput) ([]resolution, error) {
	recipes := s.recipeRepo.WithTx(tx)
	var resolved []resolution

	if in.Tags != nil {
		tags, err := resolveAttributes(s.tagRepo.WithTx(tx), recipe.UserID, *in.Tags, &resolved)
		if err != nil {
			return nil, err
		}
		if err := recipes.ReplaceTags(recipe, tags); err != nil {
			return nil, fmt.Errorf("link tags: %w", err)
		}
	}

	if in.Ingredients != nil {
		ingredients, err := resolveAttributes(s.ingredientRepo.WithTx(tx), recipe.UserID, *in.Ingredients, &resolved)
		if err != nil {
			return nil, err
		}
		if err := recipes.ReplaceIngredients(recipe, ingredients); err != nil {
			return nil, fmt.Errorf("link ingredients: %w", err)
		}
	}

	return resolved, nil
}

// resolveAttributes runs get-or-create for each distinct name, in payload order.
func resolveAttributes[T models.Attribute](
	repo repository.AttributeRepository[T],
	userID uint,
	inputs []AttributeInput,
	resolved *[]resolution,
) ([]T, error) {
	var zero T
	seen := make(map[string]struct{}, len(inputs))
	items := make([]T, 0, len(inputs))

	for _, in := range inputs {
		if _, dup := seen[in.Name]; dup {
			continue
		}
		seen[in.Name] = struct{}{}

		item, created, err := repo.GetOrCreate(userID, in.Name)
		if err != nil {
			return nil, fmt.Errorf("resolve %s %q: %w", zero.Kind(), in.Name, err)
		}
		*resolved = append(*resolved, resolution{kind: zero.Kind(), created: created})
		items = append(items, *item)
	}

	return items, nil
}
