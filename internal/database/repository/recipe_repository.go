package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
)

// RecipeRepository defines the interface for recipe data operations.
// Every lookup is scoped to the owning user.
type RecipeRepository interface {
	WithTx(tx *gorm.DB) RecipeRepository

	Create(recipe *models.Recipe) error
	FindByIDForUser(id, userID uint) (*models.Recipe, error)
	ListByUser(userID uint) ([]models.Recipe, error)
	UpdateFields(recipe *models.Recipe) error
	Delete(id, userID uint) error

	// Relation links
	ReplaceTags(recipe *models.Recipe, tags []models.Tag) error
	ReplaceIngredients(recipe *models.Recipe, ingredients []models.Ingredient) error
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository instance
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) WithTx(tx *gorm.DB) RecipeRepository {
	return &recipeRepository{db: tx}
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func (r *recipeRepository) withRelations() *gorm.DB {
	return r.db.Preload("Tags", orderByID).Preload("Ingredients", orderByID)
}

// Create inserts the recipe row only; links are written with ReplaceTags/ReplaceIngredients.
func (r *recipeRepository) Create(recipe *models.Recipe) error {
	return r.db.Omit(clause.Associations).Create(recipe).Error
}

func (r *recipeRepository) FindByIDForUser(id, userID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.withRelations().
		Where("id = ? AND user_id = ?", id, userID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) ListByUser(userID uint) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := r.withRelations().
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&recipes).Error
	return recipes, err
}

// UpdateFields writes the scalar columns. The owner column is never part of the update.
func (r *recipeRepository) UpdateFields(recipe *models.Recipe) error {
	result := r.db.Model(recipe).
		Select("title", "description", "duration", "price", "link", "updated_at").
		Where("user_id = ?", recipe.UserID).
		Updates(recipe)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

func (r *recipeRepository) Delete(id, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}

		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_ingredients WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Recipe{}, id).Error
	})
}

func (r *recipeRepository) ReplaceTags(recipe *models.Recipe, tags []models.Tag) error {
	assoc := r.db.Model(recipe).Association("Tags")
	if len(tags) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(tags)
}

func (r *recipeRepository) ReplaceIngredients(recipe *models.Recipe, ingredients []models.Ingredient) error {
	assoc := r.db.Model(recipe).Association("Ingredients")
	if len(ingredients) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(ingredients)
}
