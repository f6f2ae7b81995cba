package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
)

// AttributeRepository defines the data operations shared by tags and ingredients.
// Names are scoped per user: lookups never cross owners.
type AttributeRepository[T models.Attribute] interface {
	WithTx(tx *gorm.DB) AttributeRepository[T]

	ListByUser(userID uint) ([]T, error)
	FindByIDForUser(id, userID uint) (*T, error)
	// GetOrCreate returns the user's row named name, inserting it when absent.
	// The bool reports whether a row was inserted.
	GetOrCreate(userID uint, name string) (*T, bool, error)
	Rename(id, userID uint, name string) (*T, error)
	Delete(id, userID uint) error
}

type attributeRepository[T models.Attribute] struct {
	db *gorm.DB
}

// NewTagRepository creates a repository for tags
func NewTagRepository(db *gorm.DB) AttributeRepository[models.Tag] {
	return &attributeRepository[models.Tag]{db: db}
}

// NewIngredientRepository creates a repository for ingredients
func NewIngredientRepository(db *gorm.DB) AttributeRepository[models.Ingredient] {
	return &attributeRepository[models.Ingredient]{db: db}
}

func (r *attributeRepository[T]) WithTx(tx *gorm.DB) AttributeRepository[T] {
	return &attributeRepository[T]{db: tx}
}

func (r *attributeRepository[T]) ListByUser(userID uint) ([]T, error) {
	items := []T{}
	err := r.db.Where("user_id = ?", userID).
		Order("name DESC").
		Order("id DESC").
		Find(&items).Error
	return items, err
}

func (r *attributeRepository[T]) FindByIDForUser(id, userID uint) (*T, error) {
	var item T
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttributeNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *attributeRepository[T]) GetOrCreate(userID uint, name string) (*T, bool, error) {
	var item T
	result := r.db.Where("user_id = ? AND name = ?", userID, name).
		Order("id").
		Limit(1).
		Find(&item)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return &item, false, nil
	}

	// FirstOrCreate copies the map conditions onto the new row.
	conds := map[string]interface{}{"user_id": userID, "name": name}
	if err := r.db.Where(conds).FirstOrCreate(&item).Error; err != nil {
		return nil, false, err
	}
	return &item, true, nil
}

func (r *attributeRepository[T]) Rename(id, userID uint, name string) (*T, error) {
	result := r.db.Model(new(T)).
		Where("id = ? AND user_id = ?", id, userID).
		Update("name", name)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAttributeNotFound
	}
	return r.FindByIDForUser(id, userID)
}

// Delete removes the row and its recipe links. Linked recipes are left in place.
func (r *attributeRepository[T]) Delete(id, userID uint) error {
	var zero T
	return r.db.Transaction(func(tx *gorm.DB) error {
		var item T
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAttributeNotFound
			}
			return err
		}

		unlink := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", zero.JoinTable(), zero.JoinColumn())
		if err := tx.Exec(unlink, id).Error; err != nil {
			return err
		}

		return tx.Delete(new(T), id).Error
	})
}
