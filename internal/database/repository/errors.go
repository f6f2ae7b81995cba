package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Repository errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrTokenNotFound     = errors.New("token not found")
	ErrTokenExpired      = errors.New("token expired")
	ErrRecipeNotFound    = errors.New("recipe not found")
	ErrAttributeNotFound = errors.New("attribute not found")
)

// first loads the single row selected by query. A missing row becomes notFound.
func first[T any](query *gorm.DB, notFound error) (*T, error) {
	var row T
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return &row, nil
}
