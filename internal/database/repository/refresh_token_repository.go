package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
)

// RefreshTokenRepository stores the opaque half of a token pair.
// Revoked rows are kept until they expire and the cleanup task removes them.
type RefreshTokenRepository interface {
	Create(token *models.RefreshToken) error
	// FindByToken returns a live token with its user preloaded.
	FindByToken(token string) (*models.RefreshToken, error)
	RevokeToken(token string) error
	// RevokeAllUserTokens revokes every live token of a user and reports how many.
	RevokeAllUserTokens(userID uint) (int64, error)
	// DeleteExpiredTokens removes tokens that expired before cutoff.
	DeleteExpiredTokens(cutoff time.Time) (int64, error)
}

type refreshTokenRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db, now: time.Now}
}

func (r *refreshTokenRepository) live() *gorm.DB {
	return r.db.Model(&models.RefreshToken{}).Where("is_revoked = ?", false)
}

func (r *refreshTokenRepository) Create(token *models.RefreshToken) error {
	return r.db.Create(token).Error
}

func (r *refreshTokenRepository) FindByToken(token string) (*models.RefreshToken, error) {
	stored, err := first[models.RefreshToken](r.live().Where("token = ?", token).Preload("User"), ErrTokenNotFound)
	if err != nil {
		return nil, err
	}
	if stored.IsExpired(r.now()) {
		return nil, ErrTokenExpired
	}
	return stored, nil
}

func (r *refreshTokenRepository) RevokeToken(token string) error {
	result := r.live().Where("token = ?", token).Update("is_revoked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (r *refreshTokenRepository) RevokeAllUserTokens(userID uint) (int64, error) {
	result := r.live().Where("user_id = ?", userID).Update("is_revoked", true)
	return result.RowsAffected, result.Error
}

func (r *refreshTokenRepository) DeleteExpiredTokens(cutoff time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", cutoff).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
