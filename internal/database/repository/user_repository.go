package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
)

// Profile columns a user may change. Flags and created_at stay put.
var userProfileColumns = []string{"email", "name", "password", "updated_at"}

// UserRepository stores accounts. Emails are compared exactly; callers normalize them first.
type UserRepository interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	// Update writes the profile columns of user.
	Update(user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return emailConflict(r.db.Create(user).Error)
}

func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	return first[models.User](r.db.Where("email = ?", email), ErrUserNotFound)
}

func (r *userRepository) FindByID(id uint) (*models.User, error) {
	return first[models.User](r.db.Where("id = ?", id), ErrUserNotFound)
}

func (r *userRepository) Update(user *models.User) error {
	result := r.db.Model(user).Select(userProfileColumns).Updates(user)
	if err := emailConflict(result.Error); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// emailConflict turns the unique index violation on users.email into ErrEmailTaken.
func emailConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}
