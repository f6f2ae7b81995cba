package service

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/repository"
)

// UserService defines the interface for user business logic
type UserService interface {
	CreateUser(email, password, name string) (*models.User, error)
	CreateSuperuser(email, password, name string) (*models.User, error)
	GetUser(userID uint) (*models.User, error)
	UpdateUser(userID uint, update UserUpdate) (*models.User, error)
}

// UserUpdate carries the profile fields to change. Nil fields are left alone.
type UserUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

type userService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	logger    *slog.Logger
}

// NewUserService creates a new user service instance. A password change
// revokes the user's refresh tokens through tokenRepo.
func NewUserService(userRepo repository.UserRepository, tokenRepo repository.RefreshTokenRepository, logger *slog.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		logger:    logger,
	}
}

func (s *userService) CreateUser(email, password, name string) (*models.User, error) {
	return s.create(email, password, name, false)
}

func (s *userService) CreateSuperuser(email, password, name string) (*models.User, error) {
	return s.create(email, password, name, true)
}

func (s *userService) create(email, password, name string, superuser bool) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	s.logger.Info("📝 [UserService] Creating user", "email", email, "superuser", superuser)

	user := &models.User{
		Email:       email,
		Name:        strings.TrimSpace(name),
		IsActive:    true,
		IsStaff:     superuser,
		IsSuperuser: superuser,
	}
	if err := user.SetPassword(password); err != nil {
		s.logger.Error("❌ [UserService] Failed to hash password", "error", err)
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			s.logger.Warn("⚠️ [UserService] Email already registered", "email", email)
			return nil, ErrEmailAlreadyExists
		}
		s.logger.Error("❌ [UserService] Failed to create user", "error", err)
		return nil, err
	}

	s.logger.Info("✅ [UserService] User created", "user_id", user.ID)
	return user, nil
}

func (s *userService) GetUser(userID uint) (*models.User, error) {
	return s.userRepo.FindByID(userID)
}

func (s *userService) UpdateUser(userID uint, update UserUpdate) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		email := models.NormalizeEmail(*update.Email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		user.Email = email
	}
	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Password != nil {
		if err := user.SetPassword(*update.Password); err != nil {
			s.logger.Error("❌ [UserService] Failed to hash password", "user_id", userID, "error", err)
			return nil, err
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailAlreadyExists
		}
		s.logger.Error("❌ [UserService] Failed to update user", "user_id", userID, "error", err)
		return nil, err
	}

	if update.Password != nil {
		revoked, err := s.tokenRepo.RevokeAllUserTokens(userID)
		if err != nil {
			s.logger.Error("❌ [UserService] Failed to revoke sessions after password change", "user_id", userID, "error", err)
			return nil, err
		}
		s.logger.Info("🔒 [UserService] Sessions revoked after password change", "user_id", userID, "count", revoked)
	}

	s.logger.Info("✅ [UserService] User updated", "user_id", userID)
	return user, nil
}
