package service

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/models"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/validation"
)

// AttributeService defines the business logic shared by tags and ingredients
type AttributeService[T models.Attribute] interface {
	List(userID uint) ([]T, error)
	Get(userID, id uint) (*T, error)
	// Create returns the caller's existing row with that name or inserts one.
	Create(userID uint, name string) (*T, error)
	Rename(userID, id uint, name string) (*T, error)
	Delete(userID, id uint) error
}

type attributeService[T models.Attribute] struct {
	repo      repository.AttributeRepository[T]
	validator *validation.Validator
	recorder  WriteRecorder
	logger    *slog.Logger
}

// NewAttributeService creates a tag or ingredient service. recorder may be nil.
func NewAttributeService[T models.Attribute](
	repo repository.AttributeRepository[T],
	validator *validation.Validator,
	recorder WriteRecorder,
	logger *slog.Logger,
) AttributeService[T] {
	return &attributeService[T]{
		repo:      repo,
		validator: validator,
		recorder:  recorderOrNoop(recorder),
		logger:    logger,
	}
}

func (s *attributeService[T]) kind() string {
	var zero T
	return zero.Kind()
}

func (s *attributeService[T]) List(userID uint) ([]T, error) {
	return s.repo.ListByUser(userID)
}

func (s *attributeService[T]) Get(userID, id uint) (*T, error) {
	return s.repo.FindByIDForUser(id, userID)
}

func (s *attributeService[T]) Create(userID uint, name string) (*T, error) {
	name, err := s.checkName(name)
	if err != nil {
		return nil, err
	}

	item, created, err := s.repo.GetOrCreate(userID, name)
	if err != nil {
		s.logger.Error("❌ [AttributeService] Failed to create", "kind", s.kind(), "user_id", userID, "error", err)
		return nil, err
	}

	s.recorder.AttributeResolved(s.kind(), created)
	if created {
		s.logger.Info("✅ [AttributeService] Created", "kind", s.kind(), "user_id", userID, "name", name)
	}
	return item, nil
}

func (s *attributeService[T]) Rename(userID, id uint, name string) (*T, error) {
	name, err := s.checkName(name)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.Rename(id, userID, name)
	if err != nil {
		if !errors.Is(err, repository.ErrAttributeNotFound) {
			s.logger.Error("❌ [AttributeService] Failed to rename", "kind", s.kind(), "id", id, "error", err)
		}
		return nil, err
	}
	return item, nil
}

func (s *attributeService[T]) Delete(userID, id uint) error {
	if err := s.repo.Delete(id, userID); err != nil {
		if !errors.Is(err, repository.ErrAttributeNotFound) {
			s.logger.Error("❌ [AttributeService] Failed to delete", "kind", s.kind(), "id", id, "error", err)
		}
		return err
	}

	s.logger.Info("🗑️ [AttributeService] Deleted", "kind", s.kind(), "user_id", userID, "id", id)
	return nil
}

func (s *attributeService[T]) checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if fields := s.validator.Var("name", name, "notblank,max=255"); fields != nil {
		return "", &ValidationError{Fields: fields}
	}
	return name, nil
}
