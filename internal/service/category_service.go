package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CategoryService handles income/expense category business logic
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CategoryService) publishEvent(companyID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(companyID, event)
	}
}

func validateCategory(name string, txType domain.TransactionType) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > domain.MaxCategoryNameLength {
		return "", domain.ErrNameTooLong
	}
	if !txType.IsValid() {
		return "", domain.ErrInvalidTransactionType
	}
	return name, nil
}

// ensureUniqueName rejects a name already used by another category of the same type
func (s *CategoryService) ensureUniqueName(ctx context.Context, companyID uuid.UUID, name string, txType domain.TransactionType, self uuid.UUID) error {
	existing, err := s.categoryRepo.GetByName(ctx, companyID, name, txType)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return domain.ErrCategoryAlreadyExists
	}
	return nil
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, companyID uuid.UUID, name string, txType domain.TransactionType) (*domain.Category, error) {
	name, err := validateCategory(name, txType)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, companyID, name, txType, uuid.Nil); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.Create(ctx, &domain.Category{
		CompanyID: companyID,
		Name:      name,
		Type:      txType,
	})
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID.String()).Msg("Failed to create category")
		return nil, err
	}

	s.publishEvent(companyID, websocket.CategoryCreated(category))
	return category, nil
}

// GetCategories returns the company's categories ordered by name, optionally of one type
func (s *CategoryService) GetCategories(ctx context.Context, companyID uuid.UUID, txType *domain.TransactionType) ([]*domain.Category, error) {
	if txType != nil && !txType.IsValid() {
		return nil, domain.ErrInvalidTransactionType
	}
	return s.categoryRepo.GetAllByCompany(ctx, companyID, txType)
}

// GetCategoryByID retrieves a category within a company
func (s *CategoryService) GetCategoryByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.GetByID(ctx, companyID, id)
}

// UpdateCategory renames a category or changes its type. The type is locked once
// transactions use the category, since their types must keep matching.
func (s *CategoryService) UpdateCategory(ctx context.Context, companyID, id uuid.UUID, name string, txType domain.TransactionType) (*domain.Category, error) {
	name, err := validateCategory(name, txType)
	if err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if existing.Type != txType {
		inUse, err := s.categoryRepo.HasTransactions(ctx, companyID, id)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, domain.ErrCategoryTypeLocked
		}
	}

	if err := s.ensureUniqueName(ctx, companyID, name, txType, id); err != nil {
		return nil, err
	}

	updated, err := s.categoryRepo.Update(ctx, &domain.Category{
		ID:        id,
		CompanyID: companyID,
		Name:      name,
		Type:      txType,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(companyID, websocket.CategoryUpdated(updated))
	return updated, nil
}

// DeleteCategory deletes a category. Categories still referenced by transactions
// are rejected with domain.ErrCategoryInUse.
func (s *CategoryService) DeleteCategory(ctx context.Context, companyID, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, companyID, id); err != nil {
		return err
	}

	s.publishEvent(companyID, websocket.CategoryDeleted(map[string]interface{}{"id": id}))
	return nil
}
