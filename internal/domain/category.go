package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
	ErrCategoryInUse         = errors.New("category is referenced by transactions")
	ErrCategoryTypeLocked    = errors.New("category type cannot change while transactions reference it")
)

const MaxCategoryNameLength = 100

// Category classifies transactions; its type must match the type of every transaction using it
type Category struct {
	ID        uuid.UUID       `json:"id"`
	CompanyID uuid.UUID       `json:"companyId"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*Category, error)
	GetByName(ctx context.Context, companyID uuid.UUID, name string, txType TransactionType) (*Category, error)
	// GetAllByCompany returns categories ordered by name, optionally restricted to one type
	GetAllByCompany(ctx context.Context, companyID uuid.UUID, txType *TransactionType) ([]*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	// Delete returns ErrCategoryInUse when transactions still reference the category
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	HasTransactions(ctx context.Context, companyID, id uuid.UUID) (bool, error)
}
