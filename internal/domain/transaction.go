package domain

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// IsValid reports whether t is one of the known transaction types
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

var (
	ErrTransactionNotFound       = errors.New("transaction not found")
	ErrDescriptionRequired       = errors.New("description is required")
	ErrDescriptionTooLong        = errors.New("description exceeds maximum length")
	ErrInvalidAmount             = errors.New("amount must be positive")
	ErrInvalidTransactionType    = errors.New("transaction type must be INCOME or EXPENSE")
	ErrCategoryRequired          = errors.New("category is required")
	ErrCategoryTypeMismatch      = errors.New("category type does not match transaction type")
	ErrInstallmentsOutOfRange    = errors.New("installments must be between 1 and 120")
	ErrInstallmentAmountTooSmall = errors.New("installment amount rounds to zero cents")
	ErrInstallmentGroupInvalid   = errors.New("installment fields are inconsistent")
	ErrInstallmentGroupMissing   = errors.New("installment group not found")
)

const (
	MaxDescriptionLength = 255
	MinInstallments      = 1
	MaxInstallments      = 120

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Transaction is a single dated income or expense row. Amount is always positive;
// the sign is implied by Type.
type Transaction struct {
	ID                 uuid.UUID       `json:"id"`
	CompanyID          uuid.UUID       `json:"companyId"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	Date               time.Time       `json:"date"`
	Type               TransactionType `json:"type"`
	ProjectID          *uuid.UUID      `json:"projectId,omitempty"`
	CategoryID         uuid.UUID       `json:"categoryId"`
	InstallmentGroupID *uuid.UUID      `json:"installmentGroupId,omitempty"`
	InstallmentNumber  *int32          `json:"installmentNumber,omitempty"`
	TotalInstallments  *int32          `json:"totalInstallments,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`

	// Joined, read-only
	ProjectName  *string `json:"projectName,omitempty"`
	CategoryName *string `json:"categoryName,omitempty"`
}

// Validate checks the row-level invariants shared by create and update
func (t *Transaction) Validate() error {
	if t.Description == "" {
		return ErrDescriptionRequired
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	if t.CategoryID == uuid.Nil {
		return ErrCategoryRequired
	}
	grouped := t.InstallmentGroupID != nil
	if grouped != (t.InstallmentNumber != nil) || grouped != (t.TotalInstallments != nil) {
		return ErrInstallmentGroupInvalid
	}
	if grouped && (*t.InstallmentNumber < 1 || *t.InstallmentNumber > *t.TotalInstallments) {
		return ErrInstallmentGroupInvalid
	}
	return nil
}

// IsInstallment reports whether the row was produced by an installment split
func (t *Transaction) IsInstallment() bool {
	return t.InstallmentGroupID != nil
}

// UpdateTransactionData holds the editable fields of a single row
type UpdateTransactionData struct {
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	Type        TransactionType
	ProjectID   *uuid.UUID
	CategoryID  uuid.UUID
}

type TransactionFilters struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Type       *TransactionType
	ProjectID  *uuid.UUID
	CategoryID *uuid.UUID
	Page       int32
	PageSize   int32
}

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	// CreateBatch inserts all rows in one database transaction; on error nothing is persisted
	CreateBatch(ctx context.Context, transactions []*Transaction) ([]*Transaction, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*Transaction, error)
	GetByCompany(ctx context.Context, companyID uuid.UUID, filters *TransactionFilters) (*PaginatedTransactions, error)
	// GetAllByCompany returns every row of the company ordered by date ascending
	GetAllByCompany(ctx context.Context, companyID uuid.UUID) ([]*Transaction, error)
	GetByInstallmentGroup(ctx context.Context, companyID, groupID uuid.UUID) ([]*Transaction, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
	Update(ctx context.Context, companyID, id uuid.UUID, data *UpdateTransactionData) (*Transaction, error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}
