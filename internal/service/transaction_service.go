package service

import (
	"context"
	"strings"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	projectRepo     domain.ProjectRepository
	categoryRepo    domain.CategoryRepository
	eventPublisher  websocket.EventPublisher
	newGroupID      func() uuid.UUID
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo domain.TransactionRepository,
	projectRepo domain.ProjectRepository,
	categoryRepo domain.CategoryRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		projectRepo:     projectRepo,
		categoryRepo:    categoryRepo,
		newGroupID:      uuid.New,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TransactionService) publishEvent(companyID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(companyID, event)
	}
}

// CreateTransactionInput holds the data for a new transaction. Installments of 0
// means a single row.
type CreateTransactionInput struct {
	Description  string
	Amount       decimal.Decimal
	Date         time.Time
	Type         domain.TransactionType
	ProjectID    *uuid.UUID
	CategoryID   uuid.UUID
	Installments int
}

// UpdateTransactionInput holds the editable fields of one row. Installments are not
// editable: updating one row of a group never re-splits it.
type UpdateTransactionInput struct {
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	Type        domain.TransactionType
	ProjectID   *uuid.UUID
	CategoryID  uuid.UUID
}

// TransactionList is one page of transactions plus whether the company has any at all,
// so clients can tell "no data yet" from "nothing matches the filters"
type TransactionList struct {
	*domain.PaginatedTransactions
	HasTransactions bool `json:"hasTransactions"`
}

// references resolves and checks the category and project a row points to
func (s *TransactionService) references(ctx context.Context, companyID uuid.UUID, txType domain.TransactionType, categoryID uuid.UUID, projectID *uuid.UUID) (*domain.Category, *domain.Project, error) {
	category, err := s.categoryRepo.GetByID(ctx, companyID, categoryID)
	if err != nil {
		return nil, nil, err
	}
	if category.Type != txType {
		return nil, nil, domain.ErrCategoryTypeMismatch
	}

	if projectID == nil {
		return category, nil, nil
	}
	project, err := s.projectRepo.GetByID(ctx, companyID, *projectID)
	if err != nil {
		return nil, nil, err
	}
	return category, project, nil
}

func attachNames(rows []*domain.Transaction, category *domain.Category, project *domain.Project) {
	for _, row := range rows {
		name := category.Name
		row.CategoryName = &name
		if project != nil {
			projectName := project.Name
			row.ProjectName = &projectName
		}
	}
}

// CreateTransaction validates the input, splits it into installments when asked and
// persists all rows at once. A split is stored atomically: either every installment
// is saved or none is.
func (s *TransactionService) CreateTransaction(ctx context.Context, companyID uuid.UUID, input CreateTransactionInput) ([]*domain.Transaction, error) {
	installments := input.Installments
	if installments == 0 {
		installments = domain.MinInstallments
	}
	if installments < domain.MinInstallments || installments > domain.MaxInstallments {
		return nil, domain.ErrInstallmentsOutOfRange
	}

	draft := &domain.Transaction{
		CompanyID:   companyID,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		Date:        input.Date,
		Type:        input.Type,
		ProjectID:   input.ProjectID,
		CategoryID:  input.CategoryID,
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	category, project, err := s.references(ctx, companyID, draft.Type, draft.CategoryID, draft.ProjectID)
	if err != nil {
		return nil, err
	}

	rows := SplitInstallments(draft, installments, s.newGroupID)
	if !rows[0].Amount.IsPositive() {
		return nil, domain.ErrInstallmentAmountTooSmall
	}

	if len(rows) == 1 {
		created, err := s.transactionRepo.Create(ctx, rows[0])
		if err != nil {
			log.Error().Err(err).Str("company_id", companyID.String()).Msg("Failed to create transaction")
			return nil, err
		}
		rows = []*domain.Transaction{created}
		attachNames(rows, category, project)
		s.publishEvent(companyID, websocket.TransactionCreated(created))
		return rows, nil
	}

	created, err := s.transactionRepo.CreateBatch(ctx, rows)
	if err != nil {
		log.Error().
			Err(err).
			Str("company_id", companyID.String()).
			Str("installment_group_id", rows[0].InstallmentGroupID.String()).
			Int("installments", installments).
			Msg("Failed to create installments")
		return nil, err
	}
	attachNames(created, category, project)

	log.Info().
		Str("company_id", companyID.String()).
		Str("installment_group_id", created[0].InstallmentGroupID.String()).
		Int("installments", len(created)).
		Msg("Created installment group")

	s.publishEvent(companyID, websocket.InstallmentGroupCreated(created))
	return created, nil
}

// ListTransactions returns one page of the company's transactions, newest first
func (s *TransactionService) ListTransactions(ctx context.Context, companyID uuid.UUID, filters *domain.TransactionFilters) (*TransactionList, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}
	if filters.Type != nil && !filters.Type.IsValid() {
		return nil, domain.ErrInvalidTransactionType
	}

	page, err := s.transactionRepo.GetByCompany(ctx, companyID, filters)
	if err != nil {
		return nil, err
	}

	hasAny := page.TotalItems > 0
	if !hasAny {
		count, err := s.transactionRepo.CountByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		hasAny = count > 0
	}

	return &TransactionList{PaginatedTransactions: page, HasTransactions: hasAny}, nil
}

// GetTransaction retrieves a transaction within a company
func (s *TransactionService) GetTransaction(ctx context.Context, companyID, id uuid.UUID) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, companyID, id)
}

// UpdateTransaction edits a single row. Installment fields are kept as they are.
func (s *TransactionService) UpdateTransaction(ctx context.Context, companyID, id uuid.UUID, input UpdateTransactionInput) (*domain.Transaction, error) {
	existing, err := s.transactionRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	candidate := *existing
	candidate.Description = strings.TrimSpace(input.Description)
	candidate.Amount = input.Amount
	candidate.Date = input.Date
	candidate.Type = input.Type
	candidate.ProjectID = input.ProjectID
	candidate.CategoryID = input.CategoryID
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	category, project, err := s.references(ctx, companyID, candidate.Type, candidate.CategoryID, candidate.ProjectID)
	if err != nil {
		return nil, err
	}

	updated, err := s.transactionRepo.Update(ctx, companyID, id, &domain.UpdateTransactionData{
		Description: candidate.Description,
		Amount:      candidate.Amount,
		Date:        candidate.Date,
		Type:        candidate.Type,
		ProjectID:   candidate.ProjectID,
		CategoryID:  candidate.CategoryID,
	})
	if err != nil {
		log.Error().Err(err).Str("transaction_id", id.String()).Msg("Failed to update transaction")
		return nil, err
	}
	attachNames([]*domain.Transaction{updated}, category, project)

	s.publishEvent(companyID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// DeleteTransaction deletes one row. Other installments of its group are kept.
func (s *TransactionService) DeleteTransaction(ctx context.Context, companyID, id uuid.UUID) error {
	existing, err := s.transactionRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.Delete(ctx, companyID, id); err != nil {
		return err
	}

	s.publishEvent(companyID, websocket.TransactionDeleted(map[string]interface{}{
		"id":                 id,
		"installmentGroupId": existing.InstallmentGroupID,
	}))
	return nil
}

// ListInstallmentGroup returns the remaining rows of an installment group, in order
func (s *TransactionService) ListInstallmentGroup(ctx context.Context, companyID, groupID uuid.UUID) ([]*domain.Transaction, error) {
	rows, err := s.transactionRepo.GetByInstallmentGroup(ctx, companyID, groupID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrInstallmentGroupMissing
	}
	return rows, nil
}
