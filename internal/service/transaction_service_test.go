package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transactionFixture struct {
	svc       *TransactionService
	txRepo    *testutil.MockTransactionRepository
	publisher *testutil.MockEventPublisher
	companyID uuid.UUID
	labor     *domain.Category
	sales     *domain.Category
	tower     *domain.Project
}

func newTransactionFixture() *transactionFixture {
	txRepo := testutil.NewMockTransactionRepository()
	projectRepo := testutil.NewMockProjectRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	publisher := testutil.NewMockEventPublisher()
	companyID := uuid.New()

	labor := &domain.Category{ID: uuid.New(), CompanyID: companyID, Name: "Labor", Type: domain.TransactionTypeExpense}
	sales := &domain.Category{ID: uuid.New(), CompanyID: companyID, Name: "Sales", Type: domain.TransactionTypeIncome}
	categoryRepo.AddCategory(labor)
	categoryRepo.AddCategory(sales)
	tower := &domain.Project{ID: uuid.New(), CompanyID: companyID, Name: "Tower"}
	projectRepo.AddProject(tower)

	svc := NewTransactionService(txRepo, projectRepo, categoryRepo)
	svc.SetEventPublisher(publisher)

	return &transactionFixture{
		svc:       svc,
		txRepo:    txRepo,
		publisher: publisher,
		companyID: companyID,
		labor:     labor,
		sales:     sales,
		tower:     tower,
	}
}

func (f *transactionFixture) expenseInput(amount string, installments int) CreateTransactionInput {
	return CreateTransactionInput{
		Description:  "Formwork crew",
		Amount:       decimal.RequireFromString(amount),
		Date:         time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Type:         domain.TransactionTypeExpense,
		ProjectID:    &f.tower.ID,
		CategoryID:   f.labor.ID,
		Installments: installments,
	}
}

func TestCreateTransaction_Single(t *testing.T) {
	f := newTransactionFixture()

	rows, err := f.svc.CreateTransaction(context.Background(), f.companyID, f.expenseInput("250.00", 0))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].InstallmentGroupID)
	assert.Equal(t, "Labor", *rows[0].CategoryName)
	assert.Equal(t, "Tower", *rows[0].ProjectName)
	assert.Equal(t, 0, f.txRepo.BatchCalls)
	assert.Equal(t, []string{"transaction.created"}, f.publisher.Types())
}

func TestCreateTransaction_SplitIntoInstallments(t *testing.T) {
	f := newTransactionFixture()
	groupID := uuid.New()
	f.svc.newGroupID = fixedGroupID(groupID)

	rows, err := f.svc.CreateTransaction(context.Background(), f.companyID, f.expenseInput("1200", 3))

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, f.txRepo.BatchCalls)
	assert.Len(t, f.txRepo.Transactions, 3)

	wantDates := []string{"2024-01-31", "2024-03-02", "2024-03-31"}
	for i, row := range rows {
		assert.Equal(t, groupID, *row.InstallmentGroupID)
		assert.Equal(t, int32(i+1), *row.InstallmentNumber)
		assert.Equal(t, int32(3), *row.TotalInstallments)
		assert.Equal(t, "400.00", row.Amount.StringFixed(2))
		assert.Equal(t, wantDates[i], row.Date.Format("2006-01-02"))
		assert.Equal(t, "Tower", *row.ProjectName)
	}
	assert.Equal(t, "Formwork crew (2/3)", rows[1].Description)
	assert.Equal(t, []string{"installment_group.created"}, f.publisher.Types())
}

func TestCreateTransaction_BatchFailurePersistsNothing(t *testing.T) {
	f := newTransactionFixture()
	f.txRepo.BatchErr = errors.New("insert failed")

	_, err := f.svc.CreateTransaction(context.Background(), f.companyID, f.expenseInput("900", 3))

	assert.Error(t, err)
	assert.Empty(t, f.txRepo.Transactions)
	assert.Empty(t, f.publisher.Types())
}

func TestCreateTransaction_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *transactionFixture, in *CreateTransactionInput)
		wantErr error
	}{
		{"too many installments", func(_ *transactionFixture, in *CreateTransactionInput) { in.Installments = 121 }, domain.ErrInstallmentsOutOfRange},
		{"negative installments", func(_ *transactionFixture, in *CreateTransactionInput) { in.Installments = -1 }, domain.ErrInstallmentsOutOfRange},
		{"zero amount", func(_ *transactionFixture, in *CreateTransactionInput) { in.Amount = decimal.Zero }, domain.ErrInvalidAmount},
		{"installment rounds to zero", func(_ *transactionFixture, in *CreateTransactionInput) {
			in.Amount = decimal.RequireFromString("0.01")
			in.Installments = 3
		}, domain.ErrInstallmentAmountTooSmall},
		{"blank description", func(_ *transactionFixture, in *CreateTransactionInput) { in.Description = "  " }, domain.ErrDescriptionRequired},
		{"category type mismatch", func(f *transactionFixture, in *CreateTransactionInput) { in.CategoryID = f.sales.ID }, domain.ErrCategoryTypeMismatch},
		{"unknown category", func(_ *transactionFixture, in *CreateTransactionInput) { in.CategoryID = uuid.New() }, domain.ErrCategoryNotFound},
		{"unknown project", func(_ *transactionFixture, in *CreateTransactionInput) {
			id := uuid.New()
			in.ProjectID = &id
		}, domain.ErrProjectNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransactionFixture()
			in := f.expenseInput("100", 2)
			tt.mutate(f, &in)

			_, err := f.svc.CreateTransaction(context.Background(), f.companyID, in)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.txRepo.Transactions)
		})
	}
}

func TestCreateTransaction_SmallestSplit(t *testing.T) {
	f := newTransactionFixture()

	// 0.04 / 3 rounds to 0.01, still positive
	rows, err := f.svc.CreateTransaction(context.Background(), f.companyID, f.expenseInput("0.04", 3))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.True(t, row.Amount.IsPositive())
		assert.Equal(t, "0.01", row.Amount.StringFixed(2))
	}

	_, err = f.svc.CreateTransaction(context.Background(), f.companyID, f.expenseInput("0.01", 3))
	assert.ErrorIs(t, err, domain.ErrInstallmentAmountTooSmall)
	assert.Len(t, f.txRepo.Transactions, 3)
	assert.Equal(t, 1, f.txRepo.BatchCalls)
}

func TestCreateTransaction_OtherCompanyCategory(t *testing.T) {
	f := newTransactionFixture()

	_, err := f.svc.CreateTransaction(context.Background(), uuid.New(), f.expenseInput("100", 1))

	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestUpdateTransaction_KeepsInstallmentFields(t *testing.T) {
	f := newTransactionFixture()
	rows, err := f.svc.CreateTransaction(context.Background(), f.companyID, f.expenseInput("300", 3))
	require.NoError(t, err)
	target := rows[1]
	groupID := *target.InstallmentGroupID

	updated, err := f.svc.UpdateTransaction(context.Background(), f.companyID, target.ID, UpdateTransactionInput{
		Description: "Formwork crew, overtime",
		Amount:      decimal.RequireFromString("150"),
		Date:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Type:        domain.TransactionTypeExpense,
		CategoryID:  f.labor.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "150.00", updated.Amount.StringFixed(2))
	assert.Nil(t, updated.ProjectID)
	assert.Equal(t, groupID, *updated.InstallmentGroupID)
	assert.Equal(t, int32(2), *updated.InstallmentNumber)

	// siblings untouched
	assert.Equal(t, "100.00", rows[0].Amount.StringFixed(2))
	assert.Equal(t, "transaction.updated", f.publisher.Types()[1])
}

func TestUpdateTransaction_TypeMismatch(t *testing.T) {
	f := newTransactionFixture()
	rows, err := f.svc.CreateTransaction(context.Background(), f.companyID, f.expenseInput("300", 1))
	require.NoError(t, err)

	_, err = f.svc.UpdateTransaction(context.Background(), f.companyID, rows[0].ID, UpdateTransactionInput{
		Description: "Now income",
		Amount:      decimal.RequireFromString("300"),
		Date:        rows[0].Date,
		Type:        domain.TransactionTypeIncome,
		CategoryID:  f.labor.ID,
	})

	assert.ErrorIs(t, err, domain.ErrCategoryTypeMismatch)
}

func TestDeleteTransaction_OnlyThatRow(t *testing.T) {
	f := newTransactionFixture()
	rows, err := f.svc.CreateTransaction(context.Background(), f.companyID, f.expenseInput("300", 3))
	require.NoError(t, err)
	groupID := *rows[0].InstallmentGroupID

	require.NoError(t, f.svc.DeleteTransaction(context.Background(), f.companyID, rows[0].ID))

	remaining, err := f.svc.ListInstallmentGroup(context.Background(), f.companyID, groupID)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, int32(2), *remaining[0].InstallmentNumber)

	last := f.publisher.Events[len(f.publisher.Events)-1]
	assert.Equal(t, "transaction.deleted", last.Event.Type)
	assert.Equal(t, f.companyID, last.CompanyID)

	err = f.svc.DeleteTransaction(context.Background(), f.companyID, rows[0].ID)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestListInstallmentGroup_Missing(t *testing.T) {
	f := newTransactionFixture()

	_, err := f.svc.ListInstallmentGroup(context.Background(), f.companyID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrInstallmentGroupMissing)
}

func TestListTransactions_Pagination(t *testing.T) {
	f := newTransactionFixture()
	_, err := f.svc.CreateTransaction(context.Background(), f.companyID, f.expenseInput("2500", 25))
	require.NoError(t, err)

	list, err := f.svc.ListTransactions(context.Background(), f.companyID, &domain.TransactionFilters{Page: 2})

	require.NoError(t, err)
	assert.Equal(t, int32(domain.DefaultPageSize), list.PageSize)
	assert.Equal(t, int64(25), list.TotalItems)
	assert.Equal(t, int32(2), list.TotalPages)
	assert.Len(t, list.Data, 5)
	assert.True(t, list.HasTransactions)

	capped, err := f.svc.ListTransactions(context.Background(), f.companyID, &domain.TransactionFilters{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, int32(domain.MaxPageSize), capped.PageSize)
}

func TestListTransactions_HasTransactionsOutsideFilter(t *testing.T) {
	f := newTransactionFixture()
	_, err := f.svc.CreateTransaction(context.Background(), f.companyID, f.expenseInput("100", 1))
	require.NoError(t, err)

	income := domain.TransactionTypeIncome
	list, err := f.svc.ListTransactions(context.Background(), f.companyID, &domain.TransactionFilters{Type: &income})
	require.NoError(t, err)
	assert.Empty(t, list.Data)
	assert.True(t, list.HasTransactions)

	empty, err := f.svc.ListTransactions(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.False(t, empty.HasTransactions)
}

func TestListTransactions_InvalidType(t *testing.T) {
	f := newTransactionFixture()
	bad := domain.TransactionType("TRANSFER")

	_, err := f.svc.ListTransactions(context.Background(), f.companyID, &domain.TransactionFilters{Type: &bad})

	assert.ErrorIs(t, err, domain.ErrInvalidTransactionType)
}
