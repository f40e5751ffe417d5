package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	transactionColumns = `t.id, t.company_id, t.description, t.amount, t.date, t.type,
		t.project_id, t.category_id, t.installment_group_id, t.installment_number, t.total_installments,
		t.created_at, t.updated_at, p.name, c.name`

	transactionJoins = `LEFT JOIN projects p ON p.id = t.project_id
		LEFT JOIN categories c ON c.id = t.category_id`

	insertTransactionSQL = `
		WITH t AS (
			INSERT INTO transactions (company_id, description, amount, date, type, project_id, category_id,
				installment_group_id, installment_number, total_installments)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING *
		)
		SELECT ` + transactionColumns + ` FROM t ` + transactionJoins
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t                         domain.Transaction
		amount                    pgtype.Numeric
		date                      pgtype.Date
		txType                    string
		projectID, groupID        pgtype.UUID
		installmentNumber, total  pgtype.Int4
		projectName, categoryName pgtype.Text
	)
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.Description, &amount, &date, &txType,
		&projectID, &t.CategoryID, &groupID, &installmentNumber, &total,
		&t.CreatedAt, &t.UpdatedAt, &projectName, &categoryName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	t.Amount = pgNumericToDecimal(amount)
	t.Date = date.Time
	t.Type = domain.TransactionType(txType)
	t.ProjectID = pgToUUIDPtr(projectID)
	t.InstallmentGroupID = pgToUUIDPtr(groupID)
	t.InstallmentNumber = pgInt4ToPtr(installmentNumber)
	t.TotalInstallments = pgInt4ToPtr(total)
	t.ProjectName = pgTextToStringPtr(projectName)
	t.CategoryName = pgTextToStringPtr(categoryName)
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()

	result := make([]*domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func insertArgs(t *domain.Transaction) ([]any, error) {
	amount, err := decimalToPgNumeric(t.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	return []any{
		uuidToPg(t.CompanyID),
		t.Description,
		amount,
		timeToPgDate(t.Date),
		string(t.Type),
		uuidPtrToPg(t.ProjectID),
		uuidToPg(t.CategoryID),
		uuidPtrToPg(t.InstallmentGroupID),
		int32PtrToPg(t.InstallmentNumber),
		int32PtrToPg(t.TotalInstallments),
	}, nil
}

// translateWriteError maps constraint violations of an insert or update to domain errors
func translateWriteError(err error) error {
	switch {
	case isPgForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	case isPgCheckViolation(err):
		// amount > 0 and installment numbering are enforced again by the schema
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return err
}

// Create creates a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	args, err := insertArgs(transaction)
	if err != nil {
		return nil, err
	}
	created, err := scanTransaction(r.pool.QueryRow(ctx, insertTransactionSQL, args...))
	if err != nil {
		return nil, translateWriteError(err)
	}
	return created, nil
}

// CreateBatch inserts every row inside one database transaction. Any failure rolls
// back the whole batch.
func (r *TransactionRepository) CreateBatch(ctx context.Context, transactions []*domain.Transaction) ([]*domain.Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, t := range transactions {
		args, err := insertArgs(t)
		if err != nil {
			return nil, err
		}
		batch.Queue(insertTransactionSQL, args...)
	}

	results := tx.SendBatch(ctx, batch)
	created := make([]*domain.Transaction, 0, len(transactions))
	for range transactions {
		t, err := scanTransaction(results.QueryRow())
		if err != nil {
			results.Close()
			return nil, translateWriteError(err)
		}
		created = append(created, t)
	}
	if err := results.Close(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a transaction within a company
func (r *TransactionRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Transaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions t `+transactionJoins+`
		WHERE t.id = $1 AND t.company_id = $2`,
		uuidToPg(id), uuidToPg(companyID),
	))
}

// buildTransactionFilter turns list filters into a WHERE clause and its arguments
func buildTransactionFilter(companyID uuid.UUID, filters *domain.TransactionFilters) (string, []any) {
	conditions := []string{"t.company_id = $1"}
	args := []any{uuidToPg(companyID)}

	add := func(condition string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filters != nil {
		if filters.StartDate != nil {
			add("t.date >= $%d", timeToPgDate(*filters.StartDate))
		}
		if filters.EndDate != nil {
			add("t.date <= $%d", timeToPgDate(*filters.EndDate))
		}
		if filters.Type != nil {
			add("t.type = $%d", string(*filters.Type))
		}
		if filters.ProjectID != nil {
			add("t.project_id = $%d", uuidToPg(*filters.ProjectID))
		}
		if filters.CategoryID != nil {
			add("t.category_id = $%d", uuidToPg(*filters.CategoryID))
		}
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// GetByCompany returns one page of transactions matching the filters, newest first
func (r *TransactionRepository) GetByCompany(ctx context.Context, companyID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	where, args := buildTransactionFilter(companyID, filters)

	var totalItems int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t `+where, args...).Scan(&totalItems); err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	page, pageSize := filters.Page, filters.PageSize
	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s FROM transactions t %s %s
		ORDER BY t.date DESC, t.created_at DESC, t.id
		LIMIT $%d OFFSET $%d`, transactionColumns, transactionJoins, where, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, append(args, pageSize, offset)...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	data, err := collectTransactions(rows)
	if err != nil {
		return nil, err
	}

	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	return &domain.PaginatedTransactions{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// GetAllByCompany returns every transaction of the company ordered by date
func (r *TransactionRepository) GetAllByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions t `+transactionJoins+`
		WHERE t.company_id = $1
		ORDER BY t.date, t.created_at, t.id`,
		uuidToPg(companyID),
	)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// GetByInstallmentGroup returns the remaining rows of a group ordered by installment number
func (r *TransactionRepository) GetByInstallmentGroup(ctx context.Context, companyID, groupID uuid.UUID) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions t `+transactionJoins+`
		WHERE t.company_id = $1 AND t.installment_group_id = $2
		ORDER BY t.installment_number`,
		uuidToPg(companyID), uuidToPg(groupID),
	)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// CountByCompany counts every transaction of the company
func (r *TransactionRepository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE company_id = $1`, uuidToPg(companyID)).Scan(&count)
	return count, err
}

// Update edits one row; installment fields are left as stored
func (r *TransactionRepository) Update(ctx context.Context, companyID, id uuid.UUID, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(data.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	updated, err := scanTransaction(r.pool.QueryRow(ctx, `
		WITH t AS (
			UPDATE transactions
			SET description = $3, amount = $4, date = $5, type = $6, project_id = $7, category_id = $8,
				updated_at = NOW()
			WHERE id = $1 AND company_id = $2
			RETURNING *
		)
		SELECT `+transactionColumns+` FROM t `+transactionJoins,
		uuidToPg(id),
		uuidToPg(companyID),
		data.Description,
		amount,
		timeToPgDate(data.Date),
		string(data.Type),
		uuidPtrToPg(data.ProjectID),
		uuidToPg(data.CategoryID),
	))
	if err != nil {
		return nil, translateWriteError(err)
	}
	return updated, nil
}

// Delete removes a single row; other installments of its group are kept
func (r *TransactionRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND company_id = $2`,
		uuidToPg(id), uuidToPg(companyID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
