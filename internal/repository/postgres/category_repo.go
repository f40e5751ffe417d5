package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `id, company_id, name, type, created_at, updated_at`

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		c      domain.Category
		txType string
	)
	if err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &txType, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	c.Type = domain.TransactionType(txType)
	return &c, nil
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	created, err := scanCategory(r.pool.QueryRow(ctx,
		`INSERT INTO categories (company_id, name, type) VALUES ($1, $2, $3) RETURNING `+categoryColumns,
		uuidToPg(category.CompanyID), category.Name, string(category.Type),
	))
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryAlreadyExists
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return created, nil
}

// GetByID retrieves a category within a company
func (r *CategoryRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Category, error) {
	return scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND company_id = $2`,
		uuidToPg(id), uuidToPg(companyID),
	))
}

// GetByName looks a category up by case-insensitive name within one type
func (r *CategoryRepository) GetByName(ctx context.Context, companyID uuid.UUID, name string, txType domain.TransactionType) (*domain.Category, error) {
	return scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE company_id = $1 AND type = $2 AND LOWER(name) = LOWER($3)`,
		uuidToPg(companyID), string(txType), name,
	))
}

// GetAllByCompany returns categories ordered by name, optionally of one type
func (r *CategoryRepository) GetAllByCompany(ctx context.Context, companyID uuid.UUID, txType *domain.TransactionType) ([]*domain.Category, error) {
	var typeFilter *string
	if txType != nil {
		s := string(*txType)
		typeFilter = &s
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE company_id = $1 AND ($2::text IS NULL OR type = $2)
		ORDER BY name, id`,
		uuidToPg(companyID), stringPtrToPgText(typeFilter),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Update renames a category and sets its type
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	updated, err := scanCategory(r.pool.QueryRow(ctx, `
		UPDATE categories SET name = $3, type = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING `+categoryColumns,
		uuidToPg(category.ID), uuidToPg(category.CompanyID), category.Name, string(category.Type),
	))
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryAlreadyExists
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a category; categories referenced by transactions are rejected
func (r *CategoryRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND company_id = $2`,
		uuidToPg(id), uuidToPg(companyID))
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.ErrCategoryInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// HasTransactions reports whether any transaction references the category
func (r *CategoryRepository) HasTransactions(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE category_id = $1 AND company_id = $2)`,
		uuidToPg(id), uuidToPg(companyID),
	).Scan(&exists)
	return exists, err
}
