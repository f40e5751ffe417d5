package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const companyColumns = `id, name, logo_path, created_at, updated_at`

// CompanyRepository implements domain.CompanyRepository using PostgreSQL
type CompanyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

func scanCompany(row rowScanner) (*domain.Company, error) {
	var (
		c        domain.Company
		logoPath pgtype.Text
	)
	if err := row.Scan(&c.ID, &c.Name, &logoPath, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	c.LogoPath = pgTextToStringPtr(logoPath)
	return &c, nil
}

// Create inserts a new company
func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) (*domain.Company, error) {
	return createCompany(ctx, r.pool, company)
}

func createCompany(ctx context.Context, q querier, company *domain.Company) (*domain.Company, error) {
	created, err := scanCompany(q.QueryRow(ctx,
		`INSERT INTO companies (name, logo_path) VALUES ($1, $2) RETURNING `+companyColumns,
		company.Name, stringPtrToPgText(company.LogoPath),
	))
	if err != nil {
		return nil, fmt.Errorf("insert company: %w", err)
	}
	return created, nil
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	return scanCompany(r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, uuidToPg(id)))
}

// UpdateLogoPath points the company at a new logo object
func (r *CompanyRepository) UpdateLogoPath(ctx context.Context, id uuid.UUID, logoPath string) (*domain.Company, error) {
	return scanCompany(r.pool.QueryRow(ctx,
		`UPDATE companies SET logo_path = $2, updated_at = NOW() WHERE id = $1 RETURNING `+companyColumns,
		uuidToPg(id), logoPath,
	))
}
