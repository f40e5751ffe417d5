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

const projectColumns = `id, company_id, name, description, start_date, end_date, created_at, updated_at`

// ProjectRepository implements domain.ProjectRepository using PostgreSQL
type ProjectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p           domain.Project
		description pgtype.Text
		start, end  pgtype.Date
	)
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &description, &start, &end, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	p.Description = pgTextToStringPtr(description)
	p.StartDate = pgDateToTimePtr(start)
	p.EndDate = pgDateToTimePtr(end)
	return &p, nil
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	created, err := scanProject(r.pool.QueryRow(ctx, `
		INSERT INTO projects (company_id, name, description, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+projectColumns,
		uuidToPg(project.CompanyID),
		project.Name,
		stringPtrToPgText(project.Description),
		timePtrToPgDate(project.StartDate),
		timePtrToPgDate(project.EndDate),
	))
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return created, nil
}

// GetByID retrieves a project within a company
func (r *ProjectRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Project, error) {
	return scanProject(r.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND company_id = $2`,
		uuidToPg(id), uuidToPg(companyID),
	))
}

// GetAllByCompany returns the company's projects, newest first
func (r *ProjectRepository) GetAllByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE company_id = $1 ORDER BY created_at DESC, id`,
		uuidToPg(companyID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Update replaces the writable fields of a project
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `
		UPDATE projects
		SET name = $3, description = $4, start_date = $5, end_date = $6, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING `+projectColumns,
		uuidToPg(project.ID),
		uuidToPg(project.CompanyID),
		project.Name,
		stringPtrToPgText(project.Description),
		timePtrToPgDate(project.StartDate),
		timePtrToPgDate(project.EndDate),
	))
}

// Delete removes a project. Transactions reference projects with ON DELETE RESTRICT,
// so a referenced project fails with a foreign key violation.
func (r *ProjectRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND company_id = $2`,
		uuidToPg(id), uuidToPg(companyID))
	if err != nil {
		if isPgForeignKeyViolation(err) {
			return domain.ErrProjectInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}
