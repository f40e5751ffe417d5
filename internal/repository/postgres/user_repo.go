package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const userColumns = `id, auth0_id, email, name, company_id, created_at, updated_at`

// querier is the subset of pgxpool.Pool and pgx.Tx the repositories need
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Auth0ID, &u.Email, &u.Name, &u.CompanyID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByAuth0ID retrieves a user by their Auth0 ID
func (r *UserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE auth0_id = $1`, auth0ID))
}

// CreateWithCompany inserts a company and its first user in one transaction.
// When a concurrent request provisioned the same subject first, the existing
// user and company are returned instead.
func (r *UserRepository) CreateWithCompany(ctx context.Context, company *domain.Company, user *domain.User) (*domain.User, *domain.Company, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	createdCompany, err := createCompany(ctx, tx, company)
	if err != nil {
		return nil, nil, err
	}

	createdUser, err := scanUser(tx.QueryRow(ctx,
		`INSERT INTO users (auth0_id, email, name, company_id) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		user.Auth0ID, user.Email, user.Name, uuidToPg(createdCompany.ID),
	))
	if err != nil {
		if isPgUniqueViolation(err) {
			_ = tx.Rollback(ctx)
			log.Info().Str("auth0_id", user.Auth0ID).Msg("User provisioned concurrently, using existing record")
			return r.existing(ctx, user.Auth0ID)
		}
		return nil, nil, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return createdUser, createdCompany, nil
}

func (r *UserRepository) existing(ctx context.Context, auth0ID string) (*domain.User, *domain.Company, error) {
	user, err := r.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, nil, err
	}
	company, err := scanCompany(r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, uuidToPg(user.CompanyID)))
	if err != nil {
		return nil, nil, err
	}
	return user, company, nil
}
