package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Company is the tenant boundary: every project, category and transaction belongs to one
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	LogoPath  *string   `json:"logoPath,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CompanyRepository defines the interface for company persistence operations
type CompanyRepository interface {
	Create(ctx context.Context, company *Company) (*Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	UpdateLogoPath(ctx context.Context, id uuid.UUID, logoPath string) (*Company, error)
}
