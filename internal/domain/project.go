package domain

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrProjectInUse          = errors.New("project is referenced by transactions")
	ErrProjectDatesInvalid   = errors.New("project end date must not be before start date")
	ErrProjectDescriptionLen = errors.New("project description must be 1000 characters or less")
)

const (
	MaxProjectNameLength        = 255
	MaxProjectDescriptionLength = 1000
)

// Project is a construction site or contract that transactions can be attributed to
type Project struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   uuid.UUID  `json:"companyId"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (p *Project) Validate() error {
	if p.Name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(p.Name) > MaxProjectNameLength {
		return ErrNameTooLong
	}
	if p.Description != nil && utf8.RuneCountInString(*p.Description) > MaxProjectDescriptionLength {
		return ErrProjectDescriptionLen
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return ErrProjectDatesInvalid
	}
	return nil
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) (*Project, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*Project, error)
	// GetAllByCompany returns projects newest first
	GetAllByCompany(ctx context.Context, companyID uuid.UUID) ([]*Project, error)
	Update(ctx context.Context, project *Project) (*Project, error)
	// Delete returns ErrProjectInUse when transactions still reference the project
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}
