package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID        uuid.UUID `json:"id"`
	Auth0ID   string    `json:"auth0Id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CompanyID uuid.UUID `json:"companyId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity is what the identity provider tells us about the caller
type Identity struct {
	Subject     string
	Email       string
	Name        string
	CompanyName string
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByAuth0ID(ctx context.Context, auth0ID string) (*User, error)
	// CreateWithCompany inserts the company and its first user atomically
	CreateWithCompany(ctx context.Context, company *Company, user *User) (*User, *Company, error)
}
