// Package users declares the credential repository and its PostgreSQL and
// in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/hugmood/internal/server/models"
)

// Repository stores credentials. Uniqueness of username and email is
// enforced by the implementation, never by callers checking first.
type Repository interface {
	// Create inserts u and returns the stored row. Violations surface as
	// common.ErrDuplicateUsername or common.ErrDuplicateEmail.
	Create(ctx context.Context, u *models.NewUser) (*models.User, error)

	// GetByID, GetByEmail and GetByUsername return common.ErrorNotFound
	// when there is no match.
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdatePassword replaces the stored hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
