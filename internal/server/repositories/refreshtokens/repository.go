// Package refreshtokens declares the refresh token repository and its
// PostgreSQL and in-memory implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/server/models"
)

// Repository stores issued refresh tokens.
type Repository interface {
	// Create stores token for userID with an absolute expiry.
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error

	// Consume atomically deletes token and returns the row it removed. Of any
	// number of concurrent callers presenting the same token, exactly one
	// gets the row; the rest get common.ErrorNotFound. Expired rows are
	// still returned (and deleted) so the caller can report expiry.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteByUserID revokes every token of userID and reports how many
	// were removed.
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)
}
