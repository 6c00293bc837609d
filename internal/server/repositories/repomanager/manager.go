// Package repomanager vends repositories for a storage backend and owns the
// backend's lifecycle (migrations, transactions, health, shutdown).
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/hugmood/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/hugmood/internal/server/repositories/users"
)

// Repositories is the set of repositories bound to one handle, either the
// pool or a transaction.
type Repositories interface {
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
}

type RepositoryManager interface {
	Repositories

	RunMigrations(ctx context.Context) error

	// WithTx runs fn with repositories bound to a single transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error

	Ping(ctx context.Context) error
	Close() error
}
