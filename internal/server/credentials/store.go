// Package credentials is the credential store: password hashing, identifier
// based authentication and refresh token bookkeeping on top of the
// repositories.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/cryptox"
	"github.com/dmitrijs2005/hugmood/internal/server/models"
	"github.com/dmitrijs2005/hugmood/internal/server/repositories/repomanager"
)

// NewCredential is the registration input after validation.
type NewCredential struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	AvatarURL   *string
}

type Store struct {
	repos      repomanager.RepositoryManager
	bcryptCost int
}

func NewStore(repos repomanager.RepositoryManager, bcryptCost int) *Store {
	return &Store{repos: repos, bcryptCost: bcryptCost}
}

// CreateCredential hashes the password and inserts the user. The display
// name defaults to the username.
func (s *Store) CreateCredential(ctx context.Context, in NewCredential) (*models.User, error) {
	hash, err := cryptox.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = in.Username
	}

	return s.repos.Users().Create(ctx, &models.NewUser{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  displayName,
		AvatarURL:    in.AvatarURL,
	})
}

// Authenticate resolves identifier as an email when it contains '@' and as a
// username otherwise, then checks the password. Unknown identifiers and
// wrong passwords both yield common.ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.repos.Users().GetByEmail(ctx, identifier)
	} else {
		user, err = s.repos.Users().GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.BurnComparison(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := cryptox.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

// GetByID returns common.ErrorNotFound when the credential does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repos.Users().GetByID(ctx, id)
}

// VerifyPassword reports whether password matches the stored hash of id.
func (s *Store) VerifyPassword(ctx context.Context, id int64, password string) (bool, error) {
	user, err := s.repos.Users().GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return cryptox.CheckPassword(user.PasswordHash, password)
}

// UpdatePasswordAndRevoke replaces the password hash and deletes every
// refresh token of id in one transaction.
func (s *Store) UpdatePasswordAndRevoke(ctx context.Context, id int64, newPassword string) error {
	hash, err := cryptox.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repos.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		if err := repos.Users().UpdatePassword(ctx, id, hash); err != nil {
			return err
		}
		_, err := repos.RefreshTokens().DeleteByUserID(ctx, id)
		return err
	})
}

func (s *Store) StoreRefreshToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	return s.repos.RefreshTokens().Create(ctx, id, token, expiresAt)
}

// ConsumeRefreshToken removes token and returns its row. Of concurrent
// callers presenting the same token exactly one succeeds; the others get
// common.ErrorNotFound.
func (s *Store) ConsumeRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return s.repos.RefreshTokens().Consume(ctx, token)
}

// RevokeAllForCredential deletes every refresh token of id.
func (s *Store) RevokeAllForCredential(ctx context.Context, id int64) error {
	_, err := s.repos.RefreshTokens().DeleteByUserID(ctx, id)
	return err
}

// Ping checks the backing storage.
func (s *Store) Ping(ctx context.Context) error {
	return s.repos.Ping(ctx)
}
