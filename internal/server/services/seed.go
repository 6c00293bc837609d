package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/server/credentials"
)

// TestUser is the development account created when seeding is enabled.
var TestUser = credentials.NewCredential{
	Username:    "testuser",
	Email:       "test@example.com",
	Password:    "password123",
	DisplayName: "Test User",
}

// SeedTestUser creates TestUser unless it already exists.
func (s *SessionService) SeedTestUser(ctx context.Context) error {
	_, err := s.store.CreateCredential(ctx, TestUser)
	if err == nil {
		s.logger.Info(ctx, "seeded test user", "username", TestUser.Username)
		return nil
	}
	if errors.Is(err, common.ErrDuplicateUsername) || errors.Is(err, common.ErrDuplicateEmail) {
		return nil
	}
	return err
}
