package credentials

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(repomanager.NewMemoryRepositoryManager(), bcrypt.MinCost)
}

func TestCreateCredential_HashesAndDefaultsDisplayName(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u, err := s.CreateCredential(ctx, NewCredential{Username: "alice", Email: "alice@x.io", Password: "pw1"})
	require.NoError(t, err)

	assert.Equal(t, "alice", u.DisplayName)
	assert.NotEqual(t, "pw1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw1")))

	v, err := s.CreateCredential(ctx, NewCredential{Username: "bob", Email: "bob@x.io", Password: "pw", DisplayName: "Bobby"})
	require.NoError(t, err)
	assert.Equal(t, "Bobby", v.DisplayName)
}

func TestCreateCredential_Duplicates(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.CreateCredential(ctx, NewCredential{Username: "alice", Email: "alice@x.io", Password: "pw1"})
	require.NoError(t, err)

	_, err = s.CreateCredential(ctx, NewCredential{Username: "alice", Email: "other@x.io", Password: "pw"})
	assert.ErrorIs(t, err, common.ErrDuplicateUsername)

	_, err = s.CreateCredential(ctx, NewCredential{Username: "alice2", Email: "alice@x.io", Password: "pw"})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestAuthenticate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.CreateCredential(ctx, NewCredential{Username: "alice", Email: "alice@x.io", Password: "pw1"})
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		u, err := s.Authenticate(ctx, "alice@x.io", "pw1")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
	})

	t.Run("by username", func(t *testing.T) {
		u, err := s.Authenticate(ctx, "alice", "pw1")
		require.NoError(t, err)
		assert.Equal(t, "alice@x.io", u.Email)
	})

	t.Run("wrong password and unknown user are indistinguishable", func(t *testing.T) {
		_, errWrong := s.Authenticate(ctx, "alice@x.io", "nope")
		_, errUnknown := s.Authenticate(ctx, "ghost@x.io", "pw1")
		_, errUnknownName := s.Authenticate(ctx, "ghost", "pw1")

		assert.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknownName, common.ErrInvalidCredentials)
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
	})
}

func TestUpdatePasswordAndRevoke(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u, err := s.CreateCredential(ctx, NewCredential{Username: "alice", Email: "alice@x.io", Password: "pw1"})
	require.NoError(t, err)
	require.NoError(t, s.StoreRefreshToken(ctx, u.ID, "r1", time.Now().Add(time.Hour)))
	require.NoError(t, s.StoreRefreshToken(ctx, u.ID, "r2", time.Now().Add(time.Hour)))

	require.NoError(t, s.UpdatePasswordAndRevoke(ctx, u.ID, "pw2"))

	ok, err := s.VerifyPassword(ctx, u.ID, "pw2")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.VerifyPassword(ctx, u.ID, "pw1")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, tok := range []string{"r1", "r2"} {
		_, err := s.ConsumeRefreshToken(ctx, tok)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	}
}

func TestConsumeRefreshToken_Concurrent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.StoreRefreshToken(ctx, 1, "shared", time.Now().Add(time.Hour)))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ConsumeRefreshToken(ctx, "shared"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestRevokeAllForCredential(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.StoreRefreshToken(ctx, 1, "a", time.Now().Add(time.Hour)))
	require.NoError(t, s.StoreRefreshToken(ctx, 2, "b", time.Now().Add(time.Hour)))

	require.NoError(t, s.RevokeAllForCredential(ctx, 1))

	_, err := s.ConsumeRefreshToken(ctx, "a")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = s.ConsumeRefreshToken(ctx, "b")
	assert.NoError(t, err)
}

func TestGetByID_NotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.GetByID(context.Background(), 404)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
	require.NoError(t, s.Ping(context.Background()))
}
