package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/server/models"
)

// MemoryRepository keeps refresh tokens in process memory. A single mutex
// makes Consume atomic the same way DELETE ... RETURNING is in Postgres.
type MemoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	byToken map[string]*models.RefreshToken
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byToken: make(map[string]*models.RefreshToken),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) Create(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byToken[token]; ok {
		return common.WrapError(common.KindInternal, "refresh token collision", nil)
	}
	r.nextID++
	r.byToken[token] = &models.RefreshToken{
		ID:        r.nextID,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: r.now(),
	}
	return nil
}

func (r *MemoryRepository) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.byToken, token)
	return rt, nil
}

func (r *MemoryRepository) DeleteByUserID(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for tok, rt := range r.byToken {
		if rt.UserID == userID {
			delete(r.byToken, tok)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored tokens.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byToken)
}
