package refreshtokens

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_ConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Create(ctx, 1, "tok", time.Now().Add(time.Hour)))

	const n = 32
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Consume(ctx, "tok"); err == nil {
				wins.Add(1)
			} else {
				assert.ErrorIs(t, err, common.ErrorNotFound)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 0, r.Len())
}

func TestMemoryRepository_ConsumeReturnsExpiredRows(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	past := time.Now().Add(-time.Minute)
	require.NoError(t, r.Create(ctx, 1, "old", past))

	rt, err := r.Consume(ctx, "old")
	require.NoError(t, err)
	assert.True(t, rt.Expired(time.Now()))

	_, err = r.Consume(ctx, "old")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_DeleteByUserID(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	exp := time.Now().Add(time.Hour)
	require.NoError(t, r.Create(ctx, 1, "a", exp))
	require.NoError(t, r.Create(ctx, 1, "b", exp))
	require.NoError(t, r.Create(ctx, 2, "c", exp))

	n, err := r.DeleteByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, r.Len())

	_, err = r.Consume(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryRepository_CreateRejectsDuplicateToken(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	require.NoError(t, r.Create(ctx, 1, "dup", time.Now()))
	assert.Error(t, r.Create(ctx, 2, "dup", time.Now()))
}
