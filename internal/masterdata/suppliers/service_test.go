package suppliers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	balances map[int64]float64
	reads    int
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Supplier, error) {
	return Supplier{ID: id, WalletBalance: r.balances[id]}, nil
}

func (r *memoryRepo) WalletBalance(ctx context.Context, id int64) (float64, error) {
	r.reads++
	return r.balances[id], nil
}

func TestWalletBalanceCaching(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &memoryRepo{balances: map[int64]float64{3: 450.75}}
	svc := NewService(repo, client, time.Minute, nil)
	ctx := context.Background()

	balance, err := svc.WalletBalance(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 450.75, balance)
	require.Equal(t, 1, repo.reads)

	// Second read is served from the cache.
	balance, err = svc.WalletBalance(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 450.75, balance)
	require.Equal(t, 1, repo.reads)

	// Invalidation forces a refresh.
	require.NoError(t, svc.InvalidateCredit(ctx, 3))
	repo.balances[3] = 200
	balance, err = svc.WalletBalance(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 200.0, balance)
	require.Equal(t, 2, repo.reads)
}

func TestWalletBalanceCacheExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := &memoryRepo{balances: map[int64]float64{5: 90}}
	svc := NewService(repo, client, time.Second, nil)
	ctx := context.Background()

	_, err := svc.WalletBalance(ctx, 5)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	repo.balances[5] = 120
	balance, err := svc.WalletBalance(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 120.0, balance)
}

func TestWalletBalanceWithoutCache(t *testing.T) {
	repo := &memoryRepo{balances: map[int64]float64{1: 10}}
	svc := NewService(repo, nil, 0, nil)

	balance, err := svc.WalletBalance(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 10.0, balance)
}
