package suppliers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Service reads supplier data with a short-lived credit cache in front of
// Postgres. Wallet balances change rarely (only when the external ledger
// debits or tops up), so a small TTL keeps payment previews cheap without
// serving stale credit during a transition.
type Service struct {
	repo   Repository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

func NewService(repo Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.Get(ctx, id)
}

// WalletBalance satisfies the lifecycle engine's SupplierPort.
func (s *Service) WalletBalance(ctx context.Context, id int64) (float64, error) {
	key := creditKey(id)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
			if balance, err := strconv.ParseFloat(cached, 64); err == nil {
				return balance, nil
			}
		} else if err != redis.Nil && s.logger != nil {
			s.logger.Warn("supplier credit cache read", slog.Any("error", err))
		}
	}
	// Collapse concurrent misses for the same supplier into one query.
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.repo.WalletBalance(ctx, id)
	})
	if err != nil {
		return 0, err
	}
	balance := v.(float64)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.FormatFloat(balance, 'f', -1, 64), s.ttl).Err(); err != nil && s.logger != nil {
			s.logger.Warn("supplier credit cache write", slog.Any("error", err))
		}
	}
	return balance, nil
}

// InvalidateCredit drops the cached balance, called after the external
// ledger reports a debit.
func (s *Service) InvalidateCredit(ctx context.Context, id int64) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, creditKey(id)).Err()
}

func creditKey(id int64) string {
	return fmt.Sprintf("supplier:credit:%d", id)
}
