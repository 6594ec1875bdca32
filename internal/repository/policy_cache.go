package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// PolicyStore is the durable policy source the cache sits in front of.
type PolicyStore interface {
	GetPolicy(ctx context.Context, providerID string) (*models.BookingPolicy, error)
	UpsertPolicy(ctx context.Context, p *models.BookingPolicy) error
}

const policyRetryInterval = time.Minute

// CachedPolicyRepository is a read-through Redis cache over a PolicyStore.
// When Redis fails the repository marks it down and serves straight from the
// store, probing Redis again at most once per retry interval.
type CachedPolicyRepository struct {
	store  PolicyStore
	redis  *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewCachedPolicyRepository(store PolicyStore, rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *CachedPolicyRepository {
	return &CachedPolicyRepository{
		store:  store,
		redis:  rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func policyKey(providerID string) string {
	return "policy:" + providerID
}

// GetPolicy returns the cached policy if present, otherwise loads it from
// the store and backfills the cache.
func (r *CachedPolicyRepository) GetPolicy(ctx context.Context, providerID string) (*models.BookingPolicy, error) {
	if r.cacheAvailable() {
		val, err := r.redis.Get(ctx, policyKey(providerID)).Result()
		switch {
		case err == nil:
			var p models.BookingPolicy
			if jsonErr := json.Unmarshal([]byte(val), &p); jsonErr == nil {
				return &p, nil
			}
			// Corrupt entry: fall through to the store and overwrite it.
		case errors.Is(err, redis.Nil):
			// Cache miss.
		default:
			r.markDown(err)
		}
	}

	p, err := r.store.GetPolicy(ctx, providerID)
	if err != nil {
		return nil, err
	}
	r.writeCache(ctx, providerID, p)
	return p, nil
}

// UpsertPolicy writes through to the store and refreshes the cache entry.
func (r *CachedPolicyRepository) UpsertPolicy(ctx context.Context, p *models.BookingPolicy) error {
	if err := r.store.UpsertPolicy(ctx, p); err != nil {
		return err
	}
	r.writeCache(ctx, p.ProviderID, p)
	return nil
}

func (r *CachedPolicyRepository) writeCache(ctx context.Context, providerID string, p *models.BookingPolicy) {
	if !r.cacheAvailable() {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, policyKey(providerID), data, r.ttl).Err(); err != nil {
		r.markDown(err)
	}
}

func (r *CachedPolicyRepository) cacheAvailable() bool {
	if r.redis == nil {
		return false
	}
	if !r.isDown.Load() {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) < policyRetryInterval {
		return false
	}
	r.lastCheck = time.Now()
	r.isDown.Store(false)
	r.logger.Info().Msg("retrying policy cache")
	return true
}

func (r *CachedPolicyRepository) markDown(err error) {
	if r.isDown.CompareAndSwap(false, true) {
		r.mu.Lock()
		r.lastCheck = time.Now()
		r.mu.Unlock()
		r.logger.Warn().Err(fmt.Errorf("policy cache: %w", err)).Msg("policy cache down, serving from store")
	}
}
