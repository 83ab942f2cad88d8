package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"marketplace-api/internal/domain"
	"marketplace-api/pkg/logger"
	"marketplace-api/pkg/redis"
)

// CachedUserRepository puts a Redis read-through cache in front of FindByID,
// which the authorization guard calls on every request. Update and Delete
// invalidate the entry so a deleted account stops resolving immediately.
//
// An invalidation that fails is retried once. If it still fails the id is
// marked stale in process: FindByID bypasses the cache for it and keeps
// retrying the delete until Redis accepts it.
//
// Cached identities never include the password hash. Sign-in reads through
// FindByEmailOrUsername, which always hits the store.
type CachedUserRepository struct {
	store CredentialStore
	cache *redis.Client
	ttl   time.Duration
	log   *logger.Logger

	mu    sync.Mutex
	stale map[int64]struct{}
}

type cachedIdentity struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	ProfileImageRef string    `json:"profileImageRef"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func NewCachedUserRepository(store CredentialStore, cache *redis.Client, ttl time.Duration, log *logger.Logger) *CachedUserRepository {
	if ttl <= 0 {
		ttl = redis.TTLIdentity
	}
	return &CachedUserRepository{
		store: store,
		cache: cache,
		ttl:   ttl,
		log:   log.Named("identity_cache"),
		stale: make(map[int64]struct{}),
	}
}

func (r *CachedUserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.Identity, error) {
	return r.store.FindByEmailOrUsername(ctx, email, username)
}

func (r *CachedUserRepository) Create(ctx context.Context, fields domain.NewIdentity) (*domain.Identity, error) {
	return r.store.Create(ctx, fields)
}

// FindByID serves from cache when possible. Cache failures fall through to the store.
func (r *CachedUserRepository) FindByID(ctx context.Context, id int64) (*domain.Identity, error) {
	if r.isStale(id) && !r.retryInvalidate(ctx, id) {
		return r.store.FindByID(ctx, id)
	}

	key := r.cache.KeyBuilder.KeyIdentity(id)

	raw, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cached cachedIdentity
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached.toIdentity(), nil
		}
		r.log.Warn("discarding undecodable identity cache entry", zap.Int64("user_id", id))
	case !errors.Is(err, redis.ErrCacheMiss):
		r.log.Warn("identity cache read failed", zap.Int64("user_id", id), zap.Error(err))
	}

	identity, err := r.store.FindByID(ctx, id)
	if err != nil || identity == nil {
		return identity, err
	}

	payload, err := json.Marshal(fromIdentity(identity))
	if err == nil {
		err = r.cache.Set(ctx, key, payload, r.ttl)
	}
	if err != nil {
		r.log.Warn("identity cache write failed", zap.Int64("user_id", id), zap.Error(err))
	}
	return identity, nil
}

func (r *CachedUserRepository) Update(ctx context.Context, id int64, patch domain.IdentityPatch) (*domain.Identity, error) {
	identity, err := r.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return identity, nil
}

func (r *CachedUserRepository) Delete(ctx context.Context, id int64) (*domain.Identity, error) {
	identity, err := r.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return identity, nil
}

// invalidate drops the cached entry, retrying once before marking the id stale.
// The delete runs detached from the request so a cancelled caller cannot skip it.
func (r *CachedUserRepository) invalidate(ctx context.Context, id int64) {
	ctx = context.WithoutCancel(ctx)
	key := r.cache.KeyBuilder.KeyIdentity(id)

	err := r.cache.Delete(ctx, key)
	if err != nil {
		err = r.cache.Delete(ctx, key)
	}
	if err != nil {
		r.log.Error("identity cache invalidation failed, bypassing cache for id", zap.Int64("user_id", id), zap.Error(err))
		r.markStale(id)
	}
}

// retryInvalidate clears a stale entry and reports whether the cache is usable again for id.
func (r *CachedUserRepository) retryInvalidate(ctx context.Context, id int64) bool {
	if err := r.cache.Delete(context.WithoutCancel(ctx), r.cache.KeyBuilder.KeyIdentity(id)); err != nil {
		r.log.Warn("stale identity cache entry still present", zap.Int64("user_id", id), zap.Error(err))
		return false
	}
	r.mu.Lock()
	delete(r.stale, id)
	r.mu.Unlock()
	return true
}

func (r *CachedUserRepository) markStale(id int64) {
	r.mu.Lock()
	r.stale[id] = struct{}{}
	r.mu.Unlock()
}

func (r *CachedUserRepository) isStale(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.stale[id]
	return ok
}

func fromIdentity(id *domain.Identity) cachedIdentity {
	return cachedIdentity{
		ID:              id.ID,
		Email:           id.Email,
		Username:        id.Username,
		ProfileImageRef: id.ProfileImageRef,
		CreatedAt:       id.CreatedAt,
		UpdatedAt:       id.UpdatedAt,
	}
}

func (c cachedIdentity) toIdentity() *domain.Identity {
	return &domain.Identity{
		ID:              c.ID,
		Email:           c.Email,
		Username:        c.Username,
		ProfileImageRef: c.ProfileImageRef,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
