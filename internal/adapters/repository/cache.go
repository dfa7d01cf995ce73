package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/okian/talentmatch/internal/domain/model"
	"github.com/okian/talentmatch/pkg/logger"
	"github.com/okian/talentmatch/pkg/metrics"
)

// Cache kinds, also used as metric labels.
const (
	cacheKindIndustry    = "industry"
	cacheKindBudgetBand  = "budget_band"
	cacheKindRecommended = "recommended"
)

// CachedRepository puts a Redis read-through cache in front of the reference
// lookups of another repository: industries, budget bands and curated slots.
// Per-talent data is always read from the source. Redis failures fall back
// to the source; unknown references are never cached.
type CachedRepository struct {
	CandidateRepository

	client redis.Cmdable
	group  singleflight.Group
	ttl    time.Duration
	prefix string
	log    logger.Logger
}

var _ CandidateRepository = (*CachedRepository)(nil)

// NewCachedRepository wraps source with a cache held in client.
func NewCachedRepository(source CandidateRepository, client redis.Cmdable, opts ...CacheOption) *CachedRepository {
	c := &CachedRepository{
		CandidateRepository: source,
		client:              client,
		ttl:                 defaultCacheTTL,
		prefix:              defaultCachePrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedRepository) key(kind, id string) string {
	return c.prefix + kind + ":" + strings.ToLower(strings.TrimSpace(id))
}

// FetchIndustry implements CandidateRepository.
func (c *CachedRepository) FetchIndustry(ctx context.Context, name string) (model.Industry, error) {
	return readThrough(ctx, c, cacheKindIndustry, c.key(cacheKindIndustry, name), func(ctx context.Context) (model.Industry, error) {
		return c.CandidateRepository.FetchIndustry(ctx, name)
	})
}

// FetchBudgetBand implements CandidateRepository.
func (c *CachedRepository) FetchBudgetBand(ctx context.Context, name string) (model.BudgetBand, error) {
	return readThrough(ctx, c, cacheKindBudgetBand, c.key(cacheKindBudgetBand, name), func(ctx context.Context) (model.BudgetBand, error) {
		return c.CandidateRepository.FetchBudgetBand(ctx, name)
	})
}

// FetchRecommendedSlots implements CandidateRepository.
func (c *CachedRepository) FetchRecommendedSlots(ctx context.Context, industryID int64) ([]model.TalentID, error) {
	key := c.key(cacheKindRecommended, strconv.FormatInt(industryID, 10))
	return readThrough(ctx, c, cacheKindRecommended, key, func(ctx context.Context) ([]model.TalentID, error) {
		return c.CandidateRepository.FetchRecommendedSlots(ctx, industryID)
	})
}

// Stats forwards the source's counters and marks the cache as enabled.
func (c *CachedRepository) Stats() map[string]interface{} {
	out := map[string]interface{}{}
	if sp, ok := c.CandidateRepository.(interface{ Stats() map[string]interface{} }); ok {
		for k, v := range sp.Stats() {
			out[k] = v
		}
	}
	out["cache"] = "redis"
	out["cacheTTLSeconds"] = int(c.ttl.Seconds())
	return out
}

// Invalidate drops every cached entry under the key prefix.
func (c *CachedRepository) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete cache keys: %w", err)
	}
	return nil
}

func readThrough[T any](ctx context.Context, c *CachedRepository, kind, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		uerr := json.Unmarshal(raw, &v)
		if uerr == nil {
			metrics.RecordCacheHit(kind)
			return v, nil
		}
		c.warn(ctx, "ignoring undecodable cache entry", key, uerr)
	case !errors.Is(err, redis.Nil):
		c.warn(ctx, "cache read failed", key, err)
	}
	metrics.RecordCacheMiss(kind)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, err := load(ctx)
		if err != nil {
			return zero, err
		}
		if data, merr := json.Marshal(v); merr == nil {
			if serr := c.client.Set(ctx, key, data, c.ttl).Err(); serr != nil {
				c.warn(ctx, "cache write failed", key, serr)
			}
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func (c *CachedRepository) warn(ctx context.Context, msg, key string, err error) {
	if c.log != nil {
		c.log.Warn(ctx, msg, logger.String("key", key), logger.Error(err))
	}
}
