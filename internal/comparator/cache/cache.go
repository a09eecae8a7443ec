// Package cache memoises comparison results. A bounded in-process LRU is
// always consulted first; a Redis tier, when configured, is shared between
// replicas. Concurrent misses for the same key are collapsed into a single
// computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/internal/similarity"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Text-Similarity-Service/pkg/logger"
)

const keyPrefix = "textsim:cmp:"

// Remote is the shared cache tier. *redis.Client implements it.
type Remote interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type entry struct {
	result  *similarity.Result
	expires time.Time
}

// Cache holds comparison results without their vectors.
type Cache struct {
	local  *lru.Cache[string, entry]
	remote Remote
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	now    func() time.Time
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a snapshot of cache effectiveness.
type Stats struct {
	Hits         int64   `json:"hits"`
	Misses       int64   `json:"misses"`
	HitRate      float64 `json:"hit_rate"`
	LocalEntries int     `json:"local_entries"`
	Remote       bool    `json:"remote"`
}

// New creates a Cache. remote may be nil for a local-only cache.
func New(cfg config.CacheConfig, remote Remote) (*Cache, error) {
	local, err := lru.New[string, entry](cfg.LocalSize)
	if err != nil {
		return nil, fmt.Errorf("creating local cache: %w", err)
	}
	return &Cache{
		local:  local,
		remote: remote,
		ttl:    cfg.TTL,
		logger: logger.WithComponent("comparison-cache"),
		now:    time.Now,
	}, nil
}

// Key derives the cache key for a request. Texts are length-prefixed so
// that moving characters between them changes the key.
func Key(req similarity.Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|", req.Strategy, req.Metric)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(req.TextA)))
	h.Write(n[:])
	h.Write([]byte(req.TextA))
	h.Write([]byte(req.TextB))
	return fmt.Sprintf("%s%x", keyPrefix, h.Sum(nil)[:16])
}

// Get looks the key up in the local tier, then the remote tier. Remote hits
// are promoted into the local tier.
func (c *Cache) Get(ctx context.Context, key string) (*similarity.Result, bool) {
	if e, ok := c.local.Get(key); ok {
		if c.ttl <= 0 || c.now().Before(e.expires) {
			c.hits.Add(1)
			return e.result, true
		}
		c.local.Remove(key)
	}
	if c.remote != nil {
		if res, ok := c.getRemote(ctx, key); ok {
			c.storeLocal(key, res)
			c.hits.Add(1)
			return res, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Set stores res in both tiers. Remote failures are logged, not returned.
func (c *Cache) Set(ctx context.Context, key string, res *similarity.Result) {
	stored := *res
	stored.VectorA, stored.VectorB = nil, nil
	c.storeLocal(key, &stored)
	if c.remote == nil {
		return
	}
	data, err := json.Marshal(&stored)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.remote.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("remote cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for req or computes and stores it.
// cached reports whether the result came from the cache. Errors from compute
// are never cached.
func (c *Cache) GetOrCompute(
	ctx context.Context,
	req similarity.Request,
	compute func() (*similarity.Result, error),
) (res *similarity.Result, cached bool, err error) {
	key := Key(req)
	if res, ok := c.Get(ctx, key); ok {
		return res, true, nil
	}
	val, err, _ := c.group.Do(key, func() (any, error) {
		if e, ok := c.local.Peek(key); ok && (c.ttl <= 0 || c.now().Before(e.expires)) {
			return e.result, nil
		}
		res, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, res)
		return res, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*similarity.Result), false, nil
}

// Invalidate drops every cached comparison from both tiers and returns the
// number of remote keys removed.
func (c *Cache) Invalidate(ctx context.Context) (int64, error) {
	local := c.local.Len()
	c.local.Purge()
	var deleted int64
	if c.remote != nil {
		n, err := c.remote.FlushByPattern(ctx, keyPrefix+"*")
		if err != nil {
			return n, fmt.Errorf("invalidating remote cache: %w", err)
		}
		deleted = n
	}
	c.logger.Info("cache invalidated", "local_entries", local, "remote_keys", deleted)
	return deleted, nil
}

// Stats returns hit and miss counts since start.
func (c *Cache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	s := Stats{
		Hits:         hits,
		Misses:       misses,
		LocalEntries: c.local.Len(),
		Remote:       c.remote != nil,
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}

func (c *Cache) storeLocal(key string, res *similarity.Result) {
	c.local.Add(key, entry{result: res, expires: c.now().Add(c.ttl)})
}

func (c *Cache) getRemote(ctx context.Context, key string) (*similarity.Result, bool) {
	data, found, err := c.remote.Get(ctx, key)
	if err != nil {
		c.logger.Warn("remote cache get failed", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var res similarity.Result
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return &res, true
}
