package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/torquepoint/parts-engine/internal/cache"
	"github.com/torquepoint/parts-engine/internal/catalog"
	"github.com/torquepoint/parts-engine/internal/observability"
)

// ResultCache caches normalized, pre-filter search results so filter and sort
// changes never refetch from the provider. Cache failures degrade silently to
// a provider call.
type ResultCache struct {
	client cache.Client
	logger *observability.Logger
	config ResultCacheConfig
}

// ResultCacheConfig configures the result cache.
type ResultCacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
	Enabled   bool
}

// DefaultResultCacheConfig returns default cache configuration.
func DefaultResultCacheConfig() ResultCacheConfig {
	return ResultCacheConfig{
		TTL:       5 * time.Minute,
		KeyPrefix: "search:results:",
		Enabled:   true,
	}
}

// NewResultCache creates a result cache over the given client.
func NewResultCache(client cache.Client, logger *observability.Logger, cfg ResultCacheConfig) *ResultCache {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "search:results:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	return &ResultCache{
		client: client,
		logger: logger,
		config: cfg,
	}
}

// cachedResults is the serialized cache payload.
type cachedResults struct {
	Results  []catalog.PartResult `json:"results"`
	Groups   []QueryGroup         `json:"groups"`
	CachedAt time.Time            `json:"cached_at"`
}

// CacheKey builds a deterministic key from the request parameters. Query
// texts are sorted so equivalent requests share an entry.
func (c *ResultCache) CacheKey(queries []Query, vehicle VehicleContext, condition string, limit int) string {
	texts := make([]string, 0, len(queries))
	for _, q := range queries {
		texts = append(texts, q.Text+"|"+q.Label)
	}
	sort.Strings(texts)

	combined := ""
	for _, t := range texts {
		combined += t + "\n"
	}
	combined += strconv.Itoa(vehicle.Year) + "|" + vehicle.Make + "|" + vehicle.Model + "|" + vehicle.VIN
	combined += "|" + condition + "|" + strconv.Itoa(limit)

	hash := sha256.Sum256([]byte(combined))
	return c.config.KeyPrefix + hex.EncodeToString(hash[:16])
}

// Get retrieves cached results if available.
func (c *ResultCache) Get(ctx context.Context, key string) ([]catalog.PartResult, []QueryGroup, bool) {
	if !c.config.Enabled || c.client == nil {
		return nil, nil, false
	}

	data, err := c.client.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			c.logger.Debug().Err(err).Str("key", key).Msg("Cache get error")
		}
		return nil, nil, false
	}

	var cached cachedResults
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to unmarshal cached results")
		return nil, nil, false
	}

	c.logger.Debug().Str("key", key).Msg("Cache hit")
	return cached.Results, cached.Groups, true
}

// Set stores settled results. Groups carrying errors are not cached so a
// transient provider failure does not pin an error for the TTL.
func (c *ResultCache) Set(ctx context.Context, key string, results []catalog.PartResult, groups []QueryGroup) error {
	if !c.config.Enabled || c.client == nil {
		return nil
	}

	for _, g := range groups {
		if g.Error != "" {
			return nil
		}
	}

	data, err := json.Marshal(cachedResults{
		Results:  results,
		Groups:   groups,
		CachedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal cached results: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.config.TTL); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache results")
		return err
	}

	return nil
}
