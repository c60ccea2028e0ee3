package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"manifest/internal/core/ports"
)

// CachedGeocoder puts a redis cache in front of another geocoder. Cache failures
// are logged and the lookup falls through to the wrapped geocoder.
type CachedGeocoder struct {
	next   ports.Geocoder
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedGeocoder wraps next. Entries live for ttl; zero keeps them forever.
func NewCachedGeocoder(next ports.Geocoder, client redis.UniversalClient, prefix string, ttl time.Duration, logger *slog.Logger) *CachedGeocoder {
	return &CachedGeocoder{
		next:   next,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With("component", "geocode-cache"),
	}
}

// Geocode serves from cache when possible. Only successful lookups are cached.
func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (ports.GeocodeResult, error) {
	key := g.key(address)

	raw, err := g.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var res ports.GeocodeResult
		if jsonErr := json.Unmarshal(raw, &res); jsonErr == nil {
			return res, nil
		}
		g.logger.WarnContext(ctx, "dropping undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		g.logger.WarnContext(ctx, "geocode cache read failed", "error", err)
	}

	res, err := g.next.Geocode(ctx, address)
	if err != nil {
		return ports.GeocodeResult{}, err
	}

	if raw, err := json.Marshal(res); err == nil {
		if err := g.client.Set(ctx, key, raw, g.ttl).Err(); err != nil {
			g.logger.WarnContext(ctx, "geocode cache write failed", "error", err)
		}
	}
	return res, nil
}

func (g *CachedGeocoder) key(address string) string {
	return g.prefix + strings.Join(strings.Fields(address), " ")
}
