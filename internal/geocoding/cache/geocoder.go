// Package cache memoizes geocoding results in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/yourplaces-server/internal/logger"
	"github.com/dtroode/yourplaces-server/internal/model"
)

var _ model.Geocoder = (*Geocoder)(nil)

const keyPrefix = "geocode:"

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Geocoder wraps another Geocoder. Cache failures never fail a lookup.
type Geocoder struct {
	next   model.Geocoder
	client redisClient
	ttl    time.Duration
	logger *logger.Logger
}

func NewGeocoder(next model.Geocoder, client redisClient, ttl time.Duration, logger *logger.Logger) *Geocoder {
	return &Geocoder{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (g *Geocoder) Coordinates(ctx context.Context, address string) (model.Location, error) {
	key := cacheKey(address)

	cached, err := g.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var loc model.Location
		if err := json.Unmarshal(cached, &loc); err == nil {
			return loc, nil
		}
		g.logger.Warn("Geocode cache: dropping malformed entry", "key", key)
	case !errors.Is(err, redis.Nil):
		g.logger.Warn("Geocode cache: read failed", "key", key, "error", err)
	}

	loc, err := g.next.Coordinates(ctx, address)
	if err != nil {
		return model.Location{}, err
	}

	payload, err := json.Marshal(loc)
	if err != nil {
		return loc, nil
	}
	if err := g.client.Set(ctx, key, payload, g.ttl).Err(); err != nil {
		g.logger.Warn("Geocode cache: write failed", "key", key, "error", err)
	}

	return loc, nil
}

func cacheKey(address string) string {
	return keyPrefix + strings.ToLower(strings.Join(strings.Fields(address), " "))
}
