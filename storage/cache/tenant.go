// Package cache keeps tenant payloads in redis, keyed by subdomain.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/tenant"
)

const keyPrefix = "masomo:portal:tenant:"

// TenantCache is a read-through cache in front of an optional tenant.Source.
// Without a source it only serves what was pushed with Store.
type TenantCache struct {
	client *redis.Client
	src    tenant.Source
	ttl    time.Duration
	logger core.Logger
}

var _ tenant.Source = (*TenantCache)(nil)

func NewRedisClient(conf core.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
}

func NewTenantCache(client *redis.Client, src tenant.Source, ttl time.Duration, logger core.Logger) *TenantCache {
	return &TenantCache{client: client, src: src, ttl: ttl, logger: logger}
}

func key(subdomain string) string { return keyPrefix + subdomain }

func (c *TenantCache) FetchTenant(ctx context.Context, subdomain string) (tenant.Tenant, error) {
	val, err := c.client.Get(ctx, key(subdomain)).Bytes()
	switch {
	case err == nil:
		var t tenant.Tenant
		if err = json.Unmarshal(val, &t); err != nil {
			c.logger.Warn("dropping undecodable cached tenant", err, map[string]interface{}{"subdomain": subdomain})
			break
		}
		if t.Subdomain == subdomain {
			return t, nil
		}
		c.logger.Warn("dropping cached tenant for another subdomain", map[string]interface{}{
			"subdomain": subdomain,
			"cached":    t.Subdomain,
		})
	case err != redis.Nil:
		// redis down: serve from the source uncached
		c.logger.Warn("reading cached tenant", err, map[string]interface{}{"subdomain": subdomain})
	}

	if c.src == nil {
		return tenant.Tenant{}, tenant.ErrNotFound
	}
	t, err := c.src.FetchTenant(ctx, subdomain)
	if err != nil {
		return tenant.Tenant{}, errors.Wrap(err, "fetching tenant")
	}
	// never cache one school's payload under another school's key
	if t.Subdomain != subdomain {
		return tenant.Tenant{}, errors.Errorf("fetching tenant %q: source returned %q", subdomain, t.Subdomain)
	}
	if err = c.Store(ctx, t); err != nil {
		c.logger.Warn("caching tenant", err, t)
	}
	return t, nil
}

// Store caches t under its subdomain, replacing any previous payload.
func (c *TenantCache) Store(ctx context.Context, t tenant.Tenant) error {
	data, err := json.Marshal(t)
	if err != nil {
		return errors.Wrap(err, "encoding tenant")
	}
	return errors.Wrap(c.client.Set(ctx, key(t.Subdomain), data, c.ttl).Err(), "storing tenant")
}

// Invalidate drops the cached payload (logout, tenant switch).
func (c *TenantCache) Invalidate(ctx context.Context, subdomain string) error {
	return errors.Wrap(c.client.Del(ctx, key(subdomain)).Err(), "invalidating tenant")
}
