package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core/tenant"
	"github.com/trezcool/masomo-portal/tests"
)

type countingSource struct {
	tenants map[string]tenant.Tenant
	calls   int
	err     error
}

func (s *countingSource) FetchTenant(_ context.Context, sub string) (tenant.Tenant, error) {
	s.calls++
	if s.err != nil {
		return tenant.Tenant{}, s.err
	}
	if t, ok := s.tenants[sub]; ok {
		return t, nil
	}
	return tenant.Tenant{}, tenant.ErrNotFound
}

func TestTenantCache_readThrough(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	src := &countingSource{tenants: map[string]tenant.Tenant{"acme": testutil.NewTenant("acme")}}
	c := NewTenantCache(client, src, time.Minute, testutil.NewLogger())

	first, err := c.FetchTenant(ctx, "acme")
	require.NoError(t, err)
	second, err := c.FetchTenant(ctx, "acme")
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls, "second fetch must be served from redis")
	assert.Equal(t, first, second)
	assert.Equal(t, testutil.NewTenant("acme"), second)
	assert.True(t, mr.Exists(keyPrefix+"acme"))
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"acme"))
}

func TestTenantCache_expiry(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	src := &countingSource{tenants: map[string]tenant.Tenant{"acme": testutil.NewTenant("acme")}}
	c := NewTenantCache(client, src, time.Minute, testutil.NewLogger())

	_, err := c.FetchTenant(ctx, "acme")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = c.FetchTenant(ctx, "acme")
	require.NoError(t, err)

	assert.Equal(t, 2, src.calls)
}

func TestTenantCache_notFound(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)

	withSrc := NewTenantCache(client, &countingSource{}, time.Minute, testutil.NewLogger())
	_, err := withSrc.FetchTenant(ctx, "ghost")
	assert.Equal(t, tenant.ErrNotFound, errors.Cause(err))
	assert.False(t, mr.Exists(keyPrefix+"ghost"))

	withoutSrc := NewTenantCache(client, nil, time.Minute, testutil.NewLogger())
	_, err = withoutSrc.FetchTenant(ctx, "ghost")
	assert.Equal(t, tenant.ErrNotFound, errors.Cause(err))
}

func TestTenantCache_StoreReplacesAndInvalidate(t *testing.T) {
	ctx := context.Background()
	_, client := testutil.NewRedis(t)
	c := NewTenantCache(client, nil, time.Minute, testutil.NewLogger())

	a := testutil.NewTenant("acme")
	b := tenant.Tenant{ID: "other", Name: "Acme Renamed", Subdomain: "acme"}
	require.NoError(t, c.Store(ctx, a))
	require.NoError(t, c.Store(ctx, b))

	got, err := c.FetchTenant(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, b, got, "no fields merged from the previous payload")

	require.NoError(t, c.Invalidate(ctx, "acme"))
	_, err = c.FetchTenant(ctx, "acme")
	assert.Equal(t, tenant.ErrNotFound, errors.Cause(err))
}

func TestTenantCache_redisDown(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	src := &countingSource{tenants: map[string]tenant.Tenant{"acme": testutil.NewTenant("acme")}}
	c := NewTenantCache(client, src, time.Minute, testutil.NewLogger())
	mr.Close()

	got, err := c.FetchTenant(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Subdomain)
	assert.Equal(t, 1, src.calls)
}

func TestTenantCache_corruptEntry(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	src := &countingSource{tenants: map[string]tenant.Tenant{"acme": testutil.NewTenant("acme")}}
	c := NewTenantCache(client, src, time.Minute, testutil.NewLogger())
	require.NoError(t, mr.Set(keyPrefix+"acme", "{not json"))

	got, err := c.FetchTenant(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Subdomain)
	assert.Equal(t, 1, src.calls)
}

func TestTenantCache_rejectsPayloadForAnotherSubdomain(t *testing.T) {
	ctx := context.Background()
	mr, client := testutil.NewRedis(t)
	src := &countingSource{tenants: map[string]tenant.Tenant{"acme": testutil.NewTenant("other")}}
	c := NewTenantCache(client, src, time.Minute, testutil.NewLogger())

	_, err := c.FetchTenant(ctx, "acme")
	require.Error(t, err)
	assert.NotEqual(t, tenant.ErrNotFound, errors.Cause(err))
	assert.Empty(t, mr.Keys())
}

func TestTenantCache_ignoresCachedPayloadForAnotherSubdomain(t *testing.T) {
	ctx := context.Background()
	_, client := testutil.NewRedis(t)
	src := &countingSource{tenants: map[string]tenant.Tenant{"acme": testutil.NewTenant("acme")}}
	c := NewTenantCache(client, src, time.Minute, testutil.NewLogger())

	data, err := json.Marshal(testutil.NewTenant("other"))
	require.NoError(t, err)
	require.NoError(t, client.Set(ctx, keyPrefix+"acme", data, time.Minute).Err())

	got, err := c.FetchTenant(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Subdomain)
	assert.Equal(t, 1, src.calls)
}
