package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/tenant"
)

type (
	ConfigResponse struct {
		Hostname   string      `json:"hostname"`
		Subdomain  *string     `json:"subdomain"`
		Mode       tenant.Mode `json:"mode"`
		Env        tenant.Env  `json:"env"`
		APIBaseURL string      `json:"api_base_url"`
	}

	FeatureResponse struct {
		Key     string `json:"key"`
		Enabled bool   `json:"enabled"`
	}

	LimitResponse struct {
		Key   string `json:"key"`
		Limit *int   `json:"limit"`
	}
)

type tenantApi struct {
	env      tenant.Env
	baseURL  string
	cache    TenantStore
	catalog  *tenant.Service
	validate *validator.Validate
}

func registerTenantAPI(g *echo.Group, jwt echo.MiddlewareFunc, api tenantApi) {
	g.GET("/config", api.config)

	tg := g.Group("/tenant")
	tg.GET("", api.retrieve)
	tg.GET("/features/:key", api.feature)
	tg.GET("/limits/:key", api.limit)
	tg.GET("/branding", api.branding)
	tg.GET("/theme.css", api.theme)

	// authed endpoints
	tg.PUT("", api.push, jwt)
	tg.DELETE("", api.clear, jwt)

	if api.catalog != nil {
		g.GET("/tenants", api.list, platformMiddleware, jwt, rolesMiddleware(RolePlatformAdmin))
	}
}

// Handlers

func (api *tenantApi) config(ctx echo.Context) error {
	hostname := contextHostname(ctx)

	var sub *string
	if s := tenant.Subdomain(hostname); s != "" {
		sub = &s
	}
	return ctx.JSON(http.StatusOK, ConfigResponse{
		Hostname:   hostname,
		Subdomain:  sub,
		Mode:       tenant.ModeOf(hostname, api.env),
		Env:        api.env,
		APIBaseURL: tenant.APIBaseURL(api.baseURL, hostname, api.env),
	})
}

func (api *tenantApi) retrieve(ctx echo.Context) error {
	t, ok := contextSession(ctx).Tenant()
	if !ok {
		return tenant.ErrNotFound
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tenantApi) feature(ctx echo.Context) error {
	key := ctx.Param("key")
	return ctx.JSON(http.StatusOK, FeatureResponse{Key: key, Enabled: contextSession(ctx).HasFeature(key)})
}

func (api *tenantApi) limit(ctx echo.Context) error {
	key := ctx.Param("key")
	return ctx.JSON(http.StatusOK, LimitResponse{Key: key, Limit: contextSession(ctx).Limit(key)})
}

func (api *tenantApi) branding(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, contextDocument(ctx).Snapshot())
}

func (api *tenantApi) theme(ctx echo.Context) error {
	return ctx.Blob(http.StatusOK, "text/css; charset=UTF-8", []byte(contextDocument(ctx).Stylesheet()))
}

// push loads a tenant payload handed out by the backend (eg. in a login response) for this host.
func (api *tenantApi) push(ctx echo.Context) error {
	sub, err := api.authorizeHost(ctx)
	if err != nil {
		return err
	}

	var data tenant.Tenant
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Tenant")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	if data.Subdomain != sub {
		return errHttpForbidden
	}

	if api.cache != nil {
		if err = api.cache.Store(ctx.Request().Context(), data); err != nil {
			return errors.Wrap(err, "caching tenant")
		}
	}
	contextSession(ctx).SetTenant(data)

	t, _ := contextSession(ctx).Tenant()
	return ctx.JSON(http.StatusOK, t)
}

// clear drops the tenant of this host (logout, tenant switch).
func (api *tenantApi) clear(ctx echo.Context) error {
	sub, err := api.authorizeHost(ctx)
	if err != nil {
		return err
	}

	if api.cache != nil {
		if err = api.cache.Invalidate(ctx.Request().Context(), sub); err != nil {
			return errors.Wrap(err, "invalidating tenant")
		}
	}
	contextSession(ctx).Clear()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *tenantApi) list(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	tenants, err := api.catalog.List(ctx.Request().Context(), ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "listing tenants")
	}
	return ctx.JSON(http.StatusOK, tenants)
}

// authorizeHost returns the subdomain of a tenant host the token was issued for.
func (api *tenantApi) authorizeHost(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	hostname := contextHostname(ctx)
	if !tenant.IsTenantDomain(hostname) {
		return "", errHttpForbidden
	}
	sub := tenant.Subdomain(hostname)
	if claims.Tenant != sub {
		return "", errHttpForbidden
	}
	return sub, nil
}
