package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/branding"
	"github.com/trezcool/masomo-portal/core/tenant"
)

var (
	contextHostnameKey = "hostname"
	contextDocumentKey = "branding"
)

// tenantMiddleware gives every request its own tenant Session, styled onto its own branding Document,
// and loads the tenant of the request host into it.
// A tenant that cannot be loaded leaves the session empty.
func (s *Server) tenantMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		hostname := tenant.HostnameFromHost(req.Host)

		doc := branding.NewDocument()
		sess := tenant.NewSession(s.deps.Logger, branding.NewStyler(doc))

		if err := tenant.Load(req.Context(), s.deps.Source, sess, hostname); err != nil && errors.Cause(err) != tenant.ErrNotFound {
			s.deps.Logger.Warn("loading tenant", err, map[string]interface{}{"hostname": hostname})
		}

		ctx.Set(contextHostnameKey, hostname)
		ctx.Set(contextDocumentKey, doc)
		ctx.SetRequest(req.WithContext(tenant.NewContext(req.Context(), sess)))
		return next(ctx)
	}
}

// platformMiddleware restricts a route to hosts without a tenant.
func platformMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if tenant.IsTenantDomain(contextHostname(ctx)) {
			return errHttpNotFound
		}
		return next(ctx)
	}
}

func rolesMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextClaims(ctx); err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func contextHostname(ctx echo.Context) string {
	hostname, _ := ctx.Get(contextHostnameKey).(string)
	return hostname
}

func contextSession(ctx echo.Context) *tenant.Session {
	return tenant.FromContext(ctx.Request().Context())
}

func contextDocument(ctx echo.Context) *branding.Document {
	if doc, ok := ctx.Get(contextDocumentKey).(*branding.Document); ok {
		return doc
	}
	return branding.NewDocument()
}
