// Package platform talks to the Masomo REST backend that owns tenant data.
package platform

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/tenant"
)

const (
	TenantPath      = "/platform/tenant"
	SubdomainHeader = "X-Tenant-Subdomain"
)

// Client fetches tenant payloads from the backend. It is a tenant.Source.
// Payloads are validated and must name the subdomain that was asked for.
type Client struct {
	http     *resty.Client
	validate *validator.Validate
	logger   core.Logger
}

var _ tenant.Source = (*Client)(nil)

func NewClient(conf core.BackendConfig, validate *validator.Validate, logger core.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(conf.URL).
		SetTimeout(conf.Timeout).
		SetRetryCount(conf.RetryCount).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return resp != nil && resp.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, validate: validate, logger: logger}
}

func (c *Client) FetchTenant(ctx context.Context, subdomain string) (tenant.Tenant, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(SubdomainHeader, subdomain).
		Get(TenantPath)
	if err != nil {
		return tenant.Tenant{}, errors.Wrap(err, "requesting tenant")
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return tenant.Tenant{}, tenant.ErrNotFound
	default:
		c.logger.Warn("unexpected tenant response", map[string]interface{}{
			"subdomain": subdomain,
			"status":    resp.StatusCode(),
		})
		return tenant.Tenant{}, errors.Errorf("requesting tenant: unexpected status %d", resp.StatusCode())
	}

	t, err := decodeTenant(resp.Body())
	if err != nil {
		return tenant.Tenant{}, errors.Wrap(err, "decoding tenant")
	}
	if err = t.Validate(c.validate); err != nil {
		return tenant.Tenant{}, errors.Wrap(err, "invalid tenant payload")
	}
	if t.Subdomain != subdomain {
		c.logger.Warn("tenant response for another subdomain", map[string]interface{}{
			"subdomain": subdomain,
			"received":  t.Subdomain,
		})
		return tenant.Tenant{}, errors.Errorf("requested tenant %q, backend returned %q", subdomain, t.Subdomain)
	}
	return t, nil
}

// decodeTenant accepts a bare tenant object or a login-style {"tenant": {...}} envelope.
func decodeTenant(body []byte) (tenant.Tenant, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return tenant.Tenant{}, err
	}
	if fields == nil {
		return tenant.Tenant{}, errors.New("empty body")
	}

	if raw, ok := fields["tenant"]; ok {
		if string(raw) == "null" {
			return tenant.Tenant{}, errors.New("null tenant")
		}
		body = raw
	}

	var t tenant.Tenant
	if err := json.Unmarshal(body, &t); err != nil {
		return tenant.Tenant{}, err
	}
	return t, nil
}
