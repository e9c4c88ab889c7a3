package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/tenant"
	testutil "github.com/trezcool/masomo-portal/tests"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

const acmeJSON = `{
	"id": "42",
	"name": "Acme High",
	"subdomain": "acme",
	"plan": {"name": "pro", "features": {"reports": true}, "limits": {"students": 800, "teachers": null}},
	"settings": {"primaryColor": "#1e88e5", "secondaryColor": "#ffc107", "logo": "https://cdn.masomo.cd/acme.png"}
}`

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	validate, _ := testutil.NewValidator()
	return NewClient(core.BackendConfig{URL: srv.URL, Timeout: 2 * time.Second, RetryCount: 2}, validate, nopLogger{})
}

func TestClient_FetchTenant(t *testing.T) {
	var gotSub, gotPath string
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotSub = r.Header.Get(SubdomainHeader)
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(acmeJSON))
	})

	got, err := client.FetchTenant(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, "acme", gotSub)
	assert.Equal(t, TenantPath, gotPath)
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, "acme", got.Subdomain)
	assert.True(t, got.Plan.Features["reports"])
	require.NotNil(t, got.Plan.Limits["students"])
	assert.Equal(t, 800, *got.Plan.Limits["students"])
	assert.Nil(t, got.Plan.Limits["teachers"])
	assert.Equal(t, "#1e88e5", got.Settings.PrimaryColor)
}

func TestClient_FetchTenantEnvelope(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token": "abc", "tenant": ` + acmeJSON + `}`))
	})

	got, err := client.FetchTenant(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme High", got.Name)
}

func TestClient_FetchTenantNotFound(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchTenant(context.Background(), "ghost")
	assert.Equal(t, tenant.ErrNotFound, errors.Cause(err))
}

func TestClient_FetchTenantRetriesServerErrors(t *testing.T) {
	var calls int32
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(acmeJSON))
	})

	got, err := client.FetchTenant(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Subdomain)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_FetchTenantFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		},
		{
			name:    "forbidden",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) },
		},
		{
			name:    "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"id":`)) },
		},
		{
			name:    "empty object",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{}`)) },
		},
		{
			name:    "null body",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`null`)) },
		},
		{
			name:    "null tenant envelope",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"token": "abc", "tenant": null}`)) },
		},
		{
			name: "missing name",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"id": "42", "subdomain": "acme"}`))
			},
		},
		{
			name: "another subdomain",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(strings.Replace(acmeJSON, `"subdomain": "acme"`, `"subdomain": "other"`, 1)))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newBackend(t, tt.handler)
			_, err := client.FetchTenant(context.Background(), "acme")
			assert.Error(t, err)
			assert.NotEqual(t, tenant.ErrNotFound, errors.Cause(err))
		})
	}
}
