package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/tenant"
	logsvc "github.com/trezcool/masomo-portal/services/logger"
)

func IntPtr(n int) *int { return &n }

// NewTenant returns a fully populated tenant for subdomain `sub`.
func NewTenant(sub string) tenant.Tenant {
	return tenant.Tenant{
		ID:        "id-" + sub,
		Name:      "École " + sub,
		Subdomain: sub,
		Plan: tenant.Plan{
			Name:     "standard",
			Features: map[string]bool{"reports": true, "payments": false},
			Limits:   map[string]*int{"students": IntPtr(500), "teachers": nil, "classes": IntPtr(0)},
		},
		Settings: tenant.Settings{
			PrimaryColor:   "#1e88e5",
			SecondaryColor: "#ffc107",
			Logo:           "https://cdn.masomo.cd/" + sub + "/logo.png",
			CustomCSS:      ".navbar { background: var(--primary-color); }",
		},
	}
}

// NewLogger returns a silent core.Logger.
func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(zap.NewNop(), &core.Config{Env: "TEST"})
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator with every app validator registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	tenant.InitValidators(validate, translator)
	return validate, translator
}

// NewRedis starts an in-memory redis server, stopped at the end of the test.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}
