package tenant

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-portal/core"
)

// Tenant is one school within the portal, identified by its subdomain.
type Tenant struct {
	ID        string   `json:"id"`
	Name      string   `json:"name" validate:"required"`
	Subdomain string   `json:"subdomain" validate:"required,subdomain"`
	Plan      Plan     `json:"plan"`
	Settings  Settings `json:"settings"`
}

// Plan is the subscription the tenant is on.
// A limit that is absent or null means unlimited.
type Plan struct {
	Name     string          `json:"name"`
	Features map[string]bool `json:"features"`
	Limits   map[string]*int `json:"limits"`
}

// Settings holds the tenant's branding.
type Settings struct {
	PrimaryColor   string `json:"primaryColor" validate:"omitempty,hexcolor"`
	SecondaryColor string `json:"secondaryColor" validate:"omitempty,hexcolor"`
	Logo           string `json:"logo,omitempty" validate:"omitempty,url"`
	CustomCSS      string `json:"customCSS,omitempty"`
}

// Clone returns a deep copy so held state never aliases caller maps.
func (t Tenant) Clone() Tenant {
	c := t
	if t.Plan.Features != nil {
		c.Plan.Features = make(map[string]bool, len(t.Plan.Features))
		for k, v := range t.Plan.Features {
			c.Plan.Features[k] = v
		}
	}
	if t.Plan.Limits != nil {
		c.Plan.Limits = make(map[string]*int, len(t.Plan.Limits))
		for k, v := range t.Plan.Limits {
			if v != nil {
				n := *v
				v = &n
			}
			c.Plan.Limits[k] = v
		}
	}
	return c
}

// Clean normalizes user supplied fields.
func (t *Tenant) Clean() {
	t.ID = core.CleanString(t.ID)
	t.Name = core.CleanString(t.Name)
	t.Subdomain = core.CleanString(t.Subdomain, true /* lower */)
	t.Plan.Name = core.CleanString(t.Plan.Name)
	t.Settings.PrimaryColor = core.CleanString(t.Settings.PrimaryColor)
	t.Settings.SecondaryColor = core.CleanString(t.Settings.SecondaryColor)
	t.Settings.Logo = core.CleanString(t.Settings.Logo)
}

func (t *Tenant) Validate(validate *validator.Validate) error {
	t.Clean()
	return validate.Struct(t)
}
