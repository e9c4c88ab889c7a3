package tenant

import (
	"fmt"
	"sync"

	"github.com/trezcool/masomo-portal/core"
)

// Styler applies a tenant's presentation (colors, stylesheet, favicon) somewhere.
// Styling is best-effort: a Styler error never undoes a Session change.
type Styler interface {
	Apply(t Tenant) error
	Revert() error
}

// Session holds at most one Tenant for the lifetime of a page session (or request).
// The zero value is an empty session. Queries on a nil *Session return their default;
// SetTenant and Clear need a non-nil Session.
//
// Mutations are serialized together with their styling, so stylers always end up
// reflecting the tenant the session holds.
type Session struct {
	mu      sync.RWMutex
	styleMu sync.Mutex // held across a mutation and its styling
	tenant  *Tenant
	stylers []Styler
	logger  core.Logger
}

func NewSession(logger core.Logger, stylers ...Styler) *Session {
	return &Session{logger: logger, stylers: stylers}
}

// Subscribe registers a Styler notified on every SetTenant & Clear.
func (s *Session) Subscribe(st Styler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stylers = append(s.stylers, st)
}

// SetTenant replaces the held tenant. Nothing is merged from the previous one.
func (s *Session) SetTenant(t Tenant) {
	t = t.Clone()

	s.styleMu.Lock()
	defer s.styleMu.Unlock()

	s.mu.Lock()
	s.tenant = &t
	stylers := s.stylers
	s.mu.Unlock()

	for _, st := range stylers {
		s.style(func() error { return st.Apply(t.Clone()) }, t.Subdomain)
	}
}

// Tenant returns a copy of the held tenant, if any.
func (s *Session) Tenant() (Tenant, bool) {
	if s == nil {
		return Tenant{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tenant == nil {
		return Tenant{}, false
	}
	return s.tenant.Clone(), true
}

func (s *Session) Loaded() bool {
	_, ok := s.Tenant()
	return ok
}

// HasFeature is false when no tenant is loaded or the feature is unknown.
func (s *Session) HasFeature(key string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tenant == nil {
		return false
	}
	return s.tenant.Plan.Features[key]
}

// Limit returns the plan's cap for key, or nil for "unlimited".
// Zero is reported as unlimited too, as web clients have always read it.
func (s *Session) Limit(key string) *int {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tenant == nil {
		return nil
	}
	lim := s.tenant.Plan.Limits[key]
	if lim == nil || *lim == 0 {
		return nil
	}
	n := *lim
	return &n
}

// Clear empties the session (logout, tenant switch) and reverts styling.
func (s *Session) Clear() {
	s.styleMu.Lock()
	defer s.styleMu.Unlock()

	s.mu.Lock()
	sub := ""
	if s.tenant != nil {
		sub = s.tenant.Subdomain
	}
	s.tenant = nil
	stylers := s.stylers
	s.mu.Unlock()

	for _, st := range stylers {
		s.style(st.Revert, sub)
	}
}

// style runs fn, logging & swallowing errors and panics.
func (s *Session) style(fn func() error, subdomain string) {
	defer func() {
		if r := recover(); r != nil {
			s.logStyleErr(fmt.Errorf("styler panic: %v", r), subdomain)
		}
	}()
	if err := fn(); err != nil {
		s.logStyleErr(err, subdomain)
	}
}

func (s *Session) logStyleErr(err error, subdomain string) {
	if s.logger == nil {
		return
	}
	s.logger.Warn("applying tenant styling", err, map[string]interface{}{"subdomain": subdomain})
}
