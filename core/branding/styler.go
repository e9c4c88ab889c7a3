package branding

import (
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/tenant"
)

const (
	PrimaryColorVar   = "--primary-color"
	SecondaryColorVar = "--secondary-color"
	CustomStyleID     = "tenant-custom-styles"
)

// ErrNoDocument is returned when there is no surface to style (eg. a CLI context).
var ErrNoDocument = errors.New("branding: no document to style")

// Styler applies tenants onto a Document.
type Styler struct {
	doc *Document
}

var _ tenant.Styler = (*Styler)(nil)

func NewStyler(doc *Document) *Styler {
	return &Styler{doc: doc}
}

// Apply is idempotent: the custom style element is created once and its content replaced afterwards.
func (s *Styler) Apply(t tenant.Tenant) error {
	if s == nil || s.doc == nil {
		return ErrNoDocument
	}

	if css := t.Settings.CustomCSS; css != "" {
		s.doc.UpsertStyle(CustomStyleID, css)
	}

	s.doc.SetProperty(PrimaryColorVar, t.Settings.PrimaryColor)
	s.doc.SetProperty(SecondaryColorVar, t.Settings.SecondaryColor)

	if t.Settings.Logo != "" {
		s.doc.SetFavicon(t.Settings.Logo)
	}
	return nil
}

// Revert removes everything Apply may have set.
func (s *Styler) Revert() error {
	if s == nil || s.doc == nil {
		return ErrNoDocument
	}
	s.doc.RemoveStyle(CustomStyleID)
	s.doc.RemoveProperty(PrimaryColorVar)
	s.doc.RemoveProperty(SecondaryColorVar)
	s.doc.SetFavicon("")
	return nil
}
