package branding

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core/tenant"
)

func acme() tenant.Tenant {
	return tenant.Tenant{
		ID:        "1",
		Name:      "Acme High",
		Subdomain: "acme",
		Settings: tenant.Settings{
			PrimaryColor:   "#1e88e5",
			SecondaryColor: "#ffc107",
			Logo:           "https://cdn.masomo.cd/acme/logo.png",
			CustomCSS:      ".navbar { font-weight: bold; }",
		},
	}
}

func TestStyler_Apply(t *testing.T) {
	doc := NewDocument()
	st := NewStyler(doc)

	require.NoError(t, st.Apply(acme()))

	primary, ok := doc.Property(PrimaryColorVar)
	assert.True(t, ok)
	assert.Equal(t, "#1e88e5", primary)
	secondary, _ := doc.Property(SecondaryColorVar)
	assert.Equal(t, "#ffc107", secondary)

	css, ok := doc.Style(CustomStyleID)
	assert.True(t, ok)
	assert.Equal(t, ".navbar { font-weight: bold; }", css)
	assert.Equal(t, "https://cdn.masomo.cd/acme/logo.png", doc.Favicon())
}

func TestStyler_ApplyIsIdempotent(t *testing.T) {
	doc := NewDocument()
	st := NewStyler(doc)

	require.NoError(t, st.Apply(acme()))
	first := doc.Snapshot()
	firstCSS := doc.Stylesheet()

	require.NoError(t, st.Apply(acme()))
	assert.Equal(t, first, doc.Snapshot())
	assert.Equal(t, firstCSS, doc.Stylesheet())
	assert.Len(t, doc.Snapshot().Styles, 1, "only one tenant style element may exist")
}

func TestStyler_ConcurrentApplyKeepsOneStyleElement(t *testing.T) {
	doc := NewDocument()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = NewStyler(doc).Apply(acme())
		}()
	}
	wg.Wait()

	assert.Len(t, doc.Snapshot().Styles, 1)
}

func TestStyler_ApplyReplacesContent(t *testing.T) {
	doc := NewDocument()
	st := NewStyler(doc)

	require.NoError(t, st.Apply(acme()))
	next := acme()
	next.Settings.CustomCSS = "body { margin: 0; }"
	next.Settings.PrimaryColor = "#000000"
	require.NoError(t, st.Apply(next))

	snap := doc.Snapshot()
	require.Len(t, snap.Styles, 1)
	assert.Equal(t, "body { margin: 0; }", snap.Styles[0].Content)
	assert.Equal(t, "#000000", snap.Variables[PrimaryColorVar])
}

func TestStyler_ApplyWithoutOptionalSettings(t *testing.T) {
	doc := NewDocument()
	st := NewStyler(doc)

	plain := acme()
	plain.Settings.CustomCSS = ""
	plain.Settings.Logo = ""
	require.NoError(t, st.Apply(plain))

	snap := doc.Snapshot()
	assert.Empty(t, snap.Styles)
	assert.Empty(t, snap.Favicon)
	assert.Len(t, snap.Variables, 2)
}

func TestStyler_Revert(t *testing.T) {
	doc := NewDocument()
	st := NewStyler(doc)

	require.NoError(t, st.Apply(acme()))
	require.NoError(t, st.Revert())

	assert.Equal(t, Snapshot{Variables: map[string]string{}, Styles: []StyleElement{}}, doc.Snapshot())
	assert.Empty(t, doc.Stylesheet())
}

func TestStyler_NoDocument(t *testing.T) {
	st := NewStyler(nil)
	assert.Equal(t, ErrNoDocument, st.Apply(acme()))
	assert.Equal(t, ErrNoDocument, st.Revert())

	var nilStyler *Styler
	assert.Equal(t, ErrNoDocument, nilStyler.Apply(acme()))
}

func TestStyler_SessionKeepsStateWithoutDocument(t *testing.T) {
	sess := tenant.NewSession(nil, NewStyler(nil))
	sess.SetTenant(acme())

	got, ok := sess.Tenant()
	require.True(t, ok)
	assert.Equal(t, "acme", got.Subdomain)
}

func TestDocument_Stylesheet(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, NewStyler(doc).Apply(acme()))

	want := ":root {\n" +
		"  --primary-color: #1e88e5;\n" +
		"  --secondary-color: #ffc107;\n" +
		"}\n" +
		"/* tenant-custom-styles */\n" +
		".navbar { font-weight: bold; }\n"
	assert.Equal(t, want, doc.Stylesheet())
}
