// Package branding renders a tenant's look (colors, custom stylesheet, favicon)
// onto a Document the rendering layer serves to the page.
package branding

import (
	"sort"
	"strings"
	"sync"
)

// StyleElement is a named <style> block.
type StyleElement struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Snapshot is a read-only view of a Document.
type Snapshot struct {
	Variables map[string]string `json:"variables"`
	Styles    []StyleElement    `json:"styles"`
	Favicon   string            `json:"favicon,omitempty"`
}

// Document is the rendering surface: root CSS variables, style elements and the favicon link.
// Like a DOM, appending a style element twice yields two elements; callers look up first.
type Document struct {
	mu      sync.RWMutex
	vars    map[string]string
	styles  []*StyleElement
	favicon string
}

func NewDocument() *Document {
	return &Document{vars: make(map[string]string)}
}

func (d *Document) SetProperty(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.vars == nil {
		d.vars = make(map[string]string)
	}
	d.vars[name] = value
}

func (d *Document) RemoveProperty(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.vars, name)
}

func (d *Document) Property(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.vars[name]
	return v, ok
}

// Style returns the content of the style element with id.
func (d *Document) Style(id string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if el := d.style(id); el != nil {
		return el.Content, true
	}
	return "", false
}

// UpsertStyle sets the content of the first element with id, appending the element when missing.
func (d *Document) UpsertStyle(id, content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el := d.style(id); el != nil {
		el.Content = content
		return
	}
	d.styles = append(d.styles, &StyleElement{ID: id, Content: content})
}

// RemoveStyle drops every element with id.
func (d *Document) RemoveStyle(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.styles[:0]
	for _, el := range d.styles {
		if el.ID != id {
			kept = append(kept, el)
		}
	}
	d.styles = kept
}

func (d *Document) SetFavicon(href string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.favicon = href
}

func (d *Document) Favicon() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.favicon
}

func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := Snapshot{
		Variables: make(map[string]string, len(d.vars)),
		Styles:    make([]StyleElement, 0, len(d.styles)),
		Favicon:   d.favicon,
	}
	for k, v := range d.vars {
		snap.Variables[k] = v
	}
	for _, el := range d.styles {
		snap.Styles = append(snap.Styles, *el)
	}
	return snap
}

// Stylesheet renders the variables as a :root rule followed by every style element.
// Output is deterministic.
func (d *Document) Stylesheet() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var b strings.Builder
	if len(d.vars) > 0 {
		names := make([]string, 0, len(d.vars))
		for name := range d.vars {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString(":root {\n")
		for _, name := range names {
			b.WriteString("  " + name + ": " + d.vars[name] + ";\n")
		}
		b.WriteString("}\n")
	}
	for _, el := range d.styles {
		if el.Content == "" {
			continue
		}
		b.WriteString("/* " + el.ID + " */\n")
		b.WriteString(el.Content)
		if !strings.HasSuffix(el.Content, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (d *Document) style(id string) *StyleElement {
	for _, el := range d.styles {
		if el.ID == id {
			return el
		}
	}
	return nil
}
