// Package catalog holds the prebuilt item palette: the draggable fragments
// (buttons, forms, charts, login templates, ...) are data, not code. Each is
// a kind tag plus the default attribute bag a fresh instance starts with.
package catalog

import (
	"pagecraft-backend/domain/core/valueobjects"
	pkgerrors "pagecraft-backend/pkg/errors"
)

// Entry describes one prebuilt palette item
type Entry struct {
	Kind              string
	DisplayName       string
	DefaultAttributes valueobjects.Attributes
}

// builtins is the static palette table. Attribute bags mirror what the
// canvas renderer expects: a style sub-map, optional text, and data-
// attributes for embedded widgets such as charts.
var builtins = []Entry{
	{
		Kind:        "div",
		DisplayName: "Container",
		DefaultAttributes: valueobjects.Attributes{
			"style": map[string]interface{}{
				"display": "flex", "flexDirection": "column",
				"padding": "16px", "minHeight": "80px",
			},
		},
	},
	{
		Kind:        "button",
		DisplayName: "Button",
		DefaultAttributes: valueobjects.Attributes{
			"text": "Click me",
			"style": map[string]interface{}{
				"padding": "8px 16px", "borderRadius": "6px",
				"backgroundColor": "#2563eb", "color": "#ffffff",
			},
		},
	},
	{
		Kind:        "input",
		DisplayName: "Text Input",
		DefaultAttributes: valueobjects.Attributes{
			"placeholder": "Enter text...",
			"inputType":   "text",
			"style": map[string]interface{}{
				"padding": "8px", "border": "1px solid #d1d5db", "borderRadius": "4px",
			},
		},
	},
	{
		Kind:        "form",
		DisplayName: "Form",
		DefaultAttributes: valueobjects.Attributes{
			"style": map[string]interface{}{
				"display": "flex", "flexDirection": "column", "gap": "12px", "padding": "24px",
			},
		},
	},
	{
		Kind:        "navbar",
		DisplayName: "Navigation Bar",
		DefaultAttributes: valueobjects.Attributes{
			"links": []interface{}{"Home", "About", "Contact"},
			"style": map[string]interface{}{
				"display": "flex", "justifyContent": "space-between",
				"padding": "12px 24px", "backgroundColor": "#111827", "color": "#ffffff",
			},
		},
	},
	{
		Kind:        "card",
		DisplayName: "Card",
		DefaultAttributes: valueobjects.Attributes{
			"style": map[string]interface{}{
				"padding": "20px", "borderRadius": "8px",
				"boxShadow": "0 1px 3px rgba(0,0,0,0.12)", "backgroundColor": "#ffffff",
			},
		},
	},
	{
		Kind:        "chart",
		DisplayName: "Chart",
		DefaultAttributes: valueobjects.Attributes{
			"data-chart-type": "bar",
			"data-chart-series": []interface{}{
				map[string]interface{}{"label": "Series A", "values": []interface{}{10, 20, 30}},
			},
			"style": map[string]interface{}{"width": "100%", "height": "280px"},
		},
	},
	{
		Kind:        "table",
		DisplayName: "Table",
		DefaultAttributes: valueobjects.Attributes{
			"columns": []interface{}{"Name", "Email", "Status"},
			"style":   map[string]interface{}{"width": "100%", "borderCollapse": "collapse"},
		},
	},
	{
		Kind:        "login",
		DisplayName: "Login Form",
		DefaultAttributes: valueobjects.Attributes{
			"fields":     []interface{}{"email", "password"},
			"submitText": "Sign in",
			"style":      map[string]interface{}{"maxWidth": "360px", "margin": "0 auto", "padding": "32px"},
		},
	},
	{
		Kind:        "signup",
		DisplayName: "Signup Form",
		DefaultAttributes: valueobjects.Attributes{
			"fields":     []interface{}{"name", "email", "password", "confirmPassword"},
			"submitText": "Create account",
			"style":      map[string]interface{}{"maxWidth": "360px", "margin": "0 auto", "padding": "32px"},
		},
	},
	{
		Kind:        "text",
		DisplayName: "Text Block",
		DefaultAttributes: valueobjects.Attributes{
			"text":  "Lorem ipsum dolor sit amet",
			"style": map[string]interface{}{"fontSize": "16px", "lineHeight": "1.5"},
		},
	},
	{
		Kind:        "image",
		DisplayName: "Image",
		DefaultAttributes: valueobjects.Attributes{
			"src":   "",
			"alt":   "",
			"style": map[string]interface{}{"maxWidth": "100%"},
		},
	},
}

var byKind = func() map[string]Entry {
	index := make(map[string]Entry, len(builtins))
	for _, entry := range builtins {
		index[entry.Kind] = entry
	}
	return index
}()

// Entries returns the full palette in display order
func Entries() []Entry {
	out := make([]Entry, len(builtins))
	copy(out, builtins)
	return out
}

// Lookup finds a palette entry by kind
func Lookup(kind string) (Entry, error) {
	entry, ok := byKind[kind]
	if !ok {
		return Entry{}, pkgerrors.NewNotFoundError("catalog entry " + kind)
	}
	return entry, nil
}

// Has reports whether a kind is in the palette
func Has(kind string) bool {
	_, ok := byKind[kind]
	return ok
}

// Kinds returns all palette kinds
func Kinds() []string {
	kinds := make([]string, 0, len(builtins))
	for _, entry := range builtins {
		kinds = append(kinds, entry.Kind)
	}
	return kinds
}
