package theme

import "strings"

// Option represents a selectable theme exposed to the UI.
type Option struct {
	Value string
	Label string
}

// Palette contains resolved styling primitives for the catalog pages.
type Palette struct {
	Key         string
	BodyClass   string
	PanelClass  string
	BorderClass string
	AccentClass string
	MutedClass  string
}

const (
	// DefaultKey is used when no theme is requested.
	DefaultKey = "nocturne"
)

var catalogue = map[string]Palette{
	"nocturne": {
		Key:         "nocturne",
		BodyClass:   "min-h-screen bg-slate-950 text-slate-100",
		PanelClass:  "rounded-xl bg-slate-900/70 p-6",
		BorderClass: "border border-slate-800",
		AccentClass: "text-amber-300",
		MutedClass:  "text-slate-400",
	},
	"atelier_ivory": {
		Key:         "atelier_ivory",
		BodyClass:   "min-h-screen bg-stone-50 text-stone-900",
		PanelClass:  "rounded-xl bg-white p-6 shadow-sm",
		BorderClass: "border border-stone-200",
		AccentClass: "text-rose-700",
		MutedClass:  "text-stone-500",
	},
}

var options = []Option{
	{Value: "atelier_ivory", Label: "Atelier Ivory (Light)"},
	{Value: "nocturne", Label: "Nocturne (Dark)"},
}

// Resolve returns the palette for key, falling back to DefaultKey.
func Resolve(key string) Palette {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if value, ok := catalogue[normalized]; ok {
		return value
	}
	return catalogue[DefaultKey]
}

// Options lists the selectable palettes sorted by label.
func Options() []Option {
	return options
}
