package catalog

import "slices"

// Gradient is a named background gradient preset.
type Gradient struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Colors []string `json:"colors"`
	Angle  float64  `json:"angle"`
}

// SolidColor is a named solid background preset.
type SolidColor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

var gradients = []Gradient{
	{"sunset", "Sunset", []string{"#f97316", "#ec4899", "#8b5cf6"}, 135},
	{"ocean", "Ocean", []string{"#06b6d4", "#3b82f6", "#6366f1"}, 135},
	{"forest", "Forest", []string{"#22c55e", "#10b981", "#14b8a6"}, 135},
	{"berry", "Berry", []string{"#ec4899", "#8b5cf6", "#6366f1"}, 135},
	{"fire", "Fire", []string{"#ef4444", "#f97316", "#eab308"}, 135},
	{"midnight", "Midnight", []string{"#1e3a5f", "#312e81", "#4c1d95"}, 135},
	{"aurora", "Aurora", []string{"#22d3ee", "#a855f7", "#ec4899"}, 45},
	{"lime", "Lime", []string{"#84cc16", "#22c55e", "#10b981"}, 135},
	{"rose", "Rose", []string{"#f43f5e", "#ec4899", "#d946ef"}, 135},
	{"sky", "Sky", []string{"#38bdf8", "#818cf8", "#c084fc"}, 135},
	{"peach", "Peach", []string{"#fb923c", "#f472b6", "#a78bfa"}, 135},
	{"mint", "Mint", []string{"#2dd4bf", "#34d399", "#a3e635"}, 135},
	{"royal", "Royal", []string{"#7c3aed", "#4f46e5", "#2563eb"}, 135},
	{"coral", "Coral", []string{"#fb7185", "#f472b6", "#c084fc"}, 135},
	{"night", "Night", []string{"#0f172a", "#1e293b", "#334155"}, 180},
	{"dawn", "Dawn", []string{"#fcd34d", "#fb923c", "#f87171"}, 135},
	{"arctic", "Arctic", []string{"#e0f2fe", "#bae6fd", "#7dd3fc"}, 180},
	{"lavender", "Lavender", []string{"#c4b5fd", "#a78bfa", "#8b5cf6"}, 135},
	{"emerald", "Emerald", []string{"#059669", "#10b981", "#34d399"}, 135},
	{"crimson", "Crimson", []string{"#dc2626", "#ef4444", "#f87171"}, 135},
}

var solidColors = []SolidColor{
	{"black", "Black", "#000000"},
	{"white", "White", "#ffffff"},
	{"slate", "Slate", "#475569"},
	{"gray", "Gray", "#6b7280"},
	{"red", "Red", "#ef4444"},
	{"orange", "Orange", "#f97316"},
	{"amber", "Amber", "#f59e0b"},
	{"yellow", "Yellow", "#eab308"},
	{"lime", "Lime", "#84cc16"},
	{"green", "Green", "#22c55e"},
	{"emerald", "Emerald", "#10b981"},
	{"teal", "Teal", "#14b8a6"},
	{"cyan", "Cyan", "#06b6d4"},
	{"sky", "Sky", "#0ea5e9"},
	{"blue", "Blue", "#3b82f6"},
	{"indigo", "Indigo", "#6366f1"},
	{"violet", "Violet", "#8b5cf6"},
	{"purple", "Purple", "#a855f7"},
	{"fuchsia", "Fuchsia", "#d946ef"},
	{"pink", "Pink", "#ec4899"},
	{"rose", "Rose", "#f43f5e"},
}

// Gradients returns every gradient preset in catalog order.
func Gradients() []Gradient {
	out := make([]Gradient, len(gradients))
	for i, g := range gradients {
		g.Colors = slices.Clone(g.Colors)
		out[i] = g
	}
	return out
}

// LookupGradient returns the gradient preset with the given id.
func LookupGradient(id string) (Gradient, bool) {
	for _, g := range gradients {
		if g.ID == id {
			g.Colors = slices.Clone(g.Colors)
			return g, true
		}
	}
	return Gradient{}, false
}

// SolidColors returns every solid color preset in catalog order.
func SolidColors() []SolidColor {
	out := make([]SolidColor, len(solidColors))
	copy(out, solidColors)
	return out
}

// LookupSolidColor returns the solid color preset with the given id.
func LookupSolidColor(id string) (SolidColor, bool) {
	for _, c := range solidColors {
		if c.ID == id {
			return c, true
		}
	}
	return SolidColor{}, false
}
