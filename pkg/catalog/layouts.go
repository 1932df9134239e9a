// Package catalog holds the static data the compositor consumes: layout
// templates, device frames, export sizes, background presets and the icon
// set used by feature pills.
//
// Everything here is read-only after package initialization. Lookups return
// copies so callers can never mutate the shared tables.
package catalog

import (
	"slices"
	"strings"

	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/geometry"
)

// TextPosition names where a layout puts its text block.
type TextPosition string

// Text positions.
const (
	TextTop        TextPosition = "top"
	TextBottom     TextPosition = "bottom"
	TextLeft       TextPosition = "left"
	TextRight      TextPosition = "right"
	TextOverlay    TextPosition = "overlay"
	TextTopLeft    TextPosition = "top-left"
	TextBottomLeft TextPosition = "bottom-left"
)

// TextAlign is the horizontal alignment of the text block.
type TextAlign string

// Text alignments.
const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Decoration selects the ambient background motif.
type Decoration string

// Decoration variants. DecorationNone disables the layer.
const (
	DecorationNone    Decoration = ""
	DecorationCircles Decoration = "circles"
	DecorationShapes  Decoration = "shapes"
	DecorationBlobs   Decoration = "blobs"
)

// Variant selects one half of a paired layout.
type Variant string

// Paired variants. VariantNone renders a regular single image.
const (
	VariantNone  Variant = ""
	VariantLeft  Variant = "left"
	VariantRight Variant = "right"
)

// Valid reports whether v is a known variant (including none).
func (v Variant) Valid() bool {
	return v == VariantNone || v == VariantLeft || v == VariantRight
}

// ParseVariant parses a variant name. "none" and the empty string both
// mean VariantNone.
func ParseVariant(s string) (Variant, error) {
	if s == "none" {
		return VariantNone, nil
	}
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return VariantNone, errors.New(errors.ErrCodeInvalidInput, "unknown variant %q (want left, right or none)", s)
	}
	return v, nil
}

// MinimalLayoutID is the layout that hides title and subtitle.
const MinimalLayoutID = "minimal"

// Layout is a named arrangement of anchors, expressed in canvas percent.
type Layout struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	Phone       geometry.Anchor  `json:"phone"`
	SecondPhone *geometry.Anchor `json:"second_phone,omitempty"`
	PhoneCount  int              `json:"phone_count"`

	TextPosition TextPosition `json:"text_position"`
	TextAlign    TextAlign    `json:"text_align"`
	ShowText     bool         `json:"show_text"`
	ShowBadge    bool         `json:"show_badge"`
	Decorations  Decoration   `json:"decorations,omitempty"`

	ShowFeaturePills bool             `json:"show_feature_pills,omitempty"`
	PillAnchors      []geometry.Point `json:"pill_anchors,omitempty"`
	ShowStats        bool             `json:"show_stats,omitempty"`
	StatAnchors      []geometry.Point `json:"stat_anchors,omitempty"`

	// Paired layouts describe two separate images viewed side by side,
	// each showing one half of the same device.
	Paired  bool    `json:"paired,omitempty"`
	Variant Variant `json:"variant,omitempty"`
}

// HidesHeadline reports whether title and subtitle are suppressed.
func (l Layout) HidesHeadline() bool { return l.ID == MinimalLayoutID }

// PhoneAnchor returns the anchor for phone index i. The second phone falls
// back to the primary anchor when the template does not define one.
func (l Layout) PhoneAnchor(i int) geometry.Anchor {
	if i == 1 && l.SecondPhone != nil {
		return *l.SecondPhone
	}
	return l.Phone
}

func (l Layout) clone() Layout {
	if l.SecondPhone != nil {
		second := *l.SecondPhone
		l.SecondPhone = &second
	}
	l.PillAnchors = slices.Clone(l.PillAnchors)
	l.StatAnchors = slices.Clone(l.StatAnchors)
	return l
}

func anchor(x, y, scale, rot float64) *geometry.Anchor {
	return &geometry.Anchor{X: x, Y: y, Scale: scale, Rotation: rot}
}

func points(xy ...float64) []geometry.Point {
	out := make([]geometry.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, geometry.Point{X: xy[i], Y: xy[i+1]})
	}
	return out
}

var layouts = []Layout{
	{
		ID: "classic", Name: "Classic", Description: "Text top, phone center-bottom",
		Phone: *anchor(50, 60, 0.75, 0), PhoneCount: 1,
		TextPosition: TextTop, TextAlign: AlignCenter, ShowText: true, ShowBadge: true,
		Decorations: DecorationCircles,
	},
	{
		ID: "hero", Name: "Hero", Description: "Large phone, small text overlay",
		Phone: *anchor(50, 55, 0.85, 0), PhoneCount: 1,
		TextPosition: TextOverlay, TextAlign: AlignCenter, ShowText: true,
	},
	{
		ID: "side-by-side", Name: "Side by Side", Description: "Two phones horizontally",
		Phone: *anchor(30, 55, 0.55, 0), SecondPhone: anchor(70, 55, 0.55, 0), PhoneCount: 2,
		TextPosition: TextTop, TextAlign: AlignCenter, ShowText: true, ShowBadge: true,
		Decorations: DecorationCircles,
	},
	{
		ID: "text-bottom", Name: "Text Bottom", Description: "Phone top, text below",
		Phone: *anchor(50, 40, 0.7, 0), PhoneCount: 1,
		TextPosition: TextBottom, TextAlign: AlignCenter, ShowText: true, ShowBadge: true,
		Decorations: DecorationCircles,
	},
	{
		ID: MinimalLayoutID, Name: "Minimal", Description: "Phone only, no text",
		Phone: *anchor(50, 50, 0.8, 0), PhoneCount: 1,
		TextPosition: TextOverlay, TextAlign: AlignCenter, ShowText: true,
	},
	{
		ID: "feature-focus", Name: "Feature Focus", Description: "Phone with feature callouts",
		Phone: *anchor(50, 55, 0.7, 0), PhoneCount: 1,
		TextPosition: TextTop, TextAlign: AlignCenter, ShowText: true, ShowBadge: true,
		Decorations: DecorationCircles,
	},
	{
		ID: "left-aligned", Name: "Left Aligned", Description: "Phone on left, text on right",
		Phone: *anchor(35, 50, 0.7, 0), PhoneCount: 1,
		TextPosition: TextRight, TextAlign: AlignLeft, ShowText: true, ShowBadge: true,
		Decorations: DecorationCircles,
	},
	{
		ID: "right-aligned", Name: "Right Aligned", Description: "Phone on right, text on left",
		Phone: *anchor(65, 50, 0.7, 0), PhoneCount: 1,
		TextPosition: TextLeft, TextAlign: AlignRight, ShowText: true, ShowBadge: true,
		Decorations: DecorationCircles,
	},
	{
		ID: "split-pair", Name: "Split Pair", Description: "Generates 2 images that combine into one phone",
		Phone: *anchor(100, 52, 0.85, 8), PhoneCount: 1,
		TextPosition: TextTopLeft, TextAlign: AlignLeft, ShowText: true,
		Decorations:      DecorationCircles,
		ShowFeaturePills: true, PillAnchors: points(18, 50, 30, 60, 18, 70, 30, 80),
		ShowStats: true, StatAnchors: points(22, 35, 22, 52, 22, 69),
		Paired: true,
	},
	{
		ID: "stats-right", Name: "Stats Right", Description: "Phone on left with stats on right side",
		Phone: *anchor(35, 55, 0.8, 0), PhoneCount: 1,
		TextPosition: TextTopLeft, TextAlign: AlignLeft, ShowText: true,
		Decorations: DecorationCircles,
		ShowStats:   true, StatAnchors: points(75, 25, 75, 45, 75, 65),
	},
	{
		ID: "showcase", Name: "Showcase", Description: "Large centered phone with floating pills around",
		Phone: *anchor(50, 50, 0.75, 0), PhoneCount: 1,
		TextPosition: TextOverlay, TextAlign: AlignCenter, ShowText: true,
		ShowFeaturePills: true, PillAnchors: points(15, 35, 85, 35, 15, 55, 85, 55, 15, 75, 85, 75),
	},
	{
		ID: "tilted-left", Name: "Tilted Left", Description: "Phone rotated -15 degrees with text on right",
		Phone: *anchor(40, 50, 0.7, -15), PhoneCount: 1,
		TextPosition: TextRight, TextAlign: AlignLeft, ShowText: true, ShowBadge: true,
		Decorations: DecorationCircles,
	},
	{
		ID: "tilted-right", Name: "Tilted Right", Description: "Phone rotated +15 degrees with text on left",
		Phone: *anchor(60, 50, 0.7, 15), PhoneCount: 1,
		TextPosition: TextLeft, TextAlign: AlignRight, ShowText: true, ShowBadge: true,
		Decorations: DecorationCircles,
	},
	{
		ID: "floating", Name: "Floating", Description: "Phone centered with slight tilt, text at top",
		Phone: *anchor(50, 55, 0.75, 5), PhoneCount: 1,
		TextPosition: TextTop, TextAlign: AlignCenter, ShowText: true,
		Decorations: DecorationCircles,
	},
	{
		ID: "bottom-heavy", Name: "Bottom Heavy", Description: "Large phone at bottom, small text overlay at top",
		Phone: *anchor(50, 70, 0.9, 0), PhoneCount: 1,
		TextPosition: TextOverlay, TextAlign: AlignCenter, ShowText: true,
	},
	{
		ID: "card-style", Name: "Card Style", Description: "Phone at top with text in card-like bottom section",
		Phone: *anchor(50, 35, 0.65, 0), PhoneCount: 1,
		TextPosition: TextBottom, TextAlign: AlignCenter, ShowText: true, ShowBadge: true,
	},
	{
		ID: "stacked", Name: "Stacked", Description: "Two phones overlapping vertically with depth",
		Phone: *anchor(55, 55, 0.65, 0), SecondPhone: anchor(45, 45, 0.55, -5), PhoneCount: 2,
		TextPosition: TextTop, TextAlign: AlignCenter, ShowText: true, ShowBadge: true,
		Decorations: DecorationCircles,
	},
	{
		ID: "fan", Name: "Fan", Description: "Two phones spread like a fan",
		Phone: *anchor(35, 52, 0.6, -10), SecondPhone: anchor(65, 52, 0.6, 10), PhoneCount: 2,
		TextPosition: TextTop, TextAlign: AlignCenter, ShowText: true, ShowBadge: true,
		Decorations: DecorationCircles,
	},
	{
		ID: "perspective-row", Name: "Perspective Row", Description: "Two phones in perspective, one larger and forward",
		Phone: *anchor(35, 55, 0.7, 0), SecondPhone: anchor(70, 50, 0.5, 5), PhoneCount: 2,
		TextPosition: TextTop, TextAlign: AlignCenter, ShowText: true, ShowBadge: true,
		Decorations: DecorationCircles,
	},
}

var layoutIndex = func() map[string]int {
	m := make(map[string]int, len(layouts))
	for i, l := range layouts {
		m[l.ID] = i
	}
	return m
}()

// DefaultLayoutID is the layout new projects start with.
const DefaultLayoutID = "classic"

// LookupLayout returns the layout with the given id.
func LookupLayout(id string) (Layout, bool) {
	i, ok := layoutIndex[id]
	if !ok {
		return Layout{}, false
	}
	return layouts[i].clone(), true
}

// GetLayout returns the layout with the given id, or a CATALOG_LOOKUP_FAILED
// error.
func GetLayout(id string) (Layout, error) {
	l, ok := LookupLayout(id)
	if !ok {
		return Layout{}, errors.New(errors.ErrCodeCatalogLookupFailed, "layout %q not found", id)
	}
	return l, nil
}

// Layouts returns every layout in catalog order.
func Layouts() []Layout {
	out := make([]Layout, len(layouts))
	for i, l := range layouts {
		out[i] = l.clone()
	}
	return out
}

// LayoutIDs returns the ids of every layout in catalog order.
func LayoutIDs() []string {
	ids := make([]string, len(layouts))
	for i, l := range layouts {
		ids[i] = l.ID
	}
	return ids
}
