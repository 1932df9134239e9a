package catalog

import (
	"github.com/matzehuels/storeshots/pkg/geometry"
)

// Paired layout defaults. Both halves use the same rotation sign so the
// frame continues across the seam when the two images sit side by side.
const (
	DefaultPairedRotation = 8.0
	DefaultPairedScale    = 0.85
	pairedCenterY         = 52.0
)

// PairedOverrides are the user-tunable parameters of a paired layout. Nil
// fields take the defaults.
type PairedOverrides struct {
	Rotation *float64
	Scale    *float64
}

// PairedConfig is the part of a layout that a paired variant replaces.
type PairedConfig struct {
	Variant     Variant
	Phone       geometry.Anchor
	ShowText    bool
	PillAnchors []geometry.Point
	StatAnchors []geometry.Point
}

// PairedLayoutConfig derives the phone anchor and the complementary pill
// and stat anchors for one half of a paired layout. The left image puts
// the phone center on its right edge (x=100) and carries the text; the
// right image puts it on its left edge (x=0). Pills and stats sit on the
// side opposite the phone.
func PairedLayoutConfig(v Variant, o PairedOverrides) PairedConfig {
	scale, rotation := DefaultPairedScale, DefaultPairedRotation
	if o.Scale != nil {
		scale = *o.Scale
	}
	if o.Rotation != nil {
		rotation = *o.Rotation
	}

	if v == VariantRight {
		return PairedConfig{
			Variant:     VariantRight,
			Phone:       geometry.Anchor{X: 0, Y: pairedCenterY, Scale: scale, Rotation: rotation},
			ShowText:    false,
			PillAnchors: points(70, 50, 82, 60, 70, 70, 82, 80),
			StatAnchors: points(78, 35, 78, 52, 78, 69),
		}
	}
	return PairedConfig{
		Variant:     VariantLeft,
		Phone:       geometry.Anchor{X: 100, Y: pairedCenterY, Scale: scale, Rotation: rotation},
		ShowText:    true,
		PillAnchors: points(18, 50, 30, 60, 18, 70, 30, 80),
		StatAnchors: points(22, 35, 22, 52, 22, 69),
	}
}

// Resolve returns the effective layout for a render. For a paired layout
// and a concrete variant the paired configuration is merged over the
// template; in every other case the layout is returned unchanged.
func (l Layout) Resolve(v Variant, o PairedOverrides) Layout {
	if !l.Paired || v == VariantNone {
		return l
	}
	cfg := PairedLayoutConfig(v, o)
	out := l.clone()
	out.Phone = cfg.Phone
	out.TextPosition = TextTopLeft
	out.ShowText = cfg.ShowText
	out.PillAnchors = cfg.PillAnchors
	out.StatAnchors = cfg.StatAnchors
	out.Variant = cfg.Variant
	return out
}
