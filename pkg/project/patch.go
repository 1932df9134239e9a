package project

import (
	"math"
	"slices"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/errors"
)

// Patch is a typed edit applied to a working copy of a project. Patches
// that reject their input return an INVALID_INPUT error and the store
// discards the whole update.
type Patch func(*Project) error

// Apply runs patches against a deep copy of p and returns the result.
// p itself is never modified.
func Apply(p Project, patches ...Patch) (Project, error) {
	out := p.Clone()
	for _, patch := range patches {
		if patch == nil {
			continue
		}
		if err := patch(&out); err != nil {
			return p, err
		}
	}
	return out, nil
}

// =============================================================================
// Content
// =============================================================================

// SetTitle replaces the headline.
func SetTitle(s string) Patch {
	return func(p *Project) error { p.Title = s; return nil }
}

// SetSubtitle replaces the subheadline.
func SetSubtitle(s string) Patch {
	return func(p *Project) error { p.Subtitle = s; return nil }
}

// SetBadge replaces the badge text. Empty hides the badge.
func SetBadge(s string) Patch {
	return func(p *Project) error { p.Badge = s; return nil }
}

// SetImage replaces the shared screenshot source. Empty clears it.
func SetImage(src string) Patch {
	return func(p *Project) error { p.Image = src; return nil }
}

// SetDevice selects a device frame. Unknown ids are stored as-is and
// render as a placeholder.
func SetDevice(id string) Patch {
	return func(p *Project) error {
		if id == "" {
			return errors.New(errors.ErrCodeInvalidInput, "device id is empty")
		}
		p.DeviceFrameID = id
		return nil
	}
}

// SetLayout selects a layout template. Unknown ids are stored as-is and
// render as a placeholder.
func SetLayout(id string) Patch {
	return func(p *Project) error {
		if id == "" {
			return errors.New(errors.ErrCodeInvalidInput, "layout id is empty")
		}
		p.LayoutID = id
		return nil
	}
}

// =============================================================================
// Background
// =============================================================================

// SetSolidBackground switches to a solid background.
func SetSolidBackground(color string) Patch {
	return func(p *Project) error {
		if color == "" {
			return errors.New(errors.ErrCodeInvalidInput, "background color is empty")
		}
		p.Background.Type = BackgroundSolid
		p.Background.Color = color
		return nil
	}
}

// SetGradientBackground switches to a linear gradient.
func SetGradientBackground(colors []string, angle float64) Patch {
	return func(p *Project) error {
		if len(colors) == 0 {
			return errors.New(errors.ErrCodeInvalidInput, "gradient needs at least one color")
		}
		p.Background.Type = BackgroundGradient
		p.Background.Colors = slices.Clone(colors)
		p.Background.Angle = angle
		return nil
	}
}

// UseGradientPreset switches to a named gradient preset.
func UseGradientPreset(id string) Patch {
	return func(p *Project) error {
		g, ok := catalog.LookupGradient(id)
		if !ok {
			return errors.New(errors.ErrCodeCatalogLookupFailed, "unknown gradient preset %q", id)
		}
		return SetGradientBackground(g.Colors, g.Angle)(p)
	}
}

// =============================================================================
// Transforms
// =============================================================================

// SetImageTransform replaces the shared screenshot transform.
func SetImageTransform(t ImageTransform) Patch {
	return func(p *Project) error {
		if err := validateImageTransform(t); err != nil {
			return err
		}
		p.ImageTransform = t
		return nil
	}
}

// SetPhoneTransform replaces the shared phone delta.
func SetPhoneTransform(t PhoneTransform) Patch {
	return func(p *Project) error {
		if !finite(t.X, t.Y, t.Scale, t.Rotation) {
			return errors.New(errors.ErrCodeInvalidInput, "phone transform must be finite")
		}
		p.PhoneTransform = t
		return nil
	}
}

// SetTextTransform replaces the text block offset.
func SetTextTransform(o Offset) Patch {
	return func(p *Project) error {
		if err := validateOffset("text", o); err != nil {
			return err
		}
		p.TextTransform = o
		return nil
	}
}

// SetTextStyle replaces the headline style.
func SetTextStyle(s TextStyle) Patch {
	return func(p *Project) error {
		if s.TitleSize < 0 || s.SubtitleSize < 0 || s.ShadowBlur < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "text sizes must not be negative")
		}
		p.TextStyle = s
		return nil
	}
}

// SetPairedTuning overrides the rotation and scale of paired layouts. Nil
// restores the catalog default.
func SetPairedTuning(rotation, scale *float64) Patch {
	return func(p *Project) error {
		if rotation != nil && !finite(*rotation) {
			return errors.New(errors.ErrCodeInvalidInput, "paired rotation must be finite")
		}
		if scale != nil && (!finite(*scale) || *scale < 0) {
			return errors.New(errors.ErrCodeInvalidInput, "paired scale must be a non-negative number")
		}
		p.PhoneRotation = cloneFloat(rotation)
		p.PhoneScale = cloneFloat(scale)
		return nil
	}
}

// =============================================================================
// Pills and stats
// =============================================================================

// SetFeaturePills replaces the pill list.
func SetFeaturePills(pills []FeaturePill) Patch {
	return func(p *Project) error { p.FeaturePills = slices.Clone(pills); return nil }
}

// ShowFeaturePills toggles the pill layer.
func ShowFeaturePills(show bool) Patch {
	return func(p *Project) error { p.ShowFeaturePills = show; return nil }
}

// SetFeaturePillsOffset moves the pill layer as a group.
func SetFeaturePillsOffset(o Offset) Patch {
	return func(p *Project) error {
		if err := validateOffset("feature pills", o); err != nil {
			return err
		}
		p.FeaturePillsOffset = o
		return nil
	}
}

// SetFeaturePillsPosition selects which paired half shows the pills.
func SetFeaturePillsPosition(pl Placement) Patch {
	return func(p *Project) error {
		if err := validatePlacement(pl); err != nil {
			return err
		}
		p.FeaturePillsPosition = pl
		return nil
	}
}

// SetStats replaces the stat list.
func SetStats(stats []Stat) Patch {
	return func(p *Project) error { p.Stats = slices.Clone(stats); return nil }
}

// ShowStats toggles the stat layer.
func ShowStats(show bool) Patch {
	return func(p *Project) error { p.ShowStats = show; return nil }
}

// SetStatsOffset moves the stat layer as a group.
func SetStatsOffset(o Offset) Patch {
	return func(p *Project) error {
		if err := validateOffset("stats", o); err != nil {
			return err
		}
		p.StatsOffset = o
		return nil
	}
}

// SetStatsPosition selects which paired half shows the stats.
func SetStatsPosition(pl Placement) Patch {
	return func(p *Project) error {
		if err := validatePlacement(pl); err != nil {
			return err
		}
		p.StatsPosition = pl
		return nil
	}
}

// =============================================================================
// Per-phone overrides
// =============================================================================

// SetPhoneConfig replaces the override block of phone i.
func SetPhoneConfig(i int, c PhoneConfig) Patch {
	return func(p *Project) error {
		if err := validatePhoneIndex(i); err != nil {
			return err
		}
		if c.ImageTransform != nil {
			if err := validateImageTransform(*c.ImageTransform); err != nil {
				return err
			}
		}
		p.PhoneConfigs[i] = c.clone()
		return nil
	}
}

// SetPhoneImage overrides the image of phone i. Use ClearPhoneImage to
// inherit the shared image again.
func SetPhoneImage(i int, src string) Patch {
	return func(p *Project) error {
		if err := validatePhoneIndex(i); err != nil {
			return err
		}
		p.PhoneConfigs[i].Image = &src
		return nil
	}
}

// ClearPhoneImage drops the image override of phone i.
func ClearPhoneImage(i int) Patch {
	return func(p *Project) error {
		if err := validatePhoneIndex(i); err != nil {
			return err
		}
		p.PhoneConfigs[i].Image = nil
		return nil
	}
}

// SetPhoneDelta overrides the phone transform of phone i.
func SetPhoneDelta(i int, t PhoneTransform) Patch {
	return func(p *Project) error {
		if err := validatePhoneIndex(i); err != nil {
			return err
		}
		if !finite(t.X, t.Y, t.Scale, t.Rotation) {
			return errors.New(errors.ErrCodeInvalidInput, "phone transform must be finite")
		}
		p.PhoneConfigs[i].PhoneTransform = &t
		return nil
	}
}

// SelectPhone marks phone i as selected in the editor. A negative index
// clears the selection.
func SelectPhone(i int) Patch {
	return func(p *Project) error {
		if i < 0 {
			p.SelectedPhoneIndex = nil
			return nil
		}
		if err := validatePhoneIndex(i); err != nil {
			return err
		}
		p.SelectedPhoneIndex = &i
		return nil
	}
}

// =============================================================================
// Validation helpers
// =============================================================================

func validatePhoneIndex(i int) error {
	if i < 0 || i > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "phone index %d out of range", i)
	}
	return nil
}

func validateImageTransform(t ImageTransform) error {
	if !finite(t.Zoom, t.PanX, t.PanY) || t.Zoom < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "image zoom must be a non-negative number")
	}
	return nil
}

func validateOffset(what string, o Offset) error {
	if !finite(o.X, o.Y, o.Scale) {
		return errors.New(errors.ErrCodeInvalidInput, "%s offset must be finite", what)
	}
	return nil
}

func validatePlacement(pl Placement) error {
	switch pl {
	case PlaceFirst, PlaceSecond, PlaceBoth:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "placement %q must be first, second or both", pl)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
