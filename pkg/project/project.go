// Package project defines the screenshot project record and the store that
// owns the list of projects.
//
// A Project is a plain value. Editing surfaces never mutate one in place:
// they submit typed Patch functions to the Store, which applies them to a
// deep copy and publishes the result to subscribers. Renderers receive
// projects as explicit parameters and never read the store themselves.
package project

import (
	"slices"
	"time"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/geometry"
)

// BackgroundType discriminates the Background union.
type BackgroundType string

// Background types.
const (
	BackgroundSolid    BackgroundType = "solid"
	BackgroundGradient BackgroundType = "gradient"
)

// Background is a tagged union of a solid color and a linear gradient.
// Both payloads are kept so switching Type back and forth in the editor
// does not lose the user's colors.
type Background struct {
	Type   BackgroundType `json:"type" toml:"type" yaml:"type" bson:"type"`
	Color  string         `json:"color" toml:"color" yaml:"color" bson:"color"`
	Colors []string       `json:"colors" toml:"colors" yaml:"colors" bson:"colors"`
	Angle  float64        `json:"angle" toml:"angle" yaml:"angle" bson:"angle"`
}

// IsGradient reports whether the gradient payload is active and usable.
func (b Background) IsGradient() bool {
	return b.Type == BackgroundGradient && len(b.Colors) > 0
}

// AccentColor is the color pills use for their icon disc: the first
// gradient stop, or the solid color.
func (b Background) AccentColor() string {
	if b.IsGradient() {
		return b.Colors[0]
	}
	return b.Color
}

// ImageTransform positions the screenshot inside the device screen. Pan is
// in device reference pixels; Zoom multiplies the aspect-fill size.
type ImageTransform struct {
	Zoom float64 `json:"zoom" toml:"zoom" yaml:"zoom" bson:"zoom"`
	PanX float64 `json:"pan_x" toml:"pan_x" yaml:"pan_x" bson:"pan_x"`
	PanY float64 `json:"pan_y" toml:"pan_y" yaml:"pan_y" bson:"pan_y"`
}

// TextStyle controls the headline text block.
type TextStyle struct {
	FontFamily    string  `json:"font_family" toml:"font_family" yaml:"font_family" bson:"font_family"`
	TitleSize     float64 `json:"title_size" toml:"title_size" yaml:"title_size" bson:"title_size"`
	SubtitleSize  float64 `json:"subtitle_size" toml:"subtitle_size" yaml:"subtitle_size" bson:"subtitle_size"`
	FontWeight    int     `json:"font_weight" toml:"font_weight" yaml:"font_weight" bson:"font_weight"`
	Color         string  `json:"color" toml:"color" yaml:"color" bson:"color"`
	ShadowEnabled bool    `json:"shadow_enabled" toml:"shadow_enabled" yaml:"shadow_enabled" bson:"shadow_enabled"`
	ShadowColor   string  `json:"shadow_color" toml:"shadow_color" yaml:"shadow_color" bson:"shadow_color"`
	ShadowBlur    float64 `json:"shadow_blur" toml:"shadow_blur" yaml:"shadow_blur" bson:"shadow_blur"`
}

// PhoneTransform is the user delta on top of a layout's phone anchor.
// X and Y are percent of the canvas.
type PhoneTransform struct {
	X        float64 `json:"x" toml:"x" yaml:"x" bson:"x"`
	Y        float64 `json:"y" toml:"y" yaml:"y" bson:"y"`
	Scale    float64 `json:"scale" toml:"scale" yaml:"scale" bson:"scale"`
	Rotation float64 `json:"rotation" toml:"rotation" yaml:"rotation" bson:"rotation"`
}

// Delta converts the transform into a geometry delta.
func (t PhoneTransform) Delta() geometry.Delta {
	return geometry.Delta{DX: t.X, DY: t.Y, Scale: t.Scale, Rotation: t.Rotation}
}

// Offset is a group translate-then-scale used for the text block, the
// pill layer and the stat layer. X and Y are percent of the canvas.
type Offset struct {
	X     float64 `json:"x" toml:"x" yaml:"x" bson:"x"`
	Y     float64 `json:"y" toml:"y" yaml:"y" bson:"y"`
	Scale float64 `json:"scale" toml:"scale" yaml:"scale" bson:"scale"`
}

// Group converts the offset into a geometry group offset.
func (o Offset) Group() geometry.GroupOffset {
	return geometry.GroupOffset{DX: o.X, DY: o.Y, Scale: o.Scale}
}

// FeaturePill is a short feature callout with an icon.
type FeaturePill struct {
	Text string `json:"text" toml:"text" yaml:"text" bson:"text"`
	Icon string `json:"icon,omitempty" toml:"icon,omitempty" yaml:"icon,omitempty" bson:"icon,omitempty"`
}

// Stat is a headline number with a label, optionally framed by laurels.
type Stat struct {
	Value      string `json:"value" toml:"value" yaml:"value" bson:"value"`
	Label      string `json:"label" toml:"label" yaml:"label" bson:"label"`
	ShowLaurel bool   `json:"show_laurel" toml:"show_laurel" yaml:"show_laurel" bson:"show_laurel"`
}

// Placement selects which half of a paired layout shows a layer.
type Placement string

// Placements.
const (
	PlaceFirst  Placement = "first"
	PlaceSecond Placement = "second"
	PlaceBoth   Placement = "both"
)

// VisibleOn reports whether a layer with this placement renders on the
// given variant. Non-paired renders always show the layer.
func (p Placement) VisibleOn(v catalog.Variant) bool {
	switch v {
	case catalog.VariantNone:
		return true
	case catalog.VariantLeft:
		return p == PlaceBoth || p == PlaceFirst
	case catalog.VariantRight:
		return p == PlaceBoth || p == PlaceSecond
	}
	return false
}

// PhoneConfig holds per-phone overrides for two-phone layouts. Nil fields
// inherit from the project. An empty Image pointer target explicitly
// clears the image for that phone.
type PhoneConfig struct {
	Image          *string         `json:"image,omitempty" toml:"image,omitempty" yaml:"image,omitempty" bson:"image,omitempty"`
	ImageTransform *ImageTransform `json:"image_transform,omitempty" toml:"image_transform,omitempty" yaml:"image_transform,omitempty" bson:"image_transform,omitempty"`
	PhoneTransform *PhoneTransform `json:"phone_transform,omitempty" toml:"phone_transform,omitempty" yaml:"phone_transform,omitempty" bson:"phone_transform,omitempty"`
	DeviceFrameID  string          `json:"device_frame_id,omitempty" toml:"device_frame_id,omitempty" yaml:"device_frame_id,omitempty" bson:"device_frame_id,omitempty"`
}

// IsZero reports whether the config overrides nothing.
func (c PhoneConfig) IsZero() bool {
	return c.Image == nil && c.ImageTransform == nil && c.PhoneTransform == nil && c.DeviceFrameID == ""
}

func (c PhoneConfig) clone() PhoneConfig {
	if c.Image != nil {
		v := *c.Image
		c.Image = &v
	}
	if c.ImageTransform != nil {
		v := *c.ImageTransform
		c.ImageTransform = &v
	}
	if c.PhoneTransform != nil {
		v := *c.PhoneTransform
		c.PhoneTransform = &v
	}
	return c
}

// Project is one exportable composition.
type Project struct {
	ID       string `json:"id" toml:"id" yaml:"id" bson:"_id"`
	Image    string `json:"image" toml:"image" yaml:"image" bson:"image"`
	Title    string `json:"title" toml:"title" yaml:"title" bson:"title"`
	Subtitle string `json:"subtitle" toml:"subtitle" yaml:"subtitle" bson:"subtitle"`
	Badge    string `json:"badge" toml:"badge" yaml:"badge" bson:"badge"`

	DeviceFrameID string `json:"device_frame_id" toml:"device_frame_id" yaml:"device_frame_id" bson:"device_frame_id"`
	LayoutID      string `json:"layout_id" toml:"layout_id" yaml:"layout_id" bson:"layout_id"`

	Background     Background     `json:"background" toml:"background" yaml:"background" bson:"background"`
	ImageTransform ImageTransform `json:"image_transform" toml:"image_transform" yaml:"image_transform" bson:"image_transform"`
	TextStyle      TextStyle      `json:"text_style" toml:"text_style" yaml:"text_style" bson:"text_style"`
	PhoneTransform PhoneTransform `json:"phone_transform" toml:"phone_transform" yaml:"phone_transform" bson:"phone_transform"`
	TextTransform  Offset         `json:"text_transform" toml:"text_transform" yaml:"text_transform" bson:"text_transform"`

	FeaturePills         []FeaturePill `json:"feature_pills" toml:"feature_pills" yaml:"feature_pills" bson:"feature_pills"`
	ShowFeaturePills     bool          `json:"show_feature_pills" toml:"show_feature_pills" yaml:"show_feature_pills" bson:"show_feature_pills"`
	FeaturePillsOffset   Offset        `json:"feature_pills_offset" toml:"feature_pills_offset" yaml:"feature_pills_offset" bson:"feature_pills_offset"`
	FeaturePillsPosition Placement     `json:"feature_pills_position" toml:"feature_pills_position" yaml:"feature_pills_position" bson:"feature_pills_position"`

	Stats         []Stat    `json:"stats" toml:"stats" yaml:"stats" bson:"stats"`
	ShowStats     bool      `json:"show_stats" toml:"show_stats" yaml:"show_stats" bson:"show_stats"`
	StatsOffset   Offset    `json:"stats_offset" toml:"stats_offset" yaml:"stats_offset" bson:"stats_offset"`
	StatsPosition Placement `json:"stats_position" toml:"stats_position" yaml:"stats_position" bson:"stats_position"`

	// Paired layout tuning. Nil means the catalog default.
	PhoneRotation *float64 `json:"phone_rotation,omitempty" toml:"phone_rotation,omitempty" yaml:"phone_rotation,omitempty" bson:"phone_rotation,omitempty"`
	PhoneScale    *float64 `json:"phone_scale,omitempty" toml:"phone_scale,omitempty" yaml:"phone_scale,omitempty" bson:"phone_scale,omitempty"`

	PhoneConfigs [2]PhoneConfig `json:"phone_configs" toml:"phone_configs" yaml:"phone_configs" bson:"phone_configs"`

	// SelectedPhoneIndex is editor state. Renderers only use it to draw a
	// selection ring in preview mode.
	SelectedPhoneIndex *int `json:"selected_phone_index,omitempty" toml:"selected_phone_index,omitempty" yaml:"selected_phone_index,omitempty" bson:"selected_phone_index,omitempty"`

	CreatedAt time.Time `json:"created_at" toml:"created_at" yaml:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" toml:"updated_at" yaml:"updated_at" bson:"updated_at"`
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	p.Background.Colors = slices.Clone(p.Background.Colors)
	p.FeaturePills = slices.Clone(p.FeaturePills)
	p.Stats = slices.Clone(p.Stats)
	for i := range p.PhoneConfigs {
		p.PhoneConfigs[i] = p.PhoneConfigs[i].clone()
	}
	if p.PhoneRotation != nil {
		v := *p.PhoneRotation
		p.PhoneRotation = &v
	}
	if p.PhoneScale != nil {
		v := *p.PhoneScale
		p.PhoneScale = &v
	}
	if p.SelectedPhoneIndex != nil {
		v := *p.SelectedPhoneIndex
		p.SelectedPhoneIndex = &v
	}
	return p
}

// PairedOverrides returns the paired-layout tuning for the catalog.
func (p Project) PairedOverrides() catalog.PairedOverrides {
	return catalog.PairedOverrides{Rotation: p.PhoneRotation, Scale: p.PhoneScale}
}

// IsPaired reports whether the project's layout exports two images.
func (p Project) IsPaired() bool {
	l, ok := catalog.LookupLayout(p.LayoutID)
	return ok && l.Paired
}

// PhoneImage resolves the image source for phone i.
func (p Project) PhoneImage(i int) string {
	if i >= 0 && i < len(p.PhoneConfigs) && p.PhoneConfigs[i].Image != nil {
		return *p.PhoneConfigs[i].Image
	}
	return p.Image
}

// PhoneImageTransform resolves the image transform for phone i.
func (p Project) PhoneImageTransform(i int) ImageTransform {
	if i >= 0 && i < len(p.PhoneConfigs) && p.PhoneConfigs[i].ImageTransform != nil {
		return *p.PhoneConfigs[i].ImageTransform
	}
	return p.ImageTransform
}

// PhoneDevice resolves the device id for phone i.
func (p Project) PhoneDevice(i int) string {
	if i >= 0 && i < len(p.PhoneConfigs) && p.PhoneConfigs[i].DeviceFrameID != "" {
		return p.PhoneConfigs[i].DeviceFrameID
	}
	return p.DeviceFrameID
}

// PhoneDelta resolves the user transform for phone i. A per-phone
// override wins; otherwise phone 0 uses the project's shared transform and
// phone 1 the identity, so two phones never share one transform when
// overrides exist.
func (p Project) PhoneDelta(i int) geometry.Delta {
	if i >= 0 && i < len(p.PhoneConfigs) && p.PhoneConfigs[i].PhoneTransform != nil {
		return p.PhoneConfigs[i].PhoneTransform.Delta()
	}
	if i == 0 {
		return p.PhoneTransform.Delta()
	}
	return geometry.Identity
}
