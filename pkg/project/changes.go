package project

import (
	"maps"
	"slices"

	"github.com/matzehuels/storeshots/pkg/catalog"
)

// Changes is a partial project document: every non-nil field becomes one
// Patch. It is the wire form of an edit for the HTTP API and the CLI.
type Changes struct {
	Title    *string `json:"title,omitempty"`
	Subtitle *string `json:"subtitle,omitempty"`
	Badge    *string `json:"badge,omitempty"`
	Image    *string `json:"image,omitempty"`

	LayoutID      *string `json:"layout_id,omitempty"`
	DeviceFrameID *string `json:"device_frame_id,omitempty"`

	// Background replaces the background. GradientPreset, applied after
	// it, switches to a named preset instead.
	Background     *Background `json:"background,omitempty"`
	GradientPreset *string     `json:"gradient_preset,omitempty"`

	ImageTransform *ImageTransform `json:"image_transform,omitempty"`
	TextStyle      *TextStyle      `json:"text_style,omitempty"`
	PhoneTransform *PhoneTransform `json:"phone_transform,omitempty"`
	TextTransform  *Offset         `json:"text_transform,omitempty"`

	FeaturePills         *[]FeaturePill `json:"feature_pills,omitempty"`
	ShowFeaturePills     *bool          `json:"show_feature_pills,omitempty"`
	FeaturePillsOffset   *Offset        `json:"feature_pills_offset,omitempty"`
	FeaturePillsPosition *Placement     `json:"feature_pills_position,omitempty"`

	Stats         *[]Stat    `json:"stats,omitempty"`
	ShowStats     *bool      `json:"show_stats,omitempty"`
	StatsOffset   *Offset    `json:"stats_offset,omitempty"`
	StatsPosition *Placement `json:"stats_position,omitempty"`

	// PairedTuning replaces both paired overrides at once; a nil member
	// restores its catalog default.
	PairedTuning *PairedTuning `json:"paired_tuning,omitempty"`

	PhoneConfigs map[int]PhoneConfig `json:"phone_configs,omitempty"`

	// SelectedPhone selects a phone; -1 clears the selection.
	SelectedPhone *int `json:"selected_phone,omitempty"`
}

// PairedTuning is the paired layout rotation and scale override.
type PairedTuning struct {
	Rotation *float64 `json:"rotation"`
	Scale    *float64 `json:"scale"`
}

// Patches converts the document into patches, in field order.
func (c Changes) Patches() []Patch {
	var ps []Patch
	add := func(p Patch) { ps = append(ps, p) }

	if c.Title != nil {
		add(SetTitle(*c.Title))
	}
	if c.Subtitle != nil {
		add(SetSubtitle(*c.Subtitle))
	}
	if c.Badge != nil {
		add(SetBadge(*c.Badge))
	}
	if c.Image != nil {
		add(SetImage(*c.Image))
	}
	if c.LayoutID != nil {
		add(SetLayout(*c.LayoutID))
	}
	if c.DeviceFrameID != nil {
		add(SetDevice(*c.DeviceFrameID))
	}
	if b := c.Background; b != nil {
		if b.Type == BackgroundGradient {
			add(SetGradientBackground(b.Colors, b.Angle))
		} else {
			add(SetSolidBackground(b.Color))
		}
	}
	if c.GradientPreset != nil {
		add(UseGradientPreset(*c.GradientPreset))
	}
	if c.ImageTransform != nil {
		add(SetImageTransform(*c.ImageTransform))
	}
	if c.TextStyle != nil {
		add(SetTextStyle(*c.TextStyle))
	}
	if c.PhoneTransform != nil {
		add(SetPhoneTransform(*c.PhoneTransform))
	}
	if c.TextTransform != nil {
		add(SetTextTransform(*c.TextTransform))
	}
	if c.FeaturePills != nil {
		add(SetFeaturePills(*c.FeaturePills))
	}
	if c.ShowFeaturePills != nil {
		add(ShowFeaturePills(*c.ShowFeaturePills))
	}
	if c.FeaturePillsOffset != nil {
		add(SetFeaturePillsOffset(*c.FeaturePillsOffset))
	}
	if c.FeaturePillsPosition != nil {
		add(SetFeaturePillsPosition(*c.FeaturePillsPosition))
	}
	if c.Stats != nil {
		add(SetStats(*c.Stats))
	}
	if c.ShowStats != nil {
		add(ShowStats(*c.ShowStats))
	}
	if c.StatsOffset != nil {
		add(SetStatsOffset(*c.StatsOffset))
	}
	if c.StatsPosition != nil {
		add(SetStatsPosition(*c.StatsPosition))
	}
	if t := c.PairedTuning; t != nil {
		add(SetPairedTuning(t.Rotation, t.Scale))
	}
	for _, i := range []int{0, 1} {
		if pc, ok := c.PhoneConfigs[i]; ok {
			add(SetPhoneConfig(i, pc))
		}
	}
	// Out-of-range indexes still produce a patch so Apply rejects them.
	for i := range c.PhoneConfigs {
		if i != 0 && i != 1 {
			add(SetPhoneConfig(i, PhoneConfig{}))
		}
	}
	if c.SelectedPhone != nil {
		add(SelectPhone(*c.SelectedPhone))
	}
	return ps
}

// IsEmpty reports whether the document changes nothing.
func (c Changes) IsEmpty() bool { return len(c.Patches()) == 0 }

// CheckCatalog returns CATALOG_LOOKUP_FAILED when the document names a
// layout or device the catalogs do not know. Empty ids are left to the
// patches, which reject them as invalid input.
func (c Changes) CheckCatalog() error {
	if c.LayoutID != nil && *c.LayoutID != "" {
		if _, err := catalog.GetLayout(*c.LayoutID); err != nil {
			return err
		}
	}
	devices := make([]string, 0, 1+len(c.PhoneConfigs))
	if c.DeviceFrameID != nil {
		devices = append(devices, *c.DeviceFrameID)
	}
	for _, i := range phoneIndexes(c.PhoneConfigs) {
		devices = append(devices, c.PhoneConfigs[i].DeviceFrameID)
	}
	for _, id := range devices {
		if id == "" {
			continue
		}
		if _, err := catalog.GetDevice(id); err != nil {
			return err
		}
	}
	return nil
}

// ImageSources returns the non-empty image sources the document sets,
// the shared image first and then per-phone images by index.
func (c Changes) ImageSources() []string {
	var srcs []string
	if c.Image != nil && *c.Image != "" {
		srcs = append(srcs, *c.Image)
	}
	for _, i := range phoneIndexes(c.PhoneConfigs) {
		if img := c.PhoneConfigs[i].Image; img != nil && *img != "" {
			srcs = append(srcs, *img)
		}
	}
	return srcs
}

func phoneIndexes(m map[int]PhoneConfig) []int {
	return slices.Sorted(maps.Keys(m))
}
