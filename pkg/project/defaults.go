package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/storeshots/pkg/catalog"
)

// Default content of a new project.
const (
	DefaultTitle      = "Your App Title"
	DefaultSubtitle   = "Amazing feature description"
	DefaultFontFamily = "Inter"
	DefaultGradientID = "sunset"
	DefaultSolidColor = "#3b82f6"
)

// NewID returns a fresh project identifier.
func NewID() string {
	return uuid.NewString()
}

// DefaultBackground is the background of a new project: the first gradient
// preset, with a blue solid color kept for when the user switches type.
func DefaultBackground() Background {
	bg := Background{Type: BackgroundGradient, Color: DefaultSolidColor, Angle: 135}
	if g, ok := catalog.LookupGradient(DefaultGradientID); ok {
		bg.Colors = g.Colors
		bg.Angle = g.Angle
	}
	return bg
}

// DefaultTextStyle is the headline style of a new project.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		FontFamily:    DefaultFontFamily,
		TitleSize:     32,
		SubtitleSize:  18,
		FontWeight:    600,
		Color:         "#ffffff",
		ShadowEnabled: true,
		ShadowColor:   "rgba(0, 0, 0, 0.3)",
		ShadowBlur:    4,
	}
}

// DefaultImageTransform shows the screenshot unzoomed and centered.
func DefaultImageTransform() ImageTransform {
	return ImageTransform{Zoom: 1}
}

// DefaultFeaturePills are the placeholder pills of a new project.
func DefaultFeaturePills() []FeaturePill {
	return []FeaturePill{
		{Text: "Feature 1", Icon: "star"},
		{Text: "Feature 2", Icon: "heart"},
		{Text: "Feature 3", Icon: "code"},
		{Text: "Feature 4", Icon: "palette"},
	}
}

// DefaultStats are the placeholder stats of a new project.
func DefaultStats() []Stat {
	return []Stat{
		{Value: "1M+", Label: "Downloads", ShowLaurel: true},
		{Value: "4.8", Label: "Rating", ShowLaurel: true},
		{Value: "99%", Label: "Satisfaction", ShowLaurel: true},
	}
}

// New returns a project with every field at its default and a fresh id.
func New() Project {
	now := time.Now().UTC()
	return Project{
		ID:                   NewID(),
		Title:                DefaultTitle,
		Subtitle:             DefaultSubtitle,
		DeviceFrameID:        catalog.DefaultDeviceID,
		LayoutID:             catalog.DefaultLayoutID,
		Background:           DefaultBackground(),
		ImageTransform:       DefaultImageTransform(),
		TextStyle:            DefaultTextStyle(),
		PhoneTransform:       PhoneTransform{Scale: 1},
		TextTransform:        Offset{Scale: 1},
		FeaturePills:         DefaultFeaturePills(),
		ShowFeaturePills:     true,
		FeaturePillsOffset:   Offset{Scale: 1},
		FeaturePillsPosition: PlaceFirst,
		Stats:                DefaultStats(),
		ShowStats:            true,
		StatsOffset:          Offset{Scale: 1},
		StatsPosition:        PlaceSecond,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Normalize fills fields a hand-written project file may omit. It never
// overrides values that are set.
func (p *Project) Normalize() {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.DeviceFrameID == "" {
		p.DeviceFrameID = catalog.DefaultDeviceID
	}
	if p.LayoutID == "" {
		p.LayoutID = catalog.DefaultLayoutID
	}
	if p.Background.Type == "" {
		bg := DefaultBackground()
		if p.Background.Color != "" {
			bg = Background{Type: BackgroundSolid, Color: p.Background.Color}
		}
		p.Background = bg
	}
	if p.TextStyle == (TextStyle{}) {
		p.TextStyle = DefaultTextStyle()
	}
	if p.ImageTransform == (ImageTransform{}) {
		p.ImageTransform = DefaultImageTransform()
	}
	if p.PhoneTransform == (PhoneTransform{}) {
		p.PhoneTransform.Scale = 1
	}
	for _, o := range []*Offset{&p.TextTransform, &p.FeaturePillsOffset, &p.StatsOffset} {
		if *o == (Offset{}) {
			o.Scale = 1
		}
	}
	if p.FeaturePillsPosition == "" {
		p.FeaturePillsPosition = PlaceFirst
	}
	if p.StatsPosition == "" {
		p.StatsPosition = PlaceSecond
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
}
