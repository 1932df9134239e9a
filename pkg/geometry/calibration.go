package geometry

import "math"

// Calibration holds the constants that couple the preview and the exporter.
// The renderer and every capture path must be handed the same value; this
// is what keeps a live preview and an exported file from drifting apart.
type Calibration struct {
	// ReserveMargin shrinks every phone inside its anchor cell so the frame
	// keeps visual margin around it.
	ReserveMargin float64 `json:"reserve_margin" toml:"reserve_margin" yaml:"reserve_margin"`

	// Oversample is the device scale factor used when a composition has to
	// be captured from a live element at preview resolution.
	Oversample float64 `json:"oversample" toml:"oversample" yaml:"oversample"`

	// ReferenceWidth and ReferenceHeight define the canvas on which device
	// frames, font sizes and decorations are specified in reference pixels.
	ReferenceWidth  float64 `json:"reference_width" toml:"reference_width" yaml:"reference_width"`
	ReferenceHeight float64 `json:"reference_height" toml:"reference_height" yaml:"reference_height"`
}

// Default calibration values.
const (
	DefaultReserveMargin   = 0.8
	DefaultOversample      = 2.0
	DefaultReferenceWidth  = 400.0
	DefaultReferenceHeight = 800.0
)

// DefaultCalibration returns the calibration used by the editor preview.
func DefaultCalibration() Calibration {
	return Calibration{
		ReserveMargin:   DefaultReserveMargin,
		Oversample:      DefaultOversample,
		ReferenceWidth:  DefaultReferenceWidth,
		ReferenceHeight: DefaultReferenceHeight,
	}
}

// WithDefaults fills zero fields with their defaults. Oversampling is
// clamped to at least 2 so live captures never lose resolution.
func (c Calibration) WithDefaults() Calibration {
	if c.ReserveMargin == 0 {
		c.ReserveMargin = DefaultReserveMargin
	}
	if c.Oversample < DefaultOversample {
		c.Oversample = DefaultOversample
	}
	if c.ReferenceWidth <= 0 {
		c.ReferenceWidth = DefaultReferenceWidth
	}
	if c.ReferenceHeight <= 0 {
		c.ReferenceHeight = DefaultReferenceHeight
	}
	return c
}

// CanvasScale converts reference pixels into output pixels for a canvas of
// the given size. The smaller axis ratio wins so elements designed for the
// reference canvas never overflow a canvas of a different aspect.
func (c Calibration) CanvasScale(width, height float64) float64 {
	c = c.WithDefaults()
	if width <= 0 || height <= 0 {
		return 0
	}
	return math.Min(width/c.ReferenceWidth, height/c.ReferenceHeight)
}
