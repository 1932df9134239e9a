package compose

import (
	"image"
	"image/color"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/fonts"
	"github.com/matzehuels/storeshots/pkg/geometry"
)

// =============================================================================
// Tree
// =============================================================================

// Tree is a laid-out composition. All geometry is in output pixels and the
// tree carries everything a rasterizer needs, resolved images included.
type Tree struct {
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Scale    float64         `json:"scale"`
	LayoutID string          `json:"layout_id"`
	Variant  catalog.Variant `json:"variant,omitempty"`
	Layers   []Layer         `json:"layers"`
}

// LayerKind names a composition layer.
type LayerKind string

// Layer kinds, in paint order.
const (
	LayerBackground  LayerKind = "background"
	LayerDecorations LayerKind = "decorations"
	LayerText        LayerKind = "text"
	LayerPhone       LayerKind = "phone"
	LayerPills       LayerKind = "pills"
	LayerStats       LayerKind = "stats"
	LayerPlaceholder LayerKind = "placeholder"
)

// Layer is a group of nodes painted in slice order.
type Layer struct {
	Kind  LayerKind `json:"kind"`
	Index int       `json:"index,omitempty"`
	Nodes []Node    `json:"nodes"`
}

// Layer returns the first layer of the given kind and index.
func (t *Tree) Layer(kind LayerKind, index int) (Layer, bool) {
	for _, l := range t.Layers {
		if l.Kind == kind && l.Index == index {
			return l, true
		}
	}
	return Layer{}, false
}

// Kinds returns the layer kinds in paint order.
func (t *Tree) Kinds() []LayerKind {
	out := make([]LayerKind, len(t.Layers))
	for i, l := range t.Layers {
		out[i] = l.Kind
	}
	return out
}

// Devices returns every device node in paint order.
func (t *Tree) Devices() []*Device {
	var out []*Device
	for _, l := range t.Layers {
		for _, n := range l.Nodes {
			if d, ok := n.(*Device); ok {
				out = append(out, d)
			}
		}
	}
	return out
}

// =============================================================================
// Nodes
// =============================================================================

// Node is one drawable element. The set of node types is closed; the
// rasterizer switches over it exhaustively.
type Node interface {
	node()
}

// Shadow is a blurred, offset copy of a node's silhouette.
type Shadow struct {
	OffsetX float64     `json:"offset_x"`
	OffsetY float64     `json:"offset_y"`
	Blur    float64     `json:"blur"`
	Spread  float64     `json:"spread,omitempty"`
	Color   color.NRGBA `json:"color"`
}

// Fill is a solid or linear-gradient fill of a rectangle.
type Fill struct {
	Type  string        `json:"type"`
	Rect  geometry.Rect `json:"rect"`
	Color color.NRGBA   `json:"color"`

	// Stops are evenly spaced along the gradient line. A fill with stops
	// is a gradient; Color is then ignored.
	Stops []color.NRGBA `json:"stops,omitempty"`
	Angle float64       `json:"angle,omitempty"`
}

// ShapeKind selects a shape outline.
type ShapeKind string

// Shape kinds.
const (
	ShapeRect    ShapeKind = "rect"
	ShapeEllipse ShapeKind = "ellipse"
	ShapeBlob    ShapeKind = "blob"
)

// Corners are elliptical corner radii, clockwise from top-left. Each point
// holds the horizontal and vertical radius.
type Corners [4]geometry.Point

// UniformCorners returns circular corners of radius r.
func UniformCorners(r float64) Corners {
	p := geometry.Point{X: r, Y: r}
	return Corners{p, p, p, p}
}

// Shape is a filled outline rotated about its center.
type Shape struct {
	Type     string        `json:"type"`
	Shape    ShapeKind     `json:"shape"`
	Rect     geometry.Rect `json:"rect"`
	Corners  Corners       `json:"corners"`
	Rotation float64       `json:"rotation,omitempty"`
	Color    color.NRGBA   `json:"color"`
	Blur     float64       `json:"blur,omitempty"`
	Shadow   *Shadow       `json:"shadow,omitempty"`
}

// Line is one pre-broken line of text. X is the left edge and Baseline
// the baseline, both in pixels.
type Line struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Baseline float64 `json:"baseline"`
	Width    float64 `json:"width"`
}

// Text is a run of pre-broken lines in one face.
type Text struct {
	Type    string      `json:"type"`
	Font    fonts.Spec  `json:"font"`
	Color   color.NRGBA `json:"color"`
	Lines   []Line      `json:"lines"`
	Shadow  *Shadow     `json:"shadow,omitempty"`
	Opacity float64     `json:"opacity"`
}

// Icon is a vector glyph drawn into a square box.
type Icon struct {
	Type  string        `json:"type"`
	Icon  catalog.Icon  `json:"icon"`
	Rect  geometry.Rect `json:"rect"`
	Color color.NRGBA   `json:"color"`
}

// Laurel is a laurel branch in a 32×64 reference box. Mirrored branches
// face left.
type Laurel struct {
	Type    string        `json:"type"`
	Rect    geometry.Rect `json:"rect"`
	Mirror  bool          `json:"mirror,omitempty"`
	Color   color.NRGBA   `json:"color"`
	Opacity float64       `json:"opacity"`
}

// Placeholder is a labelled box drawn where content could not be resolved.
type Placeholder struct {
	Type       string        `json:"type"`
	Rect       geometry.Rect `json:"rect"`
	Radius     float64       `json:"radius"`
	Background color.NRGBA   `json:"background"`
	Label      *Text         `json:"label"`
}

// ImageState tells whether a device screen shows a picture.
type ImageState string

// Image states.
const (
	ImageShown       ImageState = "image"
	ImagePlaceholder ImageState = "placeholder"
	ImageEmpty       ImageState = "empty"
)

// StatusBar is the mock status bar drawn at the top of a screen.
type StatusBar struct {
	Rect    geometry.Rect `json:"rect"`
	Time    *Text         `json:"time"`
	Signal  geometry.Rect `json:"signal"`
	Wifi    geometry.Rect `json:"wifi"`
	Battery geometry.Rect `json:"battery"`
	Color   color.NRGBA   `json:"color"`
}

// Device is a phone mockup. Every rect is in unrotated canvas pixels; the
// whole device is rotated by Rotation degrees about Center.
type Device struct {
	Type     string         `json:"type"`
	Index    int            `json:"index"`
	DeviceID string         `json:"device_id"`
	Missing  bool           `json:"missing,omitempty"`
	Center   geometry.Point `json:"center"`
	Rotation float64        `json:"rotation"`
	Scale    float64        `json:"scale"`

	Frameless    bool          `json:"frameless,omitempty"`
	Frame        geometry.Rect `json:"frame"`
	FrameRadius  float64       `json:"frame_radius"`
	FrameColor   color.NRGBA   `json:"frame_color"`
	FrameShadow  *Shadow       `json:"frame_shadow,omitempty"`
	Bezel        geometry.Rect `json:"bezel"`
	BezelRadius  float64       `json:"bezel_radius"`
	BezelColor   color.NRGBA   `json:"bezel_color"`
	Screen       geometry.Rect `json:"screen"`
	ScreenRadius float64       `json:"screen_radius"`
	ScreenColor  color.NRGBA   `json:"screen_color"`

	Notch       catalog.NotchType `json:"notch"`
	NotchRect   geometry.Rect     `json:"notch_rect"`
	NotchCorner Corners           `json:"notch_corner"`

	ImageState  ImageState    `json:"image_state"`
	ImageSource string        `json:"image_source,omitempty"`
	ImageRect   geometry.Rect `json:"image_rect"`
	Image       image.Image   `json:"-"`

	// ImagePlaceholder is set when ImageState is ImagePlaceholder.
	ImagePlaceholder *ScreenPlaceholder `json:"image_placeholder,omitempty"`

	StatusBar       *StatusBar      `json:"status_bar,omitempty"`
	HomeIndicator   geometry.Rect   `json:"home_indicator"`
	HomeButton      geometry.Rect   `json:"home_button"`
	HomeButtonColor color.NRGBA     `json:"home_button_color"`
	Buttons         []geometry.Rect `json:"buttons,omitempty"`
	ButtonColor     color.NRGBA     `json:"button_color"`

	Selected        bool          `json:"selected,omitempty"`
	SelectionRect   geometry.Rect `json:"selection_rect"`
	SelectionRadius float64       `json:"selection_radius"`
	SelectionColor  color.NRGBA   `json:"selection_color"`

	// Label is set on missing devices.
	Label *Text `json:"label,omitempty"`
}

// ScreenPlaceholder is the "drop image here" hint inside an empty screen.
type ScreenPlaceholder struct {
	Top    color.NRGBA   `json:"top"`
	Bottom color.NRGBA   `json:"bottom"`
	Glyph  geometry.Rect `json:"glyph"`
	Label  *Text         `json:"label"`
}

func (*Fill) node()        {}
func (*Shape) node()       {}
func (*Text) node()        {}
func (*Icon) node()        {}
func (*Laurel) node()      {}
func (*Placeholder) node() {}
func (*Device) node()      {}

// Node type tags used in JSON output.
const (
	typeFill        = "fill"
	typeShape       = "shape"
	typeText        = "text"
	typeIcon        = "icon"
	typeLaurel      = "laurel"
	typePlaceholder = "placeholder"
	typeDevice      = "device"
)
