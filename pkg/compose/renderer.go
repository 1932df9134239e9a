// Package compose lays out a screenshot project as a visual tree.
//
// The renderer is a pure function of its inputs: the project, the output
// size, the render options, the catalogs, the calibration and the resolved
// images. It never reads the project store and never draws pixels; the
// tree it returns is handed to a rasterizer.
//
// Layers are emitted in strict paint order:
//
//	background → decorations → text → phone 0 → phone 1 → pills → stats
//
// Every size in the catalogs and in the original editor is given in
// reference pixels on a 400×800 canvas. The renderer multiplies them by
// the canvas scale so a composition looks the same at any output size.
//
// Catalog misses and unreadable images are not errors. They are recovered
// into placeholder nodes so a broken project still renders something
// meaningful. The only errors are invalid sizes, invalid options and
// cancellation.
package compose

import (
	"context"
	"image/color"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/fonts"
	"github.com/matzehuels/storeshots/pkg/geometry"
	"github.com/matzehuels/storeshots/pkg/imagesrc"
	"github.com/matzehuels/storeshots/pkg/paint"
	"github.com/matzehuels/storeshots/pkg/project"
)

// Options control a single render.
type Options struct {
	// Variant selects one half of a paired layout. It is ignored for
	// layouts that are not paired.
	Variant catalog.Variant `json:"variant,omitempty"`

	// Placeholders draws the "drop image here" hint in empty screens.
	// Exports leave it off so missing images render as a plain screen.
	Placeholders bool `json:"placeholders,omitempty"`

	// Selection draws the selection ring around the phone the editor has
	// selected. Only previews set it.
	Selection bool `json:"selection,omitempty"`
}

// Renderer builds visual trees.
type Renderer struct {
	Calibration geometry.Calibration
	Images      imagesrc.Resolver
	Measurer    fonts.Measurer
	Logger      *log.Logger
}

// NewRenderer creates a renderer. Nil images resolve nothing, a nil
// measurer uses the embedded fonts and a nil logger discards output.
func NewRenderer(cal geometry.Calibration, images imagesrc.Resolver, measurer fonts.Measurer, logger *log.Logger) *Renderer {
	if measurer == nil {
		measurer = fonts.NewMeasurer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Renderer{
		Calibration: cal.WithDefaults(),
		Images:      images,
		Measurer:    measurer,
		Logger:      logger,
	}
}

// Palette used for chrome the project does not style.
var (
	colorGray400  = paint.MustParse("#9ca3af")
	colorGray500  = paint.MustParse("#6b7280")
	colorGray600  = paint.MustParse("#4b5563")
	colorGray700  = paint.MustParse("#374151")
	colorGray800  = paint.MustParse("#1f2937")
	colorGray900  = paint.MustParse("#111827")
	colorWhite    = paint.MustParse("#ffffff")
	colorBlack    = paint.MustParse("#000000")
	colorSelected = paint.MustParse("rgba(59, 130, 246, 0.8)")
	colorFallback = paint.MustParse(project.DefaultSolidColor)
)

// render carries the per-call state of one Render.
type render struct {
	*Renderer
	ctx    context.Context
	p      project.Project
	opts   Options
	w, h   float64
	cs     float64
	layout catalog.Layout
}

// Render lays out p at width×height pixels.
func (r *Renderer) Render(ctx context.Context, p project.Project, width, height int, opts Options) (*Tree, error) {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	if !opts.Variant.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown paired variant %q", opts.Variant)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.FromContext(err, "render %s", p.ID)
	}

	w, h := float64(width), float64(height)
	st := &render{
		Renderer: r,
		ctx:      ctx,
		p:        p,
		opts:     opts,
		w:        w,
		h:        h,
		cs:       r.Calibration.CanvasScale(w, h),
	}

	tree := &Tree{Width: width, Height: height, Scale: st.cs, LayoutID: p.LayoutID}
	tree.Layers = append(tree.Layers, Layer{Kind: LayerBackground, Nodes: []Node{st.background()}})

	base, ok := catalog.LookupLayout(p.LayoutID)
	if !ok {
		r.Logger.Warn("layout not found", "project", p.ID, "layout", p.LayoutID)
		tree.Layers = append(tree.Layers, Layer{Kind: LayerPlaceholder, Nodes: []Node{st.placeholder("Layout not found")}})
		return tree, nil
	}
	st.layout = base.Resolve(opts.Variant, p.PairedOverrides())
	tree.Variant = st.layout.Variant

	add := func(kind LayerKind, index int, nodes []Node) {
		if len(nodes) > 0 {
			tree.Layers = append(tree.Layers, Layer{Kind: kind, Index: index, Nodes: nodes})
		}
	}

	add(LayerDecorations, 0, st.decorations())
	add(LayerText, 0, st.textBlock())
	for i := 0; i < st.layout.PhoneCount && i < 2; i++ {
		if i == 1 && st.layout.SecondPhone == nil {
			break
		}
		dev, err := st.device(i)
		if err != nil {
			return nil, err
		}
		add(LayerPhone, i, []Node{dev})
	}
	add(LayerPills, 0, st.pills())
	add(LayerStats, 0, st.stats())

	return tree, nil
}

// =============================================================================
// Background
// =============================================================================

func (st *render) background() Node {
	bg := st.p.Background
	fill := &Fill{Type: typeFill, Rect: geometry.Rect{W: st.w, H: st.h}}

	if bg.Type == project.BackgroundGradient {
		for _, c := range bg.Colors {
			if nc, err := paint.Parse(c); err == nil {
				fill.Stops = append(fill.Stops, nc)
			}
		}
		if len(fill.Stops) == 1 {
			fill.Color = fill.Stops[0]
			fill.Stops = nil
		}
		if len(fill.Stops) > 1 {
			fill.Angle = bg.Angle
			return fill
		}
		if len(fill.Stops) == 0 && fill.Color == (color.NRGBA{}) {
			fill.Color = paint.ParseOr(bg.Color, colorFallback)
		}
		return fill
	}
	fill.Color = paint.ParseOr(bg.Color, colorFallback)
	return fill
}

// =============================================================================
// Placeholder
// =============================================================================

func (st *render) placeholder(label string) Node {
	return st.labelBox(label, geometry.Point{X: st.w / 2, Y: st.h / 2}, 32, 8)
}

// labelBox builds a gray box with a centered gray label, padded by pad
// reference pixels.
func (st *render) labelBox(label string, center geometry.Point, pad, radius float64) *Placeholder {
	spec := fonts.Spec{Family: fonts.FamilySans, Weight: fonts.WeightRegular, Size: 16 * st.cs}
	tw := st.Measurer.Width(label, spec)
	lh := fonts.LineHeight(spec, 1.5)
	box := geometry.RectAround(center, tw+2*pad*st.cs, lh+2*pad*st.cs)
	return &Placeholder{
		Type:       typePlaceholder,
		Rect:       box,
		Radius:     radius * st.cs,
		Background: colorGray800,
		Label:      st.centeredLine(label, spec, colorGray400, center),
	}
}

// centeredLine lays out a single line centered on c.
func (st *render) centeredLine(s string, spec fonts.Spec, c color.NRGBA, center geometry.Point) *Text {
	tw := st.Measurer.Width(s, spec)
	asc, desc := st.Measurer.Metrics(spec)
	return &Text{
		Type:    typeText,
		Font:    spec,
		Color:   c,
		Opacity: 1,
		Lines: []Line{{
			Text:     s,
			X:        center.X - tw/2,
			Baseline: center.Y + (asc-desc)/2,
			Width:    tw,
		}},
	}
}

// =============================================================================
// Decorations
// =============================================================================

func (st *render) decorations() []Node {
	cs, w, h := st.cs, st.w, st.h
	white := func(a float64) color.NRGBA { return paint.WithAlpha(colorWhite, a) }
	circle := func(x, y, d, alpha, blur float64) Node {
		return &Shape{
			Type:    typeShape,
			Shape:   ShapeEllipse,
			Rect:    geometry.Rect{X: x, Y: y, W: d, H: d},
			Corners: UniformCorners(d / 2),
			Color:   white(alpha),
			Blur:    blur,
		}
	}

	switch st.layout.Decorations {
	case catalog.DecorationCircles:
		return []Node{
			circle(w+80*cs-256*cs, -80*cs, 256*cs, 0.10, 24*cs),
			circle(-80*cs, h+80*cs-192*cs, 192*cs, 0.10, 24*cs),
			circle(-40*cs, 0.33*h, 128*cs, 0.05, 16*cs),
			circle(w+40*cs-160*cs, h-0.25*h-160*cs, 160*cs, 0.05, 16*cs),
		}
	case catalog.DecorationShapes:
		return []Node{
			&Shape{Type: typeShape, Shape: ShapeRect, Rect: geometry.Rect{X: 40 * cs, Y: 40 * cs, W: 80 * cs, H: 80 * cs},
				Corners: UniformCorners(8 * cs), Rotation: 45, Color: white(0.10), Blur: 4 * cs},
			&Shape{Type: typeShape, Shape: ShapeRect, Rect: geometry.Rect{X: w - 40*cs - 64*cs, Y: h - 80*cs - 64*cs, W: 64 * cs, H: 64 * cs},
				Corners: UniformCorners(8 * cs), Rotation: 12, Color: white(0.10), Blur: 4 * cs},
			&Shape{Type: typeShape, Shape: ShapeRect, Rect: geometry.Rect{X: w - 20*cs - 48*cs, Y: h / 2, W: 48 * cs, H: 96 * cs},
				Corners: UniformCorners(24 * cs), Rotation: -12, Color: white(0.05)},
		}
	case catalog.DecorationBlobs:
		return []Node{
			&Shape{Type: typeShape, Shape: ShapeBlob, Rect: geometry.Rect{X: w + 80*cs - 320*cs, Y: -80 * cs, W: 320 * cs, H: 320 * cs},
				Corners: blobCorners(320*cs, [4]float64{.60, .40, .30, .70}, [4]float64{.60, .30, .70, .40}),
				Color:   white(0.10), Blur: 48 * cs},
			&Shape{Type: typeShape, Shape: ShapeBlob, Rect: geometry.Rect{X: -80 * cs, Y: h + 80*cs - 256*cs, W: 256 * cs, H: 256 * cs},
				Corners: blobCorners(256*cs, [4]float64{.40, .60, .70, .30}, [4]float64{.40, .70, .30, .60}),
				Color:   white(0.10), Blur: 48 * cs},
		}
	}
	return nil
}

// blobCorners converts percent border radii of a square of side d.
func blobCorners(d float64, horiz, vert [4]float64) Corners {
	var c Corners
	for i := range c {
		c[i] = geometry.Point{X: horiz[i] * d, Y: vert[i] * d}
	}
	return c
}
