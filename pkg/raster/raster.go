// Package raster draws a composed visual tree into a pixel buffer.
//
// Rasterize paints the layers of a compose.Tree in slice order with gg at
// exactly the tree's pixel size. The tree is already laid out at the
// target resolution, so nothing is resampled afterwards and the output is
// a pure function of the tree.
//
// Blurred decorations and shadows are painted onto scratch layers,
// blurred with imaging.Blur and composited back. Devices are drawn
// unrotated on their own surface and composited under their rotation, so
// clipping, text and images all follow the device transform.
package raster

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/storeshots/pkg/compose"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/fonts"
	"github.com/matzehuels/storeshots/pkg/geometry"
)

// Rasterize draws tree at tree.Width×tree.Height pixels.
func Rasterize(tree *compose.Tree) (*image.NRGBA, error) {
	if tree == nil || tree.Width <= 0 || tree.Height <= 0 {
		return nil, errors.New(errors.ErrCodeEncodingFailed, "composition has no drawable area")
	}

	faces := make(faceCache)
	main := newSurface(geometry.Rect{W: float64(tree.Width), H: float64(tree.Height)}, faces)
	for _, layer := range tree.Layers {
		for _, n := range layer.Nodes {
			if err := main.node(n); err != nil {
				return nil, err
			}
		}
	}
	return imaging.Clone(main.dc.Image()), nil
}

// faceCache shares faces between surfaces of one Rasterize call. Faces
// are not safe for concurrent use, so the cache is never shared between
// calls.
type faceCache map[fonts.Spec]font.Face

func (c faceCache) get(s fonts.Spec) font.Face {
	s.Weight = fonts.Bucket(s.Weight)
	f, ok := c[s]
	if !ok {
		f = fonts.NewFace(s)
		c[s] = f
	}
	return f
}

// surface is a gg context whose user space is canvas pixels. bounds is
// the canvas area the context's pixels cover.
type surface struct {
	dc     *gg.Context
	bounds geometry.Rect
	faces  faceCache
}

// newSurface allocates a surface covering r, snapped outwards to whole
// pixels.
func newSurface(r geometry.Rect, faces faceCache) *surface {
	x0, y0 := math.Floor(r.X), math.Floor(r.Y)
	x1, y1 := math.Ceil(r.X+r.W), math.Ceil(r.Y+r.H)
	w, h := max(int(x1-x0), 1), max(int(y1-y0), 1)
	dc := gg.NewContext(w, h)
	dc.Translate(-x0, -y0)
	return &surface{
		dc:     dc,
		bounds: geometry.Rect{X: x0, Y: y0, W: float64(w), H: float64(h)},
		faces:  faces,
	}
}

func (s *surface) node(n compose.Node) error {
	switch v := n.(type) {
	case *compose.Fill:
		s.fill(v)
	case *compose.Shape:
		s.shape(v)
	case *compose.Text:
		s.text(v)
	case *compose.Icon:
		drawIcon(s.dc, v.Icon, v.Rect, v.Color)
	case *compose.Laurel:
		drawLaurel(s.dc, v)
	case *compose.Placeholder:
		s.placeholder(v)
	case *compose.Device:
		s.device(v)
	default:
		return errors.New(errors.ErrCodeInternal, "unknown node type %T", n)
	}
	return nil
}

// soft draws fn onto a scratch layer covering area, blurs it with a
// Gaussian of the given sigma and composites it. Large blurs are computed
// at reduced resolution when scalable is set; fn must then draw only
// paths, since gg does not scale glyphs.
func (s *surface) soft(area geometry.Rect, sigma float64, scalable bool, fn func(dc *gg.Context)) {
	if sigma <= 0 {
		fn(s.dc)
		return
	}
	pad := math.Ceil(3 * sigma)
	r := area.Inset(-pad, -pad, -pad, -pad).Intersect(s.bounds)
	if r.Empty() {
		return
	}
	k := 1.0
	if scalable {
		k = math.Max(1, sigma/maxScratchSigma)
	}
	w, h := max(int(math.Ceil(r.W/k)), 1), max(int(math.Ceil(r.H/k)), 1)
	tmp := gg.NewContext(w, h)
	tmp.Scale(1/k, 1/k)
	tmp.Translate(-r.X, -r.Y)
	fn(tmp)

	blurred := imaging.Blur(tmp.Image(), sigma/k)
	s.dc.Push()
	s.dc.Translate(r.X, r.Y)
	s.dc.Scale(k, k)
	s.dc.DrawImage(blurred, 0, 0)
	s.dc.Pop()
}

// maxScratchSigma bounds the blur radius computed at full resolution.
const maxScratchSigma = 6.0
