package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/matzehuels/storeshots/pkg/compose"
	"github.com/matzehuels/storeshots/pkg/geometry"
	"github.com/matzehuels/storeshots/pkg/paint"
)

// =============================================================================
// Fills
// =============================================================================

func (s *surface) fill(f *compose.Fill) {
	dc := s.dc
	r := f.Rect
	if len(f.Stops) < 2 {
		dc.SetColor(f.Color)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		dc.Fill()
		return
	}
	p0, p1 := gradientLine(r, f.Angle)
	dc.SetFillStyle(s.linearGradient(p0, p1, f.Stops))
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Fill()
}

// gradientLine returns the start and end of a CSS linear-gradient line
// for angle degrees: 0 points up, 90 points right. The line passes
// through the center and is long enough for the corners to receive the
// first and last stop.
func gradientLine(r geometry.Rect, angle float64) (geometry.Point, geometry.Point) {
	rad := angle * math.Pi / 180
	dir := geometry.Point{X: math.Sin(rad), Y: -math.Cos(rad)}
	length := math.Abs(r.W*dir.X) + math.Abs(r.H*dir.Y)
	c := r.Center()
	half := dir.Mul(length / 2)
	return c.Sub(half), c.Add(half)
}

// linearGradient builds a gradient with evenly spaced stops. gg evaluates
// patterns in device pixels, so the endpoints are mapped through the
// current transform.
func (s *surface) linearGradient(p0, p1 geometry.Point, stops []color.NRGBA) gg.Gradient {
	x0, y0 := s.dc.TransformPoint(p0.X, p0.Y)
	x1, y1 := s.dc.TransformPoint(p1.X, p1.Y)
	g := gg.NewLinearGradient(x0, y0, x1, y1)
	last := float64(len(stops) - 1)
	for i, c := range stops {
		g.AddColorStop(float64(i)/last, c)
	}
	return g
}

// =============================================================================
// Shapes
// =============================================================================

func (s *surface) shape(sh *compose.Shape) {
	outline := func(dc *gg.Context, r geometry.Rect) {
		c := r.Center()
		dc.Push()
		if sh.Rotation != 0 {
			dc.RotateAbout(gg.Radians(sh.Rotation), c.X, c.Y)
		}
		if sh.Shape == compose.ShapeEllipse {
			dc.DrawEllipse(c.X, c.Y, r.W/2, r.H/2)
		} else {
			roundedPath(dc, r, sh.Corners)
		}
		dc.Pop()
	}

	if sh.Shadow != nil && sh.Shadow.Color.A > 0 {
		sr := shadowRect(sh.Rect, sh.Shadow)
		s.soft(sr.RotatedBounds(sh.Rotation), sh.Shadow.Blur/2, true, func(dc *gg.Context) {
			outline(dc, sr)
			dc.SetColor(sh.Shadow.Color)
			dc.Fill()
		})
	}
	s.soft(sh.Rect.RotatedBounds(sh.Rotation), sh.Blur, true, func(dc *gg.Context) {
		outline(dc, sh.Rect)
		dc.SetColor(sh.Color)
		dc.Fill()
	})
}

// shadowRect offsets r and grows it by the shadow spread.
func shadowRect(r geometry.Rect, sh *compose.Shadow) geometry.Rect {
	sp := sh.Spread
	return r.Inset(-sp, -sp, -sp, -sp).Translate(geometry.Point{X: sh.OffsetX, Y: sh.OffsetY})
}

// roundedPath adds a rectangle with elliptical corners to the current
// path. Radii that do not fit are scaled down together, as CSS does.
func roundedPath(dc *gg.Context, r geometry.Rect, c compose.Corners) {
	if r.Empty() {
		return
	}
	c = fitCorners(r, c)
	tl, tr, br, bl := c[0], c[1], c[2], c[3]

	dc.NewSubPath()
	dc.MoveTo(r.X+tl.X, r.Y)
	dc.LineTo(r.X+r.W-tr.X, r.Y)
	corner(dc, r.X+r.W-tr.X, r.Y+tr.Y, tr, -math.Pi/2, 0)
	dc.LineTo(r.X+r.W, r.Y+r.H-br.Y)
	corner(dc, r.X+r.W-br.X, r.Y+r.H-br.Y, br, 0, math.Pi/2)
	dc.LineTo(r.X+bl.X, r.Y+r.H)
	corner(dc, r.X+bl.X, r.Y+r.H-bl.Y, bl, math.Pi/2, math.Pi)
	dc.LineTo(r.X, r.Y+tl.Y)
	corner(dc, r.X+tl.X, r.Y+tl.Y, tl, math.Pi, 3*math.Pi/2)
	dc.ClosePath()
}

func corner(dc *gg.Context, cx, cy float64, rad geometry.Point, a1, a2 float64) {
	if rad.X <= 0 || rad.Y <= 0 {
		return
	}
	dc.DrawEllipticalArc(cx, cy, rad.X, rad.Y, a1, a2)
}

func fitCorners(r geometry.Rect, c compose.Corners) compose.Corners {
	f := 1.0
	limit := func(side, a, b float64) {
		if a+b > side && a+b > 0 {
			f = math.Min(f, side/(a+b))
		}
	}
	limit(r.W, c[0].X, c[1].X)
	limit(r.W, c[3].X, c[2].X)
	limit(r.H, c[0].Y, c[3].Y)
	limit(r.H, c[1].Y, c[2].Y)
	for i := range c {
		c[i] = geometry.Point{X: math.Max(c[i].X*f, 0), Y: math.Max(c[i].Y*f, 0)}
	}
	return c
}

func roundRect(dc *gg.Context, r geometry.Rect, radius float64, c color.Color) {
	roundedPath(dc, r, compose.UniformCorners(radius))
	dc.SetColor(c)
	dc.Fill()
}

// =============================================================================
// Text
// =============================================================================

func (s *surface) text(t *compose.Text) {
	if t == nil || len(t.Lines) == 0 {
		return
	}
	face := s.faces.get(t.Font)
	opacity := t.Opacity
	if opacity <= 0 {
		return
	}

	if sh := t.Shadow; sh != nil && sh.Color.A > 0 {
		off := geometry.Point{X: sh.OffsetX, Y: sh.OffsetY}
		s.soft(textBounds(t).Translate(off), sh.Blur/2, false, func(dc *gg.Context) {
			dc.SetFontFace(face)
			dc.SetColor(paint.WithAlpha(sh.Color, opacity))
			for _, l := range t.Lines {
				dc.DrawString(l.Text, l.X+off.X, l.Baseline+off.Y)
			}
		})
	}

	s.dc.SetFontFace(face)
	s.dc.SetColor(paint.WithAlpha(t.Color, opacity))
	for _, l := range t.Lines {
		s.dc.DrawString(l.Text, l.X, l.Baseline)
	}
}

// textBounds is a conservative box around the glyphs of t.
func textBounds(t *compose.Text) geometry.Rect {
	var out geometry.Rect
	for i, l := range t.Lines {
		r := geometry.Rect{X: l.X, Y: l.Baseline - t.Font.Size, W: l.Width, H: t.Font.Size * 1.3}
		if i == 0 {
			out = r
		} else {
			out = union(out, r)
		}
	}
	return out
}

// =============================================================================
// Placeholders and images
// =============================================================================

func (s *surface) placeholder(p *compose.Placeholder) {
	roundRect(s.dc, p.Rect, p.Radius, p.Background)
	s.text(p.Label)
}

// image draws img stretched to r. Only the visible part of the source is
// resampled, so heavily zoomed images stay cheap.
func (s *surface) image(img image.Image, r geometry.Rect) {
	if img == nil || r.Empty() {
		return
	}
	vis := r.Intersect(s.bounds)
	if vis.Empty() {
		return
	}
	b := img.Bounds()
	sx, sy := float64(b.Dx())/r.W, float64(b.Dy())/r.H
	src := image.Rect(
		b.Min.X+int(math.Floor((vis.X-r.X)*sx)),
		b.Min.Y+int(math.Floor((vis.Y-r.Y)*sy)),
		b.Min.X+int(math.Ceil((vis.X+vis.W-r.X)*sx)),
		b.Min.Y+int(math.Ceil((vis.Y+vis.H-r.Y)*sy)),
	).Intersect(b)
	if src.Empty() {
		return
	}
	dst := geometry.Rect{
		X: r.X + float64(src.Min.X-b.Min.X)/sx,
		Y: r.Y + float64(src.Min.Y-b.Min.Y)/sy,
		W: float64(src.Dx()) / sx,
		H: float64(src.Dy()) / sy,
	}
	tw, th := max(int(math.Round(dst.W)), 1), max(int(math.Round(dst.H)), 1)
	resized := imaging.Resize(imaging.Crop(img, src), tw, th, imaging.Lanczos)

	s.dc.Push()
	s.dc.Translate(dst.X, dst.Y)
	s.dc.Scale(dst.W/float64(tw), dst.H/float64(th))
	s.dc.DrawImage(resized, 0, 0)
	s.dc.Pop()
}

// =============================================================================
// Helpers
// =============================================================================

// fade multiplies the alpha of c by o.
func union(a, b geometry.Rect) geometry.Rect {
	x0, y0 := math.Min(a.X, b.X), math.Min(a.Y, b.Y)
	x1, y1 := math.Max(a.X+a.W, b.X+b.W), math.Max(a.Y+a.H, b.Y+b.H)
	return geometry.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// grow expands r by d on every side.
func grow(r geometry.Rect, d float64) geometry.Rect {
	return geometry.Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}
