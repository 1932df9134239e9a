package raster

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/storeshots/pkg/compose"
	"github.com/matzehuels/storeshots/pkg/geometry"
	"github.com/matzehuels/storeshots/pkg/paint"
)

var (
	homeIndicatorColor = color.NRGBA{255, 255, 255, 153}
	selectionGlowAlpha = 0.35
)

// device draws d on its own unrotated surface and composites it under
// the device rotation.
func (s *surface) device(d *compose.Device) {
	local := deviceBounds(d).Intersect(rotatedAbout(s.bounds, -d.Rotation, d.Center))
	if local.Empty() {
		return
	}
	off := newSurface(local, s.faces)
	off.deviceBody(d)

	s.dc.Push()
	if d.Rotation != 0 {
		s.dc.RotateAbout(gg.Radians(d.Rotation), d.Center.X, d.Center.Y)
	}
	s.dc.DrawImage(off.dc.Image(), int(off.bounds.X), int(off.bounds.Y))
	s.dc.Pop()
}

// deviceBounds is the unrotated area a device can paint, shadow and
// selection glow included.
func deviceBounds(d *compose.Device) geometry.Rect {
	b := d.Frame
	for _, r := range d.Buttons {
		b = union(b, r)
	}
	if sh := d.FrameShadow; sh != nil {
		b = union(b, grow(shadowRect(d.Frame, sh), 1.5*sh.Blur))
	}
	if d.Selected {
		b = union(b, grow(d.SelectionRect, 4*selectionGlow(d)))
	}
	return b
}

func selectionGlow(d *compose.Device) float64 { return 8 * d.Scale }

// rotatedAbout returns the bounding box of r rotated by deg degrees
// about o.
func rotatedAbout(r geometry.Rect, deg float64, o geometry.Point) geometry.Rect {
	if deg == 0 {
		return r
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, p := range [4]geometry.Point{
		{X: r.X, Y: r.Y}, {X: r.X + r.W, Y: r.Y},
		{X: r.X + r.W, Y: r.Y + r.H}, {X: r.X, Y: r.Y + r.H},
	} {
		dx, dy := p.X-o.X, p.Y-o.Y
		x := o.X + dx*cos - dy*sin
		y := o.Y + dx*sin + dy*cos
		x0, y0 = math.Min(x0, x), math.Min(y0, y)
		x1, y1 = math.Max(x1, x), math.Max(y1, y)
	}
	return geometry.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func (s *surface) deviceBody(d *compose.Device) {
	dc := s.dc

	if d.Selected {
		s.selection(d)
	}
	if sh := d.FrameShadow; sh != nil && sh.Color.A > 0 {
		sr := shadowRect(d.Frame, sh)
		s.soft(sr, sh.Blur/2, true, func(dc *gg.Context) {
			roundRect(dc, sr, d.FrameRadius, sh.Color)
		})
	}
	for _, b := range d.Buttons {
		roundRect(dc, b, b.W/2, d.ButtonColor)
	}
	if !d.Frameless {
		roundRect(dc, d.Frame, d.FrameRadius, d.FrameColor)
		if !d.Bezel.Empty() {
			roundRect(dc, d.Bezel, d.BezelRadius, d.BezelColor)
		}
	}

	roundedPath(dc, d.Screen, compose.UniformCorners(d.ScreenRadius))
	dc.SetColor(d.ScreenColor)
	dc.FillPreserve()
	dc.Clip()

	switch d.ImageState {
	case compose.ImageShown:
		s.image(d.Image, d.ImageRect)
	case compose.ImagePlaceholder:
		s.screenPlaceholder(d.Screen, d.ImagePlaceholder, d.Scale)
	}
	if d.StatusBar != nil {
		s.statusBar(d.StatusBar, d.Scale)
	}
	if !d.NotchRect.Empty() {
		roundedPath(dc, d.NotchRect, d.NotchCorner)
		dc.SetColor(color.Black)
		dc.Fill()
	}
	if !d.HomeIndicator.Empty() {
		roundRect(dc, d.HomeIndicator, d.HomeIndicator.H/2, homeIndicatorColor)
	}
	dc.ResetClip()

	if hb := d.HomeButton; !hb.Empty() {
		c := hb.Center()
		dc.DrawCircle(c.X, c.Y, hb.W/2-d.Scale)
		dc.SetLineWidth(2 * d.Scale)
		dc.SetColor(d.HomeButtonColor)
		dc.Stroke()
	}
	if d.Label != nil {
		s.text(d.Label)
	}
}

func (s *surface) selection(d *compose.Device) {
	r, radius := d.SelectionRect, d.SelectionRadius
	glow := paint.WithAlpha(d.SelectionColor, selectionGlowAlpha)
	s.soft(r, selectionGlow(d), true, func(dc *gg.Context) {
		roundedPath(dc, r, compose.UniformCorners(radius))
		dc.SetLineWidth(6 * d.Scale)
		dc.SetColor(glow)
		dc.Stroke()
	})
	roundedPath(s.dc, r, compose.UniformCorners(radius))
	s.dc.SetLineWidth(3 * d.Scale)
	s.dc.SetColor(d.SelectionColor)
	s.dc.Stroke()
}

// screenPlaceholder draws the vertical gradient, a picture glyph and the
// label. The caller has clipped to the screen.
func (s *surface) screenPlaceholder(screen geometry.Rect, p *compose.ScreenPlaceholder, ps float64) {
	if p == nil {
		return
	}
	dc := s.dc
	top := geometry.Point{X: screen.Center().X, Y: screen.Y}
	bottom := geometry.Point{X: top.X, Y: screen.Y + screen.H}
	dc.SetFillStyle(s.linearGradient(top, bottom, []color.NRGBA{p.Top, p.Bottom}))
	dc.DrawRectangle(screen.X, screen.Y, screen.W, screen.H)
	dc.Fill()

	var c color.NRGBA
	if p.Label != nil {
		c = p.Label.Color
	}
	g := p.Glyph
	dc.SetLineWidth(2 * ps)
	dc.SetColor(c)
	roundedPath(dc, g.Inset(g.H*0.15, g.W*0.1, g.W*0.1, g.H*0.15), compose.UniformCorners(4*ps))
	dc.Stroke()
	dc.DrawCircle(g.X+g.W*0.35, g.Y+g.H*0.4, g.W*0.07)
	dc.Fill()
	dc.MoveTo(g.X+g.W*0.15, g.Y+g.H*0.78)
	dc.LineTo(g.X+g.W*0.42, g.Y+g.H*0.55)
	dc.LineTo(g.X+g.W*0.6, g.Y+g.H*0.7)
	dc.LineTo(g.X+g.W*0.72, g.Y+g.H*0.6)
	dc.LineTo(g.X+g.W*0.88, g.Y+g.H*0.75)
	dc.Stroke()

	s.text(p.Label)
}

// statusBar draws the clock and the signal, wifi and battery glyphs.
func (s *surface) statusBar(b *compose.StatusBar, ps float64) {
	dc := s.dc
	s.text(b.Time)
	dc.SetColor(b.Color)

	// Four bars of rising height.
	sig := b.Signal
	bw := sig.W / 5.5
	for i := range 4 {
		h := sig.H * float64(i+1) / 4 * 0.8
		x := sig.X + float64(i)*bw*1.5
		roundRect(dc, geometry.Rect{X: x, Y: sig.Y + sig.H*0.9 - h, W: bw, H: h}, bw/3, b.Color)
	}

	w := b.Wifi
	cx, cy := w.Center().X, w.Y+w.H*0.85
	dc.SetLineWidth(1.5 * ps)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetColor(b.Color)
	for i := 1; i <= 3; i++ {
		r := w.H * 0.25 * float64(i)
		dc.NewSubPath()
		dc.DrawArc(cx, cy, r, gg.Radians(-135), gg.Radians(-45))
		dc.Stroke()
	}
	dc.DrawCircle(cx, cy, 1.2*ps)
	dc.Fill()

	bat := b.Battery
	body := geometry.Rect{X: bat.X, Y: bat.Y + bat.H*0.25, W: bat.W * 0.88, H: bat.H * 0.5}
	dc.SetLineWidth(1 * ps)
	roundedPath(dc, body, compose.UniformCorners(2*ps))
	dc.Stroke()
	roundRect(dc, body.Inset(2*ps, 2*ps, 2*ps+body.W*0.2, 2*ps), ps, b.Color)
	roundRect(dc, geometry.Rect{X: body.X + body.W + ps, Y: bat.Center().Y - bat.H*0.12, W: bat.W * 0.08, H: bat.H * 0.24}, ps/2, b.Color)
	dc.SetLineCap(gg.LineCapButt)
}
