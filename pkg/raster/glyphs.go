package raster

import (
	"image/color"

	"github.com/fogleman/gg"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/compose"
	"github.com/matzehuels/storeshots/pkg/geometry"
	"github.com/matzehuels/storeshots/pkg/paint"
)

// Icons are drawn in a 24×24 box.
const iconBox = 24.0

var starPoints = [...]geometry.Point{
	{X: 12, Y: 17.27}, {X: 18.18, Y: 21}, {X: 16.54, Y: 13.97}, {X: 22, Y: 9.24}, {X: 14.81, Y: 8.63},
	{X: 12, Y: 2}, {X: 9.19, Y: 8.63}, {X: 2, Y: 9.24}, {X: 7.46, Y: 13.97}, {X: 5.82, Y: 21},
}

// drawIcon draws a pill glyph into r.
func drawIcon(dc *gg.Context, icon catalog.Icon, r geometry.Rect, c color.NRGBA) {
	if r.Empty() {
		return
	}
	unit := r.W / iconBox

	dc.Push()
	defer dc.Pop()
	dc.Translate(r.X, r.Y)
	dc.Scale(r.W/iconBox, r.H/iconBox)
	dc.SetColor(c)

	switch icon {
	case catalog.IconMusic:
		dc.DrawRectangle(14, 3, 2, 13)
		dc.MoveTo(14, 3)
		dc.LineTo(21, 5)
		dc.LineTo(21, 9)
		dc.LineTo(16, 7.5)
		dc.ClosePath()
		dc.NewSubPath()
		dc.DrawEllipse(11, 17, 4, 3.5)
		dc.Fill()

	case catalog.IconCode:
		dc.SetLineWidth(2 * unit)
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineJoin(gg.LineJoinRound)
		dc.MoveTo(8, 6)
		dc.LineTo(2, 12)
		dc.LineTo(8, 18)
		dc.NewSubPath()
		dc.MoveTo(16, 6)
		dc.LineTo(22, 12)
		dc.LineTo(16, 18)
		dc.Stroke()
		dc.SetLineCap(gg.LineCapButt)

	case catalog.IconPalette:
		dc.SetFillRule(gg.FillRuleEvenOdd)
		dc.DrawCircle(12, 12, 10)
		for _, h := range [...]geometry.Point{{X: 7.5, Y: 10.5}, {X: 10.5, Y: 6.5}, {X: 15, Y: 7.5}, {X: 17, Y: 11.5}} {
			dc.NewSubPath()
			dc.DrawCircle(h.X, h.Y, 1.6)
		}
		dc.NewSubPath()
		dc.DrawCircle(13, 17, 2.4)
		dc.Fill()
		dc.SetFillRule(gg.FillRuleWinding)

	case catalog.IconVideo:
		dc.DrawRoundedRectangle(2, 6, 14, 12, 2)
		dc.MoveTo(17, 10)
		dc.LineTo(22, 7)
		dc.LineTo(22, 17)
		dc.LineTo(17, 14)
		dc.ClosePath()
		dc.Fill()

	case catalog.IconStar:
		for i, p := range starPoints {
			if i == 0 {
				dc.MoveTo(p.X, p.Y)
			} else {
				dc.LineTo(p.X, p.Y)
			}
		}
		dc.ClosePath()
		dc.Fill()

	case catalog.IconHeart:
		dc.DrawCircle(7.5, 8.5, 5)
		dc.NewSubPath()
		dc.DrawCircle(16.5, 8.5, 5)
		dc.NewSubPath()
		dc.MoveTo(2.9, 10.5)
		dc.LineTo(12, 21)
		dc.LineTo(21.1, 10.5)
		dc.LineTo(12, 8)
		dc.ClosePath()
		dc.Fill()

	default:
		dc.DrawCircle(12, 12, 8)
		dc.Fill()
	}
}

// Laurel branches in a 32×64 box, as cubic segments after the start
// point. Outer to inner.
var laurelPaths = [...]struct {
	opacity float64
	start   geometry.Point
	curves  [4][3]geometry.Point
}{
	{0.8, geometry.Point{X: 8, Y: 8}, [4][3]geometry.Point{
		{{X: 12, Y: 10}, {X: 14, Y: 16}, {X: 14, Y: 24}},
		{{X: 14, Y: 32}, {X: 12, Y: 38}, {X: 8, Y: 40}},
		{{X: 6, Y: 36}, {X: 5, Y: 30}, {X: 5, Y: 24}},
		{{X: 5, Y: 18}, {X: 6, Y: 12}, {X: 8, Y: 8}},
	}},
	{0.6, geometry.Point{X: 12, Y: 4}, [4][3]geometry.Point{
		{{X: 15, Y: 7}, {X: 16, Y: 14}, {X: 16, Y: 22}},
		{{X: 16, Y: 30}, {X: 15, Y: 37}, {X: 12, Y: 40}},
		{{X: 11, Y: 35}, {X: 10, Y: 29}, {X: 10, Y: 22}},
		{{X: 10, Y: 15}, {X: 11, Y: 9}, {X: 12, Y: 4}},
	}},
	{0.4, geometry.Point{X: 16, Y: 2}, [4][3]geometry.Point{
		{{X: 18, Y: 6}, {X: 19, Y: 13}, {X: 19, Y: 22}},
		{{X: 19, Y: 31}, {X: 18, Y: 38}, {X: 16, Y: 42}},
		{{X: 15, Y: 36}, {X: 15, Y: 30}, {X: 15, Y: 22}},
		{{X: 15, Y: 14}, {X: 15, Y: 8}, {X: 16, Y: 2}},
	}},
}

// drawLaurel draws a laurel branch. Mirrored branches are flipped
// horizontally inside their box.
func drawLaurel(dc *gg.Context, l *compose.Laurel) {
	r := l.Rect
	if r.Empty() {
		return
	}
	opacity := l.Opacity
	if opacity <= 0 {
		return
	}

	dc.Push()
	defer dc.Pop()
	if l.Mirror {
		dc.Translate(r.X+r.W, r.Y)
		dc.Scale(-r.W/32, r.H/64)
	} else {
		dc.Translate(r.X, r.Y)
		dc.Scale(r.W/32, r.H/64)
	}
	for _, p := range laurelPaths {
		dc.MoveTo(p.start.X, p.start.Y)
		for _, c := range p.curves {
			dc.CubicTo(c[0].X, c[0].Y, c[1].X, c[1].Y, c[2].X, c[2].Y)
		}
		dc.ClosePath()
		dc.SetColor(paint.WithAlpha(l.Color, p.opacity*opacity))
		dc.Fill()
	}
}
