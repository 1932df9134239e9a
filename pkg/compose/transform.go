package compose

import (
	"github.com/matzehuels/storeshots/pkg/geometry"
)

// affine is a group offset bound to its transform origin and canvas.
type affine struct {
	offset        geometry.GroupOffset
	origin        geometry.Point
	width, height float64
}

// groupTransform is the CSS `translate(x%, y%) scale(s)` of a layer with
// its transform origin at origin. Percentages refer to the canvas.
func groupTransform(o geometry.GroupOffset, origin geometry.Point, width, height float64) affine {
	return affine{offset: o, origin: origin, width: width, height: height}
}

func (a affine) point(p geometry.Point) geometry.Point {
	return a.offset.ApplyPoint(p, a.origin, a.width, a.height)
}

func (a affine) rect(r geometry.Rect) geometry.Rect {
	return a.offset.Apply(r, a.origin, a.width, a.height)
}

func (a affine) length(l float64) float64 { return a.offset.ApplyLength(l) }

func (a affine) shadow(s *Shadow) *Shadow {
	if s == nil {
		return nil
	}
	out := *s
	out.OffsetX = a.length(s.OffsetX)
	out.OffsetY = a.length(s.OffsetY)
	out.Blur = a.length(s.Blur)
	out.Spread = a.length(s.Spread)
	return &out
}

func (a affine) corners(c Corners) Corners {
	for i := range c {
		c[i] = c[i].Mul(geometry.SafeScale(a.offset.Scale))
	}
	return c
}

func (a affine) text(t *Text) *Text {
	if t == nil {
		return nil
	}
	out := *t
	out.Font.Size = a.length(t.Font.Size)
	out.Shadow = a.shadow(t.Shadow)
	out.Lines = make([]Line, len(t.Lines))
	for i, l := range t.Lines {
		p := a.point(geometry.Point{X: l.X, Y: l.Baseline})
		out.Lines[i] = Line{Text: l.Text, X: p.X, Baseline: p.Y, Width: a.length(l.Width)}
	}
	return &out
}

// apply maps every node in place.
func (a affine) apply(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *Fill:
			c := *v
			c.Rect = a.rect(v.Rect)
			out = append(out, &c)
		case *Shape:
			c := *v
			c.Rect = a.rect(v.Rect)
			c.Corners = a.corners(v.Corners)
			c.Blur = a.length(v.Blur)
			c.Shadow = a.shadow(v.Shadow)
			out = append(out, &c)
		case *Text:
			out = append(out, a.text(v))
		case *Icon:
			c := *v
			c.Rect = a.rect(v.Rect)
			out = append(out, &c)
		case *Laurel:
			c := *v
			c.Rect = a.rect(v.Rect)
			out = append(out, &c)
		case *Placeholder:
			c := *v
			c.Rect = a.rect(v.Rect)
			c.Radius = a.length(v.Radius)
			c.Label = a.text(v.Label)
			out = append(out, &c)
		case *Device:
			// Devices are never group-transformed.
			out = append(out, v)
		}
	}
	return out
}
