package geometry

import "math"

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// RectAround returns the rectangle of size w×h centered on c. Negative
// sizes collapse to zero.
func RectAround(c Point, w, h float64) Rect {
	w, h = math.Max(w, 0), math.Max(h, 0)
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Center returns the rectangle's center.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Inset shrinks the rectangle by the given amounts on each side. Insets
// larger than the rectangle collapse it to a zero-size rect at its center.
func (r Rect) Inset(top, left, right, bottom float64) Rect {
	out := Rect{X: r.X + left, Y: r.Y + top, W: r.W - left - right, H: r.H - top - bottom}
	if out.W < 0 || out.H < 0 {
		return RectAround(r.Center(), 0, 0)
	}
	return out
}

// Translate moves the rectangle by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}

// ScaleAbout scales the rectangle by s around origin o.
func (r Rect) ScaleAbout(o Point, s float64) Rect {
	s = SafeScale(s)
	return Rect{
		X: o.X + (r.X-o.X)*s,
		Y: o.Y + (r.Y-o.Y)*s,
		W: r.W * s,
		H: r.H * s,
	}
}

// RotatedBounds returns the axis-aligned bounding box of the rectangle after
// rotation by deg degrees about its center.
func (r Rect) RotatedBounds(deg float64) Rect {
	rad := deg * math.Pi / 180
	c, s := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	return RectAround(r.Center(), r.W*c+r.H*s, r.W*s+r.H*c)
}

// Intersect returns the overlap of r and o, or a zero rect when disjoint.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := math.Max(r.X, o.X), math.Max(r.Y, o.Y)
	x1, y1 := math.Min(r.X+r.W, o.X+o.W), math.Min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Apply transforms a pixel rectangle by the group offset on a canvas of the
// given size: translate by the percent offset, then scale about origin.
// For a point p this is origin + T + s·(p − origin).
func (g GroupOffset) Apply(r Rect, origin Point, width, height float64) Rect {
	return r.ScaleAbout(origin, g.Scale).Translate(g.shift(width, height))
}

// ApplyPoint transforms a single pixel point the same way Apply does.
func (g GroupOffset) ApplyPoint(p, origin Point, width, height float64) Point {
	return origin.Add(g.shift(width, height)).Add(p.Sub(origin).Mul(SafeScale(g.Scale)))
}

// ApplyLength scales a pixel length by the group offset.
func (g GroupOffset) ApplyLength(l float64) float64 { return l * SafeScale(g.Scale) }

func (g GroupOffset) shift(width, height float64) Point {
	return Point{X: g.DX / 100 * width, Y: g.DY / 100 * height}
}

// CoverRect returns the rectangle an image of size iw×ih occupies when it
// is scaled uniformly to cover the target completely, centered on the
// target. A degenerate image covers nothing.
func CoverRect(target Rect, iw, ih float64) Rect {
	if iw <= 0 || ih <= 0 || target.Empty() {
		return RectAround(target.Center(), 0, 0)
	}
	s := math.Max(target.W/iw, target.H/ih)
	return RectAround(target.Center(), iw*s, ih*s)
}
