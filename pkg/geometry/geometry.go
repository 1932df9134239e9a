// Package geometry is the resolution-independent transform model.
//
// Layout templates place elements with anchors expressed in percent of the
// canvas. Users nudge those anchors with deltas, also in percent. Only at the
// very end, when a composition is laid out for a concrete pixel size, are
// percentages converted to pixels. Because every composition step before that
// conversion is size-agnostic, a project rendered at a 400×800 preview and at
// a 1290×2796 export yields the same relative placement.
//
// Composition rules:
//
//	position = base + delta          (exact, additive, percent)
//	rotation = base + delta          (exact, additive, degrees)
//	scale    = base * margin * delta (multiplicative)
//
// Zero, negative and non-finite scales are degenerate: they produce
// zero-size geometry and never NaN.
package geometry

import "math"

// Point is a 2D position. Its unit depends on context: canvas percent for
// anchors, pixels for laid-out geometry.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Mul scales both coordinates by s.
func (p Point) Mul(s float64) Point { return Point{p.X * s, p.Y * s} }

// Anchor is where a layout template puts an element before user deltas are
// applied: a canvas-percent center plus a scale factor and rotation.
type Anchor struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation,omitempty"`
}

// Center returns the anchor position in canvas percent.
func (a Anchor) Center() Point { return Point{a.X, a.Y} }

// Delta is a user transform composed on top of an anchor. DX and DY are in
// percent of canvas width and height, Rotation in degrees.
type Delta struct {
	DX       float64
	DY       float64
	Scale    float64
	Rotation float64
}

// Identity is the delta that leaves an anchor unchanged.
var Identity = Delta{Scale: 1}

// GroupOffset is the independent translate-then-scale applied to a whole
// layer (text block, pills, stats). DX and DY are percent of the canvas.
type GroupOffset struct {
	DX    float64
	DY    float64
	Scale float64
}

// NoOffset is the group offset that leaves a layer unchanged.
var NoOffset = GroupOffset{Scale: 1}

// Placement is a fully composed anchor: a canvas-percent center, a
// composite scale and a rotation.
type Placement struct {
	Center   Point
	Scale    float64
	Rotation float64
}

// ComposePosition adds a percent delta to a base position. It is exact.
func ComposePosition(base Point, dx, dy float64) Point {
	return Point{X: base.X + dx, Y: base.Y + dy}
}

// ComposeRotation adds a rotation delta in degrees. It is exact.
func ComposeRotation(base, delta float64) float64 {
	return base + delta
}

// ComposeScale multiplies the base scale, the reserved margin and the user
// scale. A degenerate input yields 0.
func ComposeScale(base, delta float64, cal Calibration) float64 {
	cal = cal.WithDefaults()
	return SafeScale(base) * SafeScale(cal.ReserveMargin) * SafeScale(delta)
}

// Compose applies a delta to an anchor.
func Compose(a Anchor, d Delta, cal Calibration) Placement {
	return Placement{
		Center:   ComposePosition(a.Center(), d.DX, d.DY),
		Scale:    ComposeScale(a.Scale, d.Scale, cal),
		Rotation: ComposeRotation(a.Rotation, d.Rotation),
	}
}

// SafeScale maps degenerate scale factors to 0 and passes others through.
func SafeScale(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
		return 0
	}
	return s
}

// PercentToPixels converts a canvas-percent point into pixels.
func PercentToPixels(p Point, width, height float64) Point {
	return Point{X: p.X / 100 * width, Y: p.Y / 100 * height}
}
