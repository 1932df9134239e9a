package geometry

import (
	"math"
	"testing"
)

func TestComposeIsExactlyAdditive(t *testing.T) {
	cal := DefaultCalibration()
	anchors := []Anchor{
		{X: 50, Y: 60, Scale: 0.75},
		{X: 100, Y: 52, Scale: 0.85, Rotation: 8},
		{X: 40, Y: 50, Scale: 0.7, Rotation: -15},
	}
	deltas := []Delta{
		Identity,
		{DX: 3.5, DY: -12.25, Scale: 1.2, Rotation: 7},
		{DX: -0.1, DY: 0.3, Scale: 0.3, Rotation: -359},
	}

	for _, a := range anchors {
		for _, d := range deltas {
			p := Compose(a, d, cal)
			if p.Center.X != a.X+d.DX || p.Center.Y != a.Y+d.DY {
				t.Errorf("Compose(%v, %v).Center = %v, want {%v %v}", a, d, p.Center, a.X+d.DX, a.Y+d.DY)
			}
			if p.Rotation != a.Rotation+d.Rotation {
				t.Errorf("Compose(%v, %v).Rotation = %v, want %v", a, d, p.Rotation, a.Rotation+d.Rotation)
			}
		}
	}
}

func TestComposeScale(t *testing.T) {
	cal := DefaultCalibration()
	tests := []struct {
		name        string
		base, delta float64
		want        float64
	}{
		{"classic", 0.75, 1, 0.6},
		{"user zoom", 0.5, 2, 0.8},
		{"zero delta", 0.75, 0, 0},
		{"negative base", -1, 1, 0},
		{"nan", math.NaN(), 1, 0},
		{"inf", math.Inf(1), 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeScale(tt.base, tt.delta, cal)
			if math.IsNaN(got) {
				t.Fatalf("ComposeScale() = NaN")
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("ComposeScale(%v, %v) = %v, want %v", tt.base, tt.delta, got, tt.want)
			}
		})
	}
}

func TestComposeScaleZeroCalibration(t *testing.T) {
	if got := ComposeScale(1, 1, Calibration{}); got != DefaultReserveMargin {
		t.Errorf("ComposeScale with zero calibration = %v, want %v", got, DefaultReserveMargin)
	}
}

func TestCanvasScale(t *testing.T) {
	cal := DefaultCalibration()
	tests := []struct {
		w, h float64
		want float64
	}{
		{400, 800, 1},
		{1080, 1920, 2.4},
		{1290, 2796, 3.225},
		{1024, 500, 0.625},
		{0, 800, 0},
	}

	for _, tt := range tests {
		if got := cal.CanvasScale(tt.w, tt.h); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CanvasScale(%v, %v) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestWithDefaultsClampsOversample(t *testing.T) {
	c := Calibration{Oversample: 1}.WithDefaults()
	if c.Oversample != 2 {
		t.Errorf("Oversample = %v, want 2", c.Oversample)
	}
	c = Calibration{Oversample: 3}.WithDefaults()
	if c.Oversample != 3 {
		t.Errorf("Oversample = %v, want 3", c.Oversample)
	}
}

func TestGroupOffsetApply(t *testing.T) {
	const w, h = 400.0, 800.0
	r := Rect{X: 100, Y: 100, W: 40, H: 20}
	center := Point{w / 2, h / 2}

	if got := NoOffset.Apply(r, center, w, h); got != r {
		t.Errorf("NoOffset.Apply() = %v, want %v", got, r)
	}

	tests := []struct {
		name   string
		origin Point
		want   Rect
	}{
		// p' = o + T + s(p-o) with T = (40,-40)
		{"canvas center", center, Rect{X: 200 + 40 + 2*(100-200), Y: 400 - 40 + 2*(100-400), W: 80, H: 40}},
		{"rect center", r.Center(), Rect{X: 120 + 40 - 40, Y: 110 - 40 - 20, W: 80, H: 40}},
	}
	g := GroupOffset{DX: 10, DY: -5, Scale: 2}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Apply(r, tt.origin, w, h); got != tt.want {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
			p := g.ApplyPoint(Point{r.X, r.Y}, tt.origin, w, h)
			if p.X != tt.want.X || p.Y != tt.want.Y {
				t.Errorf("ApplyPoint() = %v, want {%v %v}", p, tt.want.X, tt.want.Y)
			}
		})
	}

	if got := g.ApplyLength(12); got != 24 {
		t.Errorf("ApplyLength(12) = %v, want 24", got)
	}
	if got := (GroupOffset{Scale: math.NaN()}).ApplyLength(12); got != 0 {
		t.Errorf("ApplyLength with NaN scale = %v, want 0", got)
	}
}

func TestRectInsetCollapses(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 10, H: 10}
	got := r.Inset(8, 8, 8, 8)
	if !got.Empty() {
		t.Errorf("Inset() = %v, want empty", got)
	}
	if c := got.Center(); c.X != 5 || c.Y != 5 {
		t.Errorf("collapsed center = %v, want {5 5}", c)
	}
}

func TestCoverRect(t *testing.T) {
	screen := Rect{X: 0, Y: 0, W: 100, H: 200}

	tests := []struct {
		name   string
		iw, ih float64
		want   Rect
	}{
		{"same aspect", 50, 100, Rect{X: 0, Y: 0, W: 100, H: 200}},
		{"wide image", 200, 100, Rect{X: -150, Y: 0, W: 400, H: 200}},
		{"tall image", 100, 400, Rect{X: 0, Y: -100, W: 100, H: 400}},
		{"degenerate", 0, 100, Rect{X: 50, Y: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoverRect(screen, tt.iw, tt.ih); got != tt.want {
				t.Errorf("CoverRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRotatedBounds(t *testing.T) {
	r := Rect{X: 0, Y: 0, W: 10, H: 20}
	got := r.RotatedBounds(90)
	if math.Abs(got.W-20) > 1e-9 || math.Abs(got.H-10) > 1e-9 {
		t.Errorf("RotatedBounds(90) = %v, want 20x10", got)
	}
	if c := got.Center(); math.Abs(c.X-5) > 1e-9 || math.Abs(c.Y-10) > 1e-9 {
		t.Errorf("RotatedBounds center = %v, want {5 10}", c)
	}
}

func TestPercentToPixels(t *testing.T) {
	tests := []struct {
		p    Point
		w, h float64
		want Point
	}{
		{Point{50, 50}, 1290, 2796, Point{645, 1398}},
		{Point{0, 100}, 1290, 2796, Point{0, 2796}},
		{Point{35, 52}, 0, 0, Point{}},
	}
	for _, tt := range tests {
		if got := PercentToPixels(tt.p, tt.w, tt.h); got != tt.want {
			t.Errorf("PercentToPixels(%v, %v, %v) = %v, want %v", tt.p, tt.w, tt.h, got, tt.want)
		}
	}
}
