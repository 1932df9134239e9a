package compose

import (
	"testing"

	"github.com/matzehuels/storeshots/pkg/geometry"
)

func TestGroupTransformApply(t *testing.T) {
	const w, h = 400.0, 800.0
	shape := &Shape{
		Shape:   ShapeRect,
		Rect:    geometry.Rect{X: 100, Y: 200, W: 60, H: 20},
		Corners: UniformCorners(10),
		Blur:    4,
		Shadow:  &Shadow{OffsetX: 2, OffsetY: 3, Blur: 8},
	}
	origin := shape.Rect.Center()

	tests := []struct {
		name     string
		offset   geometry.GroupOffset
		wantRect geometry.Rect
		wantBlur float64
	}{
		{"identity", geometry.NoOffset, shape.Rect, 4},
		{"translate", geometry.GroupOffset{DX: 10, DY: 5, Scale: 1}, geometry.Rect{X: 140, Y: 240, W: 60, H: 20}, 4},
		{"scale about origin", geometry.GroupOffset{Scale: 2}, geometry.Rect{X: 70, Y: 190, W: 120, H: 40}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := groupTransform(tt.offset, origin, w, h).apply([]Node{shape})
			got := out[0].(*Shape)
			if got.Rect != tt.wantRect {
				t.Errorf("Rect = %v, want %v", got.Rect, tt.wantRect)
			}
			if got.Blur != tt.wantBlur {
				t.Errorf("Blur = %v, want %v", got.Blur, tt.wantBlur)
			}
			if s := tt.offset.Scale; got.Corners[0].X != 10*s || got.Shadow.Blur != 8*s {
				t.Errorf("corner, shadow blur = %v, %v, want %v, %v", got.Corners[0].X, got.Shadow.Blur, 10*s, 8*s)
			}
		})
	}

	if shape.Rect.X != 100 || shape.Shadow.Blur != 8 {
		t.Errorf("apply() mutated its input: %+v", shape)
	}
}
