package raster

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/matzehuels/storeshots/pkg/compose"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/fonts"
	"github.com/matzehuels/storeshots/pkg/geometry"
	"github.com/matzehuels/storeshots/pkg/imagesrc"
	"github.com/matzehuels/storeshots/pkg/project"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	green = color.NRGBA{0, 255, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

func solidTree(w, h int, c color.NRGBA, extra ...compose.Node) *compose.Tree {
	return &compose.Tree{
		Width:  w,
		Height: h,
		Layers: []compose.Layer{
			{Kind: compose.LayerBackground, Nodes: []compose.Node{
				&compose.Fill{Rect: geometry.Rect{W: float64(w), H: float64(h)}, Color: c},
			}},
			{Kind: compose.LayerPhone, Nodes: extra},
		},
	}
}

func solidImage(w, h int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func nearColor(a, b color.NRGBA, tol int) bool {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol && d(a.A, b.A) <= tol
}

func TestRasterizeRejectsEmptyTree(t *testing.T) {
	tests := []struct {
		name string
		tree *compose.Tree
	}{
		{"nil", nil},
		{"zero width", &compose.Tree{Width: 0, Height: 10}},
		{"negative height", &compose.Tree{Width: 10, Height: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rasterize(tt.tree)
			if !errors.Is(err, errors.ErrCodeEncodingFailed) {
				t.Errorf("Rasterize() error = %v, want %s", err, errors.ErrCodeEncodingFailed)
			}
		})
	}
}

func TestRasterizeSolidBackground(t *testing.T) {
	img, err := Rasterize(solidTree(40, 80, red))
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if got := img.Bounds().Size(); got != (image.Point{40, 80}) {
		t.Errorf("size = %v, want 40x80", got)
	}
	for _, p := range []image.Point{{0, 0}, {39, 79}, {20, 40}} {
		if got := img.NRGBAAt(p.X, p.Y); got != red {
			t.Errorf("pixel %v = %v, want %v", p, got, red)
		}
	}
}

func TestRasterizeTextOpacity(t *testing.T) {
	text := func(opacity float64) *compose.Text {
		return &compose.Text{
			Font:    fonts.Spec{Family: fonts.FamilySans, Weight: fonts.WeightBold, Size: 40},
			Color:   blue,
			Opacity: opacity,
			Lines:   []compose.Line{{Text: "WWWW", X: 0, Baseline: 40, Width: 120}},
		}
	}
	covered := func(img *image.NRGBA) int {
		n := 0
		for y := 0; y < 50; y++ {
			for x := 0; x < 120; x++ {
				if img.NRGBAAt(x, y) != red {
					n++
				}
			}
		}
		return n
	}

	tests := []struct {
		name    string
		opacity float64
		drawn   bool
	}{
		{"opaque", 1, true},
		{"translucent", 0.5, true},
		{"zero", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Rasterize(solidTree(120, 50, red, text(tt.opacity)))
			if err != nil {
				t.Fatalf("Rasterize() error: %v", err)
			}
			if got := covered(img) > 0; got != tt.drawn {
				t.Errorf("opacity %v drew text = %v, want %v", tt.opacity, got, tt.drawn)
			}
		})
	}
}

func TestRasterizeGradient(t *testing.T) {
	tree := &compose.Tree{Width: 100, Height: 20, Layers: []compose.Layer{{
		Kind: compose.LayerBackground,
		Nodes: []compose.Node{&compose.Fill{
			Rect:  geometry.Rect{W: 100, H: 20},
			Stops: []color.NRGBA{red, blue},
			Angle: 90,
		}},
	}}}
	img, err := Rasterize(tree)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if got := img.NRGBAAt(0, 10); !nearColor(got, red, 8) {
		t.Errorf("left pixel = %v, want ~%v", got, red)
	}
	if got := img.NRGBAAt(99, 10); !nearColor(got, blue, 8) {
		t.Errorf("right pixel = %v, want ~%v", got, blue)
	}
}

func TestGradientLine(t *testing.T) {
	r := geometry.Rect{W: 100, H: 200}
	tests := []struct {
		angle  float64
		p0, p1 geometry.Point
	}{
		{180, geometry.Point{X: 50, Y: 0}, geometry.Point{X: 50, Y: 200}},
		{90, geometry.Point{X: 0, Y: 100}, geometry.Point{X: 100, Y: 100}},
		{0, geometry.Point{X: 50, Y: 200}, geometry.Point{X: 50, Y: 0}},
	}
	near := func(a, b geometry.Point) bool {
		return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
	}
	for _, tt := range tests {
		p0, p1 := gradientLine(r, tt.angle)
		if !near(p0, tt.p0) || !near(p1, tt.p1) {
			t.Errorf("gradientLine(%v) = %v, %v, want %v, %v", tt.angle, p0, p1, tt.p0, tt.p1)
		}
	}
}

func TestFitCorners(t *testing.T) {
	r := geometry.Rect{W: 100, H: 40}
	got := fitCorners(r, compose.UniformCorners(40))
	for i, c := range got {
		if math.Abs(c.X-20) > 1e-9 || math.Abs(c.Y-20) > 1e-9 {
			t.Errorf("corner %d = %v, want 20,20", i, c)
		}
	}
	kept := fitCorners(r, compose.UniformCorners(8))
	if kept[0].X != 8 {
		t.Errorf("small radius changed to %v", kept[0].X)
	}
}

func TestRasterizeDeviceImage(t *testing.T) {
	frame := geometry.Rect{X: 20, Y: 20, W: 60, H: 120}
	screen := frame.Inset(6, 6, 6, 6)
	d := &compose.Device{
		Center:      frame.Center(),
		Scale:       1,
		Frame:       frame,
		FrameRadius: 10,
		FrameColor:  color.NRGBA{0, 0, 0, 255},
		Screen:      screen,
		ScreenColor: color.NRGBA{30, 30, 30, 255},
		ImageState:  compose.ImageShown,
		Image:       solidImage(30, 60, green),
		ImageRect:   screen,
	}
	img, err := Rasterize(solidTree(100, 160, red, d))
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if got := img.NRGBAAt(50, 80); !nearColor(got, green, 4) {
		t.Errorf("screen center = %v, want ~%v", got, green)
	}
	if got := img.NRGBAAt(22, 80); !nearColor(got, color.NRGBA{0, 0, 0, 255}, 4) {
		t.Errorf("frame edge = %v, want black", got)
	}
	if got := img.NRGBAAt(5, 5); got != red {
		t.Errorf("outside device = %v, want background", got)
	}
}

func TestRasterizeDeviceClipsImage(t *testing.T) {
	frame := geometry.Rect{X: 20, Y: 20, W: 60, H: 120}
	screen := frame.Inset(6, 6, 6, 6)
	d := &compose.Device{
		Center:      frame.Center(),
		Scale:       1,
		Frame:       frame,
		FrameColor:  color.NRGBA{0, 0, 0, 255},
		Screen:      screen,
		ScreenColor: color.NRGBA{30, 30, 30, 255},
		ImageState:  compose.ImageShown,
		Image:       solidImage(10, 10, green),
		ImageRect:   screen.ScaleAbout(screen.Center(), 3),
	}
	img, err := Rasterize(solidTree(100, 160, red, d))
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if got := img.NRGBAAt(5, 80); got != red {
		t.Errorf("zoomed image leaked outside screen: %v", got)
	}
}

func TestRasterizeRotatedDevice(t *testing.T) {
	center := geometry.Point{X: 100, Y: 100}
	frame := geometry.RectAround(center, 40, 160)
	d := &compose.Device{
		Center:      center,
		Rotation:    90,
		Scale:       1,
		Frame:       frame,
		FrameColor:  blue,
		Screen:      frame.Inset(4, 4, 4, 4),
		ScreenColor: blue,
	}
	img, err := Rasterize(solidTree(200, 200, red, d))
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	// A tall frame turned a quarter lies across the canvas.
	if got := img.NRGBAAt(40, 100); !nearColor(got, blue, 8) {
		t.Errorf("rotated frame pixel = %v, want ~%v", got, blue)
	}
	if got := img.NRGBAAt(100, 40); got != red {
		t.Errorf("unrotated frame pixel = %v, want background", got)
	}
}

type stubImages struct{}

func (stubImages) Resolve(_ context.Context, src string) (*imagesrc.Image, error) {
	return &imagesrc.Image{Source: src, Image: solidImage(300, 600, green)}, nil
}

func TestRasterizeComposedProject(t *testing.T) {
	p := project.New()
	p.Image = "shot.png"
	r := compose.NewRenderer(geometry.DefaultCalibration(), stubImages{}, nil, nil)
	tree, err := r.Render(context.Background(), p, 200, 400, compose.Options{})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	img, err := Rasterize(tree)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if got := img.Bounds().Size(); got != (image.Point{200, 400}) {
		t.Errorf("size = %v, want 200x400", got)
	}
	d := tree.Devices()[0]
	c := d.Screen.Center()
	if got := img.NRGBAAt(int(c.X), int(c.Y)); !nearColor(got, green, 8) {
		t.Errorf("screen center = %v, want ~%v", got, green)
	}
}
