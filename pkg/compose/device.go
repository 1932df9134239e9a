package compose

import (
	"image"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/fonts"
	"github.com/matzehuels/storeshots/pkg/geometry"
	"github.com/matzehuels/storeshots/pkg/paint"
	"github.com/matzehuels/storeshots/pkg/project"
)

// Device chrome in device reference pixels.
const (
	statusBarHeight   = 44.0
	statusBarPadX     = 24.0
	statusBarPadTop   = 12.0
	statusIconSize    = 16.0
	batteryWidth      = 24.0
	statusIconGap     = 4.0
	statusTimeSize    = 12.0
	homeIndicatorW    = 134.0
	homeIndicatorH    = 5.0
	homeIndicatorGap  = 8.0
	homeButtonSize    = 40.0
	homeButtonGap     = 8.0
	islandTop         = 12.0
	punchHoleTop      = 10.0
	notchBottomRadius = 20.0
	sideButtonWidth   = 3.0
	selectionGap      = 8.0
	placeholderGlyph  = 48.0
	placeholderLabel  = 12.0
)

// Side buttons as top offset and height: volume up, volume down, power.
var sideButtonSpecs = [...]struct {
	right       bool
	top, height float64
}{
	{false, 100, 30},
	{false, 140, 50},
	{true, 130, 60},
}

// device lays out phone i.
func (st *render) device(i int) (*Device, error) {
	if err := st.ctx.Err(); err != nil {
		return nil, errors.FromContext(err, "render phone %d", i)
	}
	p := st.p
	cal := st.Calibration

	place := geometry.Compose(st.layout.PhoneAnchor(i), p.PhoneDelta(i), cal)
	ps := place.Scale * st.cs
	center := geometry.PercentToPixels(place.Center, st.w, st.h)

	out := &Device{
		Type:     typeDevice,
		Index:    i,
		DeviceID: p.PhoneDevice(i),
		Center:   center,
		Rotation: place.Rotation,
		Scale:    ps,
	}

	dev, ok := catalog.LookupDevice(out.DeviceID)
	if !ok {
		st.Logger.Warn("device not found", "project", p.ID, "phone", i, "device", out.DeviceID)
		st.missingDevice(out)
		return out, nil
	}

	frame := geometry.RectAround(center, dev.Width*ps, dev.Height*ps)
	in := dev.ScreenInset.Scaled(ps)
	out.Frame = frame
	out.FrameRadius = dev.Radius * ps
	out.Screen = frame.Inset(in.Top, in.Left, in.Right, in.Bottom)
	out.ScreenRadius = dev.InnerRadius * ps
	out.ScreenColor = colorGray900
	out.Notch = dev.Notch

	if dev.IsFrameless() {
		out.Frameless = true
		out.Screen = frame
		out.ScreenRadius = 0
	} else {
		half := dev.ScreenInset.Scaled(ps * 0.5)
		out.FrameColor = paint.ParseOr(dev.FrameColor, colorBlack)
		out.FrameShadow = &Shadow{OffsetY: 25 * ps, Blur: 50 * ps, Spread: -12 * ps, Color: paint.WithAlpha(colorBlack, 0.5)}
		out.Bezel = frame.Inset(half.Top, half.Left, half.Right, half.Bottom)
		out.BezelRadius = max(dev.Radius-4, 0) * ps
		out.BezelColor = paint.ParseOr(dev.BezelColor, colorGray800)
		out.Buttons = st.sideButtons(frame, ps)
		out.ButtonColor = colorGray700
	}

	st.notch(out, dev, ps)
	st.screenImage(out, i, ps)

	if dev.ShowsStatusBar() {
		out.StatusBar = st.statusBar(out.Screen, ps)
	}
	if dev.ShowsHomeIndicator() {
		s := out.Screen
		out.HomeIndicator = geometry.Rect{
			X: s.Center().X - homeIndicatorW*ps/2,
			Y: s.Y + s.H - (homeIndicatorGap+homeIndicatorH)*ps,
			W: homeIndicatorW * ps,
			H: homeIndicatorH * ps,
		}
	}
	if dev.HasHomeButton() {
		out.HomeButton = geometry.Rect{
			X: frame.Center().X - homeButtonSize*ps/2,
			Y: frame.Y + frame.H - (homeButtonGap+homeButtonSize)*ps,
			W: homeButtonSize * ps,
			H: homeButtonSize * ps,
		}
		out.HomeButtonColor = colorGray600
	}

	if st.opts.Selection && p.SelectedPhoneIndex != nil && *p.SelectedPhoneIndex == i {
		gap := selectionGap * ps
		out.Selected = true
		out.SelectionRect = frame.Inset(-gap, -gap, -gap, -gap)
		out.SelectionRadius = (dev.Radius + selectionGap) * ps
		out.SelectionColor = colorSelected
	}
	return out, nil
}

// missingDevice sizes an unknown device like the fallback device and
// labels it.
func (st *render) missingDevice(d *Device) {
	fb, _ := catalog.LookupDevice(catalog.FallbackDeviceID)
	d.Missing = true
	d.Frame = geometry.RectAround(d.Center, fb.Width*d.Scale, fb.Height*d.Scale)
	d.FrameRadius = fb.Radius * d.Scale
	d.FrameColor = colorGray800
	d.Screen = d.Frame
	d.ScreenRadius = d.FrameRadius
	d.ScreenColor = colorGray800
	d.ImageState = ImageEmpty
	d.Notch = catalog.NotchNone
	spec := fonts.Spec{Family: fonts.FamilySans, Weight: fonts.WeightRegular, Size: 16 * st.cs}
	d.Label = st.centeredLine("Device not found", spec, colorGray400, d.Center)
}

func (st *render) notch(d *Device, dev catalog.Device, ps float64) {
	s := d.Screen
	w, h := dev.NotchWidth*ps, dev.NotchHeight*ps
	cx := s.Center().X
	switch dev.Notch {
	case catalog.NotchDynamicIsland:
		d.NotchRect = geometry.Rect{X: cx - w/2, Y: s.Y + islandTop*ps, W: w, H: h}
		d.NotchCorner = UniformCorners(h / 2)
	case catalog.NotchClassic:
		r := geometry.Point{X: notchBottomRadius * ps, Y: notchBottomRadius * ps}
		d.NotchRect = geometry.Rect{X: cx - w/2, Y: s.Y, W: w, H: h}
		d.NotchCorner = Corners{{}, {}, r, r}
	case catalog.NotchPunchHole:
		d.NotchRect = geometry.Rect{X: cx - w/2, Y: s.Y + punchHoleTop*ps, W: w, H: w}
		d.NotchCorner = UniformCorners(w / 2)
	}
}

// screenImage resolves the screenshot for phone i and fits it to the
// screen: cover, then pan, then zoom about the screen center.
func (st *render) screenImage(d *Device, i int, ps float64) {
	src := st.p.PhoneImage(i)
	d.ImageSource = src

	var (
		img    image.Image
		iw, ih float64
	)
	if src != "" && st.Images != nil {
		resolved, err := st.Images.Resolve(st.ctx, src)
		if err != nil {
			st.Logger.Warn("image unavailable", "project", st.p.ID, "phone", i, "err", err)
		} else if resolved != nil && resolved.Image != nil {
			b := resolved.Bounds()
			img, iw, ih = resolved.Image, float64(b.Dx()), float64(b.Dy())
		}
	}

	if img == nil || iw == 0 || ih == 0 {
		d.ImageState = ImageEmpty
		if st.opts.Placeholders {
			d.ImageState = ImagePlaceholder
			d.ImagePlaceholder = st.screenPlaceholder(d.Screen, ps)
		}
		return
	}

	t := st.p.PhoneImageTransform(i)
	d.ImageState = ImageShown
	d.Image = img
	d.ImageRect = imageRect(d.Screen, iw, ih, t, ps)
}

// imageRect places an iw×ih image on screen.
func imageRect(screen geometry.Rect, iw, ih float64, t project.ImageTransform, ps float64) geometry.Rect {
	pan := geometry.Point{X: t.PanX * ps, Y: t.PanY * ps}
	return geometry.CoverRect(screen, iw, ih).
		Translate(pan).
		ScaleAbout(screen.Center(), geometry.SafeScale(t.Zoom))
}

func (st *render) screenPlaceholder(screen geometry.Rect, ps float64) *ScreenPlaceholder {
	glyph := placeholderGlyph * ps
	c := screen.Center()
	spec := fonts.Spec{Family: fonts.FamilySans, Weight: fonts.WeightRegular, Size: placeholderLabel * ps}
	labelCenter := geometry.Point{X: c.X, Y: c.Y + glyph/2 + 8*ps + fonts.LineHeight(spec, 1.33)/2}
	return &ScreenPlaceholder{
		Top:    colorGray800,
		Bottom: colorGray900,
		Glyph:  geometry.RectAround(geometry.Point{X: c.X, Y: c.Y - 8*ps}, glyph, glyph),
		Label:  st.centeredLine("Drop image here", spec, colorGray500, labelCenter),
	}
}

func (st *render) statusBar(screen geometry.Rect, ps float64) *StatusBar {
	bar := geometry.Rect{X: screen.X, Y: screen.Y, W: screen.W, H: statusBarHeight * ps}
	mid := bar.Y + (statusBarPadTop+(statusBarHeight-statusBarPadTop)/2)*ps
	right := bar.X + bar.W - statusBarPadX*ps

	icon := func(rightEdge, w, h float64) geometry.Rect {
		return geometry.Rect{X: rightEdge - w*ps, Y: mid - h*ps/2, W: w * ps, H: h * ps}
	}
	battery := icon(right, batteryWidth, statusIconSize)
	wifi := icon(battery.X-statusIconGap*ps, statusIconSize, statusIconSize)
	signal := icon(wifi.X-statusIconGap*ps, statusIconSize, statusIconSize)

	spec := fonts.Spec{Family: fonts.FamilySans, Weight: fonts.WeightMedium, Size: statusTimeSize * ps}
	tw := st.Measurer.Width("9:41", spec)
	timeText := st.centeredLine("9:41", spec, colorWhite, geometry.Point{X: bar.X + statusBarPadX*ps + tw/2, Y: mid})
	timeText.Opacity = 0.8

	return &StatusBar{
		Rect:    bar,
		Time:    timeText,
		Signal:  signal,
		Wifi:    wifi,
		Battery: battery,
		Color:   paint.WithAlpha(colorWhite, 0.8),
	}
}

func (st *render) sideButtons(frame geometry.Rect, ps float64) []geometry.Rect {
	out := make([]geometry.Rect, 0, len(sideButtonSpecs))
	w := sideButtonWidth * ps
	for _, b := range sideButtonSpecs {
		x := frame.X - w
		if b.right {
			x = frame.X + frame.W
		}
		out = append(out, geometry.Rect{X: x, Y: frame.Y + b.top*ps, W: w, H: b.height * ps})
	}
	return out
}
