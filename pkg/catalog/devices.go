package catalog

import (
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/geometry"
)

// NotchType is the cutout at the top of a device screen.
type NotchType string

// Notch types.
const (
	NotchNone          NotchType = "none"
	NotchClassic       NotchType = "notch"
	NotchDynamicIsland NotchType = "dynamic-island"
	NotchPunchHole     NotchType = "punch-hole"
)

// Platform is the store a device or export size belongs to.
type Platform string

// Platforms.
const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Insets are per-side distances in reference pixels.
type Insets struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Scaled multiplies every side by s.
func (i Insets) Scaled(s float64) Insets {
	return Insets{Top: i.Top * s, Left: i.Left * s, Right: i.Right * s, Bottom: i.Bottom * s}
}

// Device is a phone silhouette in reference pixels. All geometry, notch
// included, is scaled by the same factor at render time.
type Device struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Platform    Platform `json:"platform"`
	Width       float64  `json:"width"`
	Height      float64  `json:"height"`
	ScreenInset Insets   `json:"screen_inset"`
	Radius      float64  `json:"radius"`
	InnerRadius float64  `json:"inner_radius"`

	Notch       NotchType `json:"notch"`
	NotchWidth  float64   `json:"notch_width,omitempty"`
	NotchHeight float64   `json:"notch_height,omitempty"`

	FrameColor string `json:"frame_color"`
	BezelColor string `json:"bezel_color"`
}

// Screen returns the screen rectangle in reference pixels, relative to the
// frame's top-left corner.
func (d Device) Screen() geometry.Rect {
	frame := geometry.Rect{W: d.Width, H: d.Height}
	in := d.ScreenInset
	return frame.Inset(in.Top, in.Left, in.Right, in.Bottom)
}

// IsFrameless reports whether the device draws no bezel at all.
func (d Device) IsFrameless() bool { return d.ID == NoFrameDeviceID }

// HasHomeButton reports whether the device has a physical home button.
func (d Device) HasHomeButton() bool { return d.ID == "iphone-se" }

// ShowsStatusBar reports whether a status bar is drawn over the screen.
func (d Device) ShowsStatusBar() bool { return !d.IsFrameless() && !d.HasHomeButton() }

// ShowsHomeIndicator reports whether a gesture bar is drawn at the bottom.
func (d Device) ShowsHomeIndicator() bool {
	return d.Notch == NotchClassic || d.Notch == NotchDynamicIsland
}

// Well-known device ids.
const (
	DefaultDeviceID  = "iphone-15-pro"
	FallbackDeviceID = "generic-android"
	NoFrameDeviceID  = "no-frame"
)

var devices = []Device{
	{
		ID: "iphone-15-pro", Name: "iPhone 15 Pro", Platform: PlatformIOS,
		Width: 393, Height: 852, ScreenInset: Insets{12, 12, 12, 12},
		Radius: 55, InnerRadius: 47,
		Notch: NotchDynamicIsland, NotchWidth: 126, NotchHeight: 37,
		FrameColor: "#1a1a1a", BezelColor: "#2a2a2a",
	},
	{
		ID: "iphone-14", Name: "iPhone 14", Platform: PlatformIOS,
		Width: 390, Height: 844, ScreenInset: Insets{12, 12, 12, 12},
		Radius: 50, InnerRadius: 42,
		Notch: NotchClassic, NotchWidth: 150, NotchHeight: 34,
		FrameColor: "#1a1a1a", BezelColor: "#2a2a2a",
	},
	{
		ID: "iphone-se", Name: "iPhone SE", Platform: PlatformIOS,
		Width: 375, Height: 667, ScreenInset: Insets{Top: 20, Left: 12, Right: 12, Bottom: 20},
		Radius: 40, InnerRadius: 0,
		Notch:      NotchNone,
		FrameColor: "#1a1a1a", BezelColor: "#2a2a2a",
	},
	{
		ID: "pixel-8", Name: "Pixel 8", Platform: PlatformAndroid,
		Width: 412, Height: 915, ScreenInset: Insets{10, 10, 10, 10},
		Radius: 40, InnerRadius: 32,
		Notch: NotchPunchHole, NotchWidth: 24, NotchHeight: 24,
		FrameColor: "#1a1a1a", BezelColor: "#2a2a2a",
	},
	{
		ID: "samsung-s24", Name: "Samsung S24", Platform: PlatformAndroid,
		Width: 412, Height: 892, ScreenInset: Insets{8, 8, 8, 8},
		Radius: 36, InnerRadius: 30,
		Notch: NotchPunchHole, NotchWidth: 20, NotchHeight: 20,
		FrameColor: "#0f0f0f", BezelColor: "#1f1f1f",
	},
	{
		ID: "generic-android", Name: "Generic Android", Platform: PlatformAndroid,
		Width: 412, Height: 892, ScreenInset: Insets{8, 8, 8, 8},
		Radius: 24, InnerRadius: 18,
		Notch:      NotchNone,
		FrameColor: "#1a1a1a", BezelColor: "#2a2a2a",
	},
	{
		ID: NoFrameDeviceID, Name: "No Frame", Platform: PlatformAndroid,
		Width: 412, Height: 892,
		Notch:      NotchNone,
		FrameColor: "transparent", BezelColor: "transparent",
	},
}

var deviceIndex = func() map[string]int {
	m := make(map[string]int, len(devices))
	for i, d := range devices {
		m[d.ID] = i
	}
	return m
}()

// LookupDevice returns the device with the given id.
func LookupDevice(id string) (Device, bool) {
	i, ok := deviceIndex[id]
	if !ok {
		return Device{}, false
	}
	return devices[i], true
}

// GetDevice returns the device with the given id, or a
// CATALOG_LOOKUP_FAILED error.
func GetDevice(id string) (Device, error) {
	d, ok := LookupDevice(id)
	if !ok {
		return Device{}, errors.New(errors.ErrCodeCatalogLookupFailed, "device %q not found", id)
	}
	return d, nil
}

// Devices returns every device in catalog order.
func Devices() []Device {
	out := make([]Device, len(devices))
	copy(out, devices)
	return out
}

// DevicesByPlatform returns the devices for one platform in catalog order.
func DevicesByPlatform(p Platform) []Device {
	var out []Device
	for _, d := range devices {
		if d.Platform == p {
			out = append(out, d)
		}
	}
	return out
}
