package catalog

import (
	"math"

	"github.com/matzehuels/storeshots/pkg/errors"
)

// Store identifies which storefront an export size targets.
type Store string

// Stores.
const (
	StorePlay   Store = "play-store"
	StoreApp    Store = "app-store"
	StoreCustom Store = "custom"
)

// DefaultSizeID is the export size used when none is requested.
const DefaultSizeID = "play-store"

// Size is an exact export resolution.
type Size struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Store       Store  `json:"store"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Description string `json:"description"`
}

var sizes = []Size{
	{ID: "play-store", Name: "Play Store", Store: StorePlay, Width: 1080, Height: 1920, Description: "Standard 9:16 portrait"},
	{ID: "play-store-feature", Name: "Play Store Feature", Store: StorePlay, Width: 1024, Height: 500, Description: "Feature graphic ~2:1"},
	{ID: "app-store-6.7", Name: `App Store 6.7"`, Store: StoreApp, Width: 1290, Height: 2796, Description: "iPhone 15 Pro Max, 15 Plus, 14 Pro Max"},
	{ID: "app-store-6.5", Name: `App Store 6.5"`, Store: StoreApp, Width: 1242, Height: 2688, Description: "iPhone 11 Pro Max, XS Max"},
	{ID: "app-store-5.5", Name: `App Store 5.5"`, Store: StoreApp, Width: 1242, Height: 2208, Description: "iPhone 8 Plus, 7 Plus, 6s Plus"},
	{ID: "app-store-6.1", Name: `App Store 6.1"`, Store: StoreApp, Width: 1179, Height: 2556, Description: "iPhone 15, 15 Pro, 14 Pro"},
	{ID: "app-store-ipad-12.9", Name: `iPad Pro 12.9"`, Store: StoreApp, Width: 2048, Height: 2732, Description: "iPad Pro 12.9-inch"},
	{ID: "app-store-ipad-11", Name: `iPad Pro 11"`, Store: StoreApp, Width: 1668, Height: 2388, Description: "iPad Pro 11-inch, iPad Air"},
}

// LookupSize returns the export size with the given id.
func LookupSize(id string) (Size, bool) {
	for _, s := range sizes {
		if s.ID == id {
			return s, true
		}
	}
	return Size{}, false
}

// GetSize returns the export size with the given id, or an INVALID_SIZE
// error.
func GetSize(id string) (Size, error) {
	s, ok := LookupSize(id)
	if !ok {
		return Size{}, errors.New(errors.ErrCodeInvalidSize, "unknown export size %q", id)
	}
	return s, nil
}

// CustomSize builds an ad-hoc export size.
func CustomSize(width, height int) (Size, error) {
	if err := errors.ValidateDimensions(width, height); err != nil {
		return Size{}, err
	}
	return Size{ID: "custom", Name: "Custom", Store: StoreCustom, Width: width, Height: height}, nil
}

// Sizes returns every export size in catalog order.
func Sizes() []Size {
	out := make([]Size, len(sizes))
	copy(out, sizes)
	return out
}

// SizesByStore returns the sizes for one storefront.
func SizesByStore(st Store) []Size {
	var out []Size
	for _, s := range sizes {
		if s.Store == st {
			out = append(out, s)
		}
	}
	return out
}

// PlatformTarget is the default canvas of a platform in the editor.
type PlatformTarget struct {
	Platform    Platform `json:"platform"`
	Name        string   `json:"name"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Description string   `json:"description"`
}

var platforms = map[Platform]PlatformTarget{
	PlatformAndroid: {Platform: PlatformAndroid, Name: "Android", Width: 1080, Height: 1920, Description: "Play Store (1080×1920)"},
	PlatformIOS:     {Platform: PlatformIOS, Name: "iOS", Width: 1290, Height: 2796, Description: `App Store 6.7" (1290×2796)`},
}

// LookupPlatform returns the default target for a platform.
func LookupPlatform(p Platform) (PlatformTarget, bool) {
	t, ok := platforms[p]
	return t, ok
}

// PreviewSize scales a platform target down so its height equals
// maxHeight, returning the preview size and the scale used.
func PreviewSize(p Platform, maxHeight float64) (w, h int, scale float64) {
	t, ok := platforms[p]
	if !ok || maxHeight <= 0 {
		return 0, 0, 0
	}
	scale = maxHeight / float64(t.Height)
	return int(math.Round(float64(t.Width) * scale)), int(math.Round(float64(t.Height) * scale)), scale
}
