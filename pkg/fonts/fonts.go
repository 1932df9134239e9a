// Package fonts provides the embedded typefaces used to lay out and draw
// composition text.
//
// The Go font family is embedded through golang.org/x/image/font/gofont,
// making text rendering independent of fonts installed on the host. CSS
// family names stored on projects ("Inter", "SF Pro Display", ...) map to
// the closest embedded face; additional TTF data can be registered under
// any family name.
//
// Measurement and drawing use the same faces, so lines broken by the
// composition renderer fit exactly when the rasterizer draws them.
package fonts

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Weight buckets. CSS weights map onto these.
const (
	WeightRegular = 400
	WeightMedium  = 500
	WeightBold    = 700
)

// Family names of the embedded faces.
const (
	FamilySans = "Go"
	FamilyMono = "Go Mono"
)

// Spec selects a face.
type Spec struct {
	Family string  `json:"family"`
	Weight int     `json:"weight"`
	Size   float64 `json:"size"`
}

// Bucket returns the weight bucket of a CSS font weight.
func Bucket(weight int) int {
	switch {
	case weight >= 600:
		return WeightBold
	case weight >= 500:
		return WeightMedium
	default:
		return WeightRegular
	}
}

type faceKey struct {
	family string
	weight int
}

var (
	mu      sync.RWMutex
	parsed  = map[faceKey]*truetype.Font{}
	aliases = map[string]string{}
)

func init() {
	for _, f := range []struct {
		family string
		weight int
		data   []byte
	}{
		{FamilySans, WeightRegular, goregular.TTF},
		{FamilySans, WeightMedium, gomedium.TTF},
		{FamilySans, WeightBold, gobold.TTF},
		{FamilyMono, WeightRegular, gomono.TTF},
		{FamilyMono, WeightMedium, gomono.TTF},
		{FamilyMono, WeightBold, gomonobold.TTF},
	} {
		if err := Register(f.family, f.weight, f.data); err != nil {
			panic(err)
		}
	}
	for _, name := range []string{"inter", "roboto", "sf pro", "sf pro display", "sf pro text", "helvetica",
		"helvetica neue", "arial", "system-ui", "sans-serif", "poppins", "montserrat", "open sans", "lato"} {
		aliases[name] = FamilySans
	}
	for _, name := range []string{"monospace", "jetbrains mono", "fira code", "sf mono", "menlo"} {
		aliases[name] = FamilyMono
	}
}

// Register parses TTF data and makes it available under family and the
// weight bucket of weight. It replaces any previous registration.
func Register(family string, weight int, ttf []byte) error {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return fmt.Errorf("parse font %s/%d: %w", family, weight, err)
	}
	mu.Lock()
	parsed[faceKey{normalize(family), Bucket(weight)}] = f
	mu.Unlock()
	return nil
}

// Families returns the embedded family names.
func Families() []string {
	return []string{FamilySans, FamilyMono}
}

// Resolve returns the parsed font for a spec. Unknown families fall back
// to the sans family; missing weights fall back to regular.
func Resolve(s Spec) *truetype.Font {
	mu.RLock()
	defer mu.RUnlock()

	family := normalize(s.Family)
	// Families like `"Inter", sans-serif` list fallbacks.
	for _, name := range strings.Split(family, ",") {
		name = strings.Trim(strings.TrimSpace(name), `"'`)
		if alias, ok := aliases[name]; ok {
			name = normalize(alias)
		}
		if f, ok := parsed[faceKey{name, Bucket(s.Weight)}]; ok {
			return f
		}
		if f, ok := parsed[faceKey{name, WeightRegular}]; ok {
			return f
		}
	}
	if f, ok := parsed[faceKey{normalize(FamilySans), Bucket(s.Weight)}]; ok {
		return f
	}
	return parsed[faceKey{normalize(FamilySans), WeightRegular}]
}

// NewFace returns a fresh face for s. Faces are not safe for concurrent
// use; callers that draw in parallel need one face each.
func NewFace(s Spec) font.Face {
	size := s.Size
	if size <= 0 {
		size = 1
	}
	return truetype.NewFace(Resolve(s), &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func normalize(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}
