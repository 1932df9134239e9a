package fonts

import (
	"math"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
)

// Measurer reports text extents in pixels.
type Measurer interface {
	// Width returns the advance width of s.
	Width(s string, spec Spec) float64

	// Metrics returns the ascent and descent of the face.
	Metrics(spec Spec) (ascent, descent float64)
}

// FaceMeasurer measures with the embedded faces. Faces are cached per spec
// and guarded by a mutex, so one FaceMeasurer can be shared.
type FaceMeasurer struct {
	mu    sync.Mutex
	faces map[Spec]font.Face
}

// NewMeasurer creates a FaceMeasurer.
func NewMeasurer() *FaceMeasurer {
	return &FaceMeasurer{faces: make(map[Spec]font.Face)}
}

func (m *FaceMeasurer) face(spec Spec) font.Face {
	spec.Weight = Bucket(spec.Weight)
	f, ok := m.faces[spec]
	if !ok {
		f = NewFace(spec)
		m.faces[spec] = f
	}
	return f
}

// Width implements Measurer.
func (m *FaceMeasurer) Width(s string, spec Spec) float64 {
	if s == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	adv := font.MeasureString(m.face(spec), s)
	return float64(adv) / 64
}

// Metrics implements Measurer.
func (m *FaceMeasurer) Metrics(spec Spec) (ascent, descent float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	met := m.face(spec).Metrics()
	return float64(met.Ascent) / 64, float64(met.Descent) / 64
}

var _ Measurer = (*FaceMeasurer)(nil)

// Wrap breaks s into lines no wider than maxWidth. Explicit newlines are
// kept. Words wider than maxWidth are split between runes. A non-positive
// maxWidth disables wrapping.
func Wrap(m Measurer, s string, spec Spec, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		lines = append(lines, wrapParagraph(m, para, spec, maxWidth)...)
	}
	return lines
}

func wrapParagraph(m Measurer, para string, spec Spec, maxWidth float64) []string {
	words := strings.FieldsFunc(para, unicode.IsSpace)
	if len(words) == 0 {
		return []string{""}
	}
	if maxWidth <= 0 || math.IsNaN(maxWidth) {
		return []string{strings.Join(words, " ")}
	}

	var (
		lines []string
		cur   string
	)
	for _, w := range words {
		candidate := w
		if cur != "" {
			candidate = cur + " " + w
		}
		if m.Width(candidate, spec) <= maxWidth {
			cur = candidate
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
			cur = ""
		}
		for m.Width(w, spec) > maxWidth {
			head, tail := splitRunes(m, w, spec, maxWidth)
			lines = append(lines, head)
			w = tail
		}
		cur = w
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// splitRunes returns the longest rune prefix of w that fits, at least one
// rune, and the remainder.
func splitRunes(m Measurer, w string, spec Spec, maxWidth float64) (string, string) {
	runes := []rune(w)
	n := 1
	for n < len(runes) && m.Width(string(runes[:n+1]), spec) <= maxWidth {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

// LineHeight returns the distance between baselines for a face of the
// given size at a CSS line-height factor.
func LineHeight(spec Spec, factor float64) float64 {
	if factor <= 0 {
		factor = 1.2
	}
	return spec.Size * factor
}
