// Package paint parses the CSS color strings stored in projects.
//
// Projects keep colors the way the editor's color pickers produce them:
// hex strings ("#3b82f6", "#fff"), functional notation ("rgba(0,0,0,0.3)")
// or the keyword "transparent". Hex parsing delegates to go-colorful; the
// functional notation is parsed here because go-colorful has no CSS parser.
package paint

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Parse converts a CSS color string into an NRGBA color.
func Parse(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return color.NRGBA{}, fmt.Errorf("empty color")
	case s == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb"):
		return parseFunc(s)
	}
	if c, ok := named[s]; ok {
		return c, nil
	}
	return color.NRGBA{}, fmt.Errorf("unsupported color %q", s)
}

// MustParse is Parse for compile-time constants. It panics on error.
func MustParse(s string) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseOr returns fallback when s cannot be parsed.
func ParseOr(s string, fallback color.NRGBA) color.NRGBA {
	if c, err := Parse(s); err == nil {
		return c
	}
	return fallback
}

// WithAlpha returns c with its alpha multiplied by a in [0,1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	a = math.Max(0, math.Min(1, a))
	c.A = uint8(math.Round(float64(c.A) * a))
	return c
}

func parseHex(s string) (color.NRGBA, error) {
	// go-colorful only knows #rgb and #rrggbb; peel off an alpha byte.
	alpha := uint8(255)
	switch len(s) {
	case 5:
		v, err := strconv.ParseUint(s[4:5]+s[4:5], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
		}
		alpha, s = uint8(v), s[:4]
	case 9:
		v, err := strconv.ParseUint(s[7:9], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
		}
		alpha, s = uint8(v), s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

func parseFunc(s string) (color.NRGBA, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	parts := strings.FieldsFunc(s[open+1:end], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := channel(parts[i], 255)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		ch[i] = uint8(math.Round(v))
	}
	alpha := uint8(255)
	if len(parts) == 4 {
		v, err := channel(parts[3], 1)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		alpha = uint8(math.Round(v * 255))
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}

// channel parses a number or percentage and clamps it to [0,max].
func channel(s string, max float64) (float64, error) {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, err
	}
	if pct {
		v = v / 100 * max
	}
	return math.Max(0, math.Min(max, v)), nil
}

var named = map[string]color.NRGBA{
	"white": {255, 255, 255, 255},
	"black": {0, 0, 0, 255},
}
