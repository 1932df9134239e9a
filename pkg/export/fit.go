package export

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/storeshots/pkg/errors"
)

// FitPolicy decides how a capture of the wrong aspect reaches the target
// size. Scaling is always uniform.
type FitPolicy string

const (
	// FitCrop crops the source symmetrically to the target aspect, then
	// scales. It is the active policy for preview and export.
	FitCrop FitPolicy = "crop"
	// FitPad scales the source to fit inside the target and pads the rest
	// with transparent pixels. Callers must ask for it explicitly.
	FitPad FitPolicy = "pad"
)

// ParseFitPolicy accepts "crop" and "pad". Empty means FitCrop.
func ParseFitPolicy(s string) (FitPolicy, error) {
	switch FitPolicy(s) {
	case "", FitCrop:
		return FitCrop, nil
	case FitPad:
		return FitPad, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown fit policy %q (want crop or pad)", s)
}

// CropRect returns the part of src that matches the w:h aspect. A source
// that is wider loses equal columns left and right, a taller one equal
// rows top and bottom. Equal aspects return src unchanged.
func CropRect(src image.Rectangle, w, h int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw <= 0 || sh <= 0 || w <= 0 || h <= 0 {
		return src
	}
	// Compare sw/sh with w/h without rounding.
	lhs, rhs := int64(sw)*int64(h), int64(w)*int64(sh)
	switch {
	case lhs > rhs:
		cw := int(math.Round(float64(sh) * float64(w) / float64(h)))
		if cw >= sw {
			return src
		}
		x0 := src.Min.X + (sw-cw)/2
		return image.Rect(x0, src.Min.Y, x0+cw, src.Max.Y)
	case lhs < rhs:
		ch := int(math.Round(float64(sw) * float64(h) / float64(w)))
		if ch >= sh {
			return src
		}
		y0 := src.Min.Y + (sh-ch)/2
		return image.Rect(src.Min.X, y0, src.Max.X, y0+ch)
	}
	return src
}

// Fit resamples src onto a w×h canvas using policy.
func Fit(src image.Image, w, h int, policy FitPolicy) (*image.NRGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, errors.New(errors.ErrCodeEncodingFailed, "capture produced no drawable buffer")
	}
	if err := errors.ValidateDimensions(w, h); err != nil {
		return nil, err
	}
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return imaging.Clone(src), nil
	}

	switch policy {
	case FitCrop, "":
		cropped := imaging.Crop(src, CropRect(b, w, h))
		return imaging.Resize(cropped, w, h, imaging.Lanczos), nil
	case FitPad:
		s := math.Min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
		fw := min(max(int(math.Round(float64(b.Dx())*s)), 1), w)
		fh := min(max(int(math.Round(float64(b.Dy())*s)), 1), h)
		scaled := imaging.Resize(src, fw, fh, imaging.Lanczos)
		canvas := imaging.New(w, h, color.NRGBA{})
		return imaging.Paste(canvas, scaled, image.Pt((w-fw)/2, (h-fh)/2)), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown fit policy %q", policy)
}
