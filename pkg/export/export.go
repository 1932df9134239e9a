// Package export turns compositions into encoded image files.
//
// An export job moves through a fixed state machine:
//
//	Idle → Rendering → Capturing → Encoding → Done | Failed
//
// Rendering builds the composition tree directly at the target pixel size,
// capturing rasterizes it through a shared Target at device-pixel ratio 1,
// and encoding writes PNG or JPEG bytes. Because the tree is already
// pixel-exact no crop or resample happens between capture and encode.
//
// When only a live element at preview resolution is available (see
// LiveCapturer), the capture is oversampled and then brought to the target
// size with Fit. Crop-to-fill is the active policy for every call site.
//
// Batch exports run one project at a time through the same Target. Every
// item produces an Outcome, failures included, and the successful
// artifacts are packaged into a single file or a zip archive.
package export

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/storeshots/pkg/errors"
)

// Format is an output image format.
type Format string

// Supported formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 0.92

// ParseFormat accepts "png", "jpeg" and "jpg", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want png or jpeg)", s)
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// FileName returns {base}.{ext} for the format.
func FileName(base string, f Format) string {
	return base + "." + f.Ext()
}

// Encode writes img in the given format. PNG ignores quality. JPEG maps
// quality in [0,1] onto the encoder's 1..100 scale.
func Encode(img image.Image, f Format, quality float64) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New(errors.ErrCodeEncodingFailed, "capture produced no drawable buffer")
	}

	var buf bytes.Buffer
	switch f {
	case FormatPNG:
		if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncodingFailed, err, "encode png")
		}
	case FormatJPEG:
		if err := errors.ValidateQuality(quality); err != nil {
			return nil, err
		}
		q := int(math.Round(quality * 100))
		q = min(max(q, 1), 100)
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncodingFailed, err, "encode jpeg")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
	return buf.Bytes(), nil
}

// Artifact is one encoded file.
type Artifact struct {
	Name    string `json:"name"`
	Format  Format `json:"format"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Variant string `json:"variant,omitempty"`
	Data    []byte `json:"-"`
}

// ContentType returns the MIME type of the artifact.
func (a Artifact) ContentType() string {
	if strings.HasSuffix(a.Name, ".zip") {
		return "application/zip"
	}
	return a.Format.ContentType()
}
