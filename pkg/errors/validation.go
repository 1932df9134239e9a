package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxDimension bounds export widths and heights. The largest catalog size
// (iPad 12.9") is 2048×2732; the bound leaves headroom for custom sizes
// while keeping a single RGBA buffer well below a gigabyte.
const MaxDimension = 8192

// ValidateID validates a project identifier received from an untrusted
// surface (CLI argument, URL path parameter).
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "project id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "project id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "project id contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "project id contains invalid characters: %q", id)
	}
	return nil
}

// ValidateDimensions checks that an export size is positive and bounded.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidSize, "size must be positive, got %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidSize, "size %dx%d exceeds maximum of %d", width, height, MaxDimension)
	}
	return nil
}

// ValidateQuality checks a JPEG quality factor in [0,1].
func ValidateQuality(q float64) error {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return New(ErrCodeInvalidInput, "quality must be within [0,1], got %v", q)
	}
	return nil
}

// ValidateBaseName validates an export file base name. Base names become
// archive entry names and file names on disk, so they must be a single
// path element.
func ValidateBaseName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}
	if len(name) > 200 {
		return New(ErrCodeInvalidPath, "file name too long (max 200 characters)")
	}
	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "file name contains invalid characters")
		}
	}
	if strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidPath, "file name cannot contain path separators")
	}
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "file name cannot be a hidden file")
	}
	return nil
}
