// Package imagesrc resolves screenshot image sources into decoded images.
//
// A source is a string stored on a project: a local file path, a file://
// URL or a data: URI. Resolution is memoized by source so repeated renders
// of the same project decode each image once.
//
// Errors carry the INVALID_IMAGE_SOURCE code. Renderers treat them as
// recoverable and fall back to the no-image state.
package imagesrc

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/storeshots/pkg/cache"
	"github.com/matzehuels/storeshots/pkg/errors"
)

// MaxSourceBytes bounds the size of a single image source.
const MaxSourceBytes = 64 << 20

// Image is a decoded source.
type Image struct {
	Source      string
	Image       image.Image
	Fingerprint string
}

// Bounds returns the decoded image bounds.
func (i *Image) Bounds() image.Rectangle {
	if i == nil || i.Image == nil {
		return image.Rectangle{}
	}
	return i.Image.Bounds()
}

// Resolver turns image sources into decoded images.
type Resolver interface {
	// Resolve decodes src. An empty src returns nil and no error.
	Resolve(ctx context.Context, src string) (*Image, error)
}

// Loader is the default Resolver. It reads files and data URIs and keeps
// a bounded memo of decoded images. It is safe for concurrent use.
type Loader struct {
	mu      sync.Mutex
	entries map[string]*Image
	order   []string
	limit   int

	// BaseDir resolves relative file paths. Empty means the working
	// directory.
	BaseDir string
}

// NewLoader creates a loader that memoizes up to limit images. A limit
// of zero or less disables memoization.
func NewLoader(limit int) *Loader {
	return &Loader{entries: make(map[string]*Image), limit: limit}
}

// Resolve implements Resolver.
func (l *Loader) Resolve(ctx context.Context, src string) (*Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.FromContext(err, "resolve image")
	}

	key := cache.Hash([]byte(l.BaseDir + "\x00" + src))
	if img := l.lookup(key); img != nil {
		return img, nil
	}

	data, err := l.read(src)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	out := &Image{Source: src, Image: img, Fingerprint: cache.Hash(data)}
	l.store(key, out)
	return out, nil
}

// Fingerprint returns the content hash of src without keeping the decoded
// image. Empty sources have an empty fingerprint.
func (l *Loader) Fingerprint(ctx context.Context, src string) (string, error) {
	img, err := l.Resolve(ctx, src)
	if err != nil || img == nil {
		return "", err
	}
	return img.Fingerprint, nil
}

func (l *Loader) lookup(key string) *Image {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[key]
}

func (l *Loader) store(key string, img *Image) {
	if l.limit <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[key]; ok {
		return
	}
	for len(l.order) >= l.limit {
		delete(l.entries, l.order[0])
		l.order = l.order[1:]
	}
	l.entries[key] = img
	l.order = append(l.order, key)
}

func (l *Loader) read(src string) ([]byte, error) {
	switch {
	case IsDataURI(src):
		return DecodeDataURI(src)
	case strings.HasPrefix(src, "file://"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidImageSource, err, "parse image url")
		}
		return readFile(u.Path)
	case strings.Contains(src, "://"):
		return nil, errors.New(errors.ErrCodeInvalidImageSource, "unsupported image source scheme in %q", truncate(src))
	}
	path := src
	if l.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.BaseDir, path)
	}
	return readFile(path)
}

func readFile(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImageSource, err, "open image %s", path)
	}
	if fi.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidImageSource, "image %s is a directory", path)
	}
	if fi.Size() > MaxSourceBytes {
		return nil, errors.New(errors.ErrCodeInvalidImageSource, "image %s exceeds %d bytes", path, MaxSourceBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImageSource, err, "read image %s", path)
	}
	return data, nil
}

// Decode decodes PNG, JPEG, GIF, BMP or TIFF bytes, honouring EXIF
// orientation.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidImageSource, "image is empty")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImageSource, err, "decode image")
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidImageSource, "image has no pixels")
	}
	return img, nil
}

// IsDataURI reports whether src is an inline data: URI rather than a path
// or URL.
func IsDataURI(src string) bool {
	return strings.HasPrefix(src, "data:")
}

// DecodeDataURI returns the payload of a data: URI. Base64 and
// percent-encoded payloads are supported.
func DecodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidImageSource, "not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidImageSource, "data uri has no payload")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders drop the padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidImageSource, err, "decode data uri")
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImageSource, err, "decode data uri")
	}
	return []byte(s), nil
}

// EncodeDataURI wraps PNG bytes in a data: URI.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func truncate(s string) string {
	if len(s) > 48 {
		return s[:48] + "..."
	}
	return s
}

var _ Resolver = (*Loader)(nil)
