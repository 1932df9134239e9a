package export

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/geometry"
)

// LiveCapturer screenshots a DOM element of a live page with headless
// Chromium. It is the fallback for compositions that only exist as an
// on-screen element at preview resolution: the element is captured at
// an oversampled device scale factor and Fit brings it to the target.
type LiveCapturer struct {
	// ExecPath is the browser binary. Empty lets chromedp search for one.
	ExecPath string

	// Oversample is the device scale factor of the capture. Values below
	// the calibration's oversample are raised to it.
	Oversample float64

	// Viewport is the CSS pixel size of the browser window.
	ViewportWidth, ViewportHeight int

	// Timeout bounds navigation and the wait for the element.
	Timeout time.Duration

	// Fit is the policy used to reach the target size.
	Fit FitPolicy

	Logger *log.Logger
}

// NewLiveCapturer returns a capturer using the calibration's oversample
// factor and the active fit policy.
func NewLiveCapturer(cal geometry.Calibration, logger *log.Logger) *LiveCapturer {
	cal = cal.WithDefaults()
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &LiveCapturer{
		Oversample:     cal.Oversample,
		ViewportWidth:  1280,
		ViewportHeight: 1024,
		Timeout:        30 * time.Second,
		Fit:            FitCrop,
		Logger:         logger,
	}
}

// CaptureRequest describes a live capture.
type CaptureRequest struct {
	URL      string
	Selector string
	Width    int
	Height   int
	Format   Format
	Quality  float64
	BaseName string
}

// Capture loads req.URL, screenshots the first element matching
// req.Selector and encodes it at exactly req.Width×req.Height. An element
// that does not become visible within the timeout is ELEMENT_NOT_FOUND.
func (c *LiveCapturer) Capture(ctx context.Context, req CaptureRequest) (Artifact, error) {
	if err := errors.ValidateDimensions(req.Width, req.Height); err != nil {
		return Artifact{}, err
	}
	if err := errors.ValidateBaseName(req.BaseName); err != nil {
		return Artifact{}, err
	}
	if req.Selector == "" {
		return Artifact{}, errors.New(errors.ErrCodeInvalidInput, "selector is required")
	}

	raw, err := c.screenshot(ctx, req.URL, req.Selector)
	if err != nil {
		return Artifact{}, err
	}
	src, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return Artifact{}, errors.Wrap(errors.ErrCodeEncodingFailed, err, "decode element capture")
	}

	if err := ctx.Err(); err != nil {
		return Artifact{}, errors.FromContext(err, "fit capture")
	}
	fitted, err := Fit(src, req.Width, req.Height, c.Fit)
	if err != nil {
		return Artifact{}, err
	}
	data, err := Encode(fitted, req.Format, req.Quality)
	if err != nil {
		return Artifact{}, err
	}

	b := src.Bounds()
	crop := CropRect(b, req.Width, req.Height)
	c.Logger.Info("captured live element",
		"selector", req.Selector,
		"source", b.Size(),
		"cropped", crop.Size() != b.Size(),
		"bytes", len(data))
	return Artifact{
		Name:   FileName(req.BaseName, req.Format),
		Format: req.Format,
		Width:  req.Width,
		Height: req.Height,
		Data:   data,
	}, nil
}

func (c *LiveCapturer) screenshot(ctx context.Context, url, selector string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Headless,
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	scale := max(c.Oversample, geometry.DefaultCalibration().Oversample)
	var buf []byte
	err := chromedp.Run(runCtx,
		emulation.SetDeviceMetricsOverride(int64(c.ViewportWidth), int64(c.ViewportHeight), scale, false),
		chromedp.Navigate(url),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Screenshot(selector, &buf, chromedp.NodeVisible, chromedp.ByQuery),
	)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return nil, errors.FromContext(ctx.Err(), "capture %s", selector)
	case stderrors.Is(err, context.DeadlineExceeded):
		return nil, errors.Wrap(errors.ErrCodeElementNotFound, err, "element %q not found at %s", selector, url)
	default:
		return nil, errors.Wrap(errors.ErrCodeEncodingFailed, err, "capture %s", selector)
	}
	if len(buf) == 0 {
		return nil, errors.New(errors.ErrCodeEncodingFailed, "capture of %q produced no drawable buffer", selector)
	}
	return buf, nil
}
