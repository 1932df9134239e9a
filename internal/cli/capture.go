package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/export"
	"github.com/matzehuels/storeshots/pkg/server"
)

// captureOpts holds the flags for the capture command.
type captureOpts struct {
	url      string
	id       string
	selector string
	size     string
	width    int
	height   int
	format   string
	quality  float64
	output   string
}

// captureCommand screenshots a page element with headless Chromium.
func (c *CLI) captureCommand() *cobra.Command {
	var opts captureOpts
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a live page element at an exact store size",
		Long: `Capture loads a page in headless Chromium, screenshots one element at an
oversampled scale factor and crops it to the requested size.

Without --url it serves the preview page of a project on a loopback port
and captures that, which checks the live path against the offscreen one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCapture(cmd.Context(), &opts)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&opts.url, "url", "", "page to load")
	fl.StringVar(&opts.id, "id", "", "project to preview when --url is not given (default: the selected project)")
	fl.StringVar(&opts.selector, "selector", server.PreviewSelector, "CSS selector of the element to capture")
	fl.StringVarP(&opts.size, "size", "s", "", "export size id (default [export] size)")
	fl.IntVar(&opts.width, "width", 0, "custom width in pixels (with --height)")
	fl.IntVar(&opts.height, "height", 0, "custom height in pixels (with --width)")
	fl.StringVarP(&opts.format, "format", "f", "", "output format: png, jpeg")
	fl.Float64Var(&opts.quality, "quality", 0, "JPEG quality between 0 and 1")
	fl.StringVarP(&opts.output, "output", "o", ".", "output directory or file")
	return cmd
}

func (c *CLI) runCapture(ctx context.Context, o *captureOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	width, height := o.width, o.height
	if width == 0 && height == 0 {
		size := o.size
		if size == "" {
			size = cfg.Export.Size
		}
		s, err := catalog.GetSize(size)
		if err != nil {
			return err
		}
		width, height = s.Width, s.Height
	}
	formatName := o.format
	if formatName == "" {
		formatName = cfg.Export.Format
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}
	quality := o.quality
	if quality == 0 {
		quality = cfg.Export.Quality
	}
	fit, err := export.ParseFitPolicy(cfg.Export.Fit)
	if err != nil {
		return err
	}

	url := o.url
	if url == "" {
		stop, previewURL, err := c.servePreview(ctx, o.id)
		if err != nil {
			return err
		}
		defer stop()
		url = previewURL
	}

	capturer := export.NewLiveCapturer(cfg.Calibration(), c.Logger)
	capturer.ExecPath = cfg.Capture.ChromePath
	capturer.Timeout = cfg.Capture.Timeout.Duration
	capturer.Fit = fit

	spinner := newSpinnerWithContext(ctx, "Capturing "+o.selector+"...")
	spinner.Start()
	art, err := capturer.Capture(ctx, export.CaptureRequest{
		URL:      url,
		Selector: o.selector,
		Width:    width,
		Height:   height,
		Format:   format,
		Quality:  quality,
		BaseName: "screenshot-" + export.Timestamp(time.Now()),
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(o.output, []export.Artifact{art})
	if err != nil {
		return err
	}
	printSuccess("Captured %s", StyleLink.Render(url))
	printFile(paths[0])
	printExportStats(art.Width, art.Height, 1, len(art.Data), false)
	return nil
}

// servePreview serves the preview page of project id on a loopback port.
// The returned stop function shuts the listener down.
func (c *CLI) servePreview(ctx context.Context, id string) (func(), string, error) {
	pf, err := c.projects(ctx)
	if err != nil {
		return nil, "", err
	}
	p, err := pf.resolve(id)
	if err != nil {
		pf.close()
		return nil, "", err
	}
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		pf.close()
		return nil, "", err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		pf.close()
		runner.Close()
		return nil, "", errors.Wrap(errors.ErrCodeInternal, err, "listen for preview")
	}
	srv := &http.Server{
		Handler:           server.New(pf.store, nil, runner, c.Logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			c.Logger.Warn("preview server stopped", "err", err)
		}
	}()

	url := fmt.Sprintf("http://%s/preview/%s", ln.Addr(), p.ID)
	c.Logger.Debug("serving preview", "url", url)
	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = runner.Close()
		_ = pf.close()
	}
	return stop, url, nil
}
