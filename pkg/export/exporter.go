package export

import (
	"context"
	"image"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/compose"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/observability"
	"github.com/matzehuels/storeshots/pkg/project"
)

// Exporter runs export jobs against a shared Target.
//
// An Exporter is safe for concurrent use: jobs queue on the target, and
// the exporter itself holds no per-job state.
type Exporter struct {
	Renderer *compose.Renderer
	Target   *Target
	Logger   *log.Logger

	// PairDelay is waited between the two halves of a paired export.
	PairDelay time.Duration

	// Now returns the time used for file names. Nil means time.Now.
	Now func() time.Time
}

// NewExporter creates an exporter. A nil target gets a fresh one and a
// nil logger discards output.
func NewExporter(r *compose.Renderer, t *Target, logger *log.Logger) *Exporter {
	if t == nil {
		t = NewTarget()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Exporter{Renderer: r, Target: t, Logger: logger}
}

// Request describes one artifact.
type Request struct {
	Project      project.Project
	Width        int
	Height       int
	Format       Format
	Quality      float64
	Variant      catalog.Variant
	BaseName     string
	Placeholders bool
}

// Settings are the request fields shared by every artifact of a project
// or batch export.
type Settings struct {
	Width        int
	Height       int
	Format       Format
	Quality      float64
	Placeholders bool

	// Progress, when set, is called by Batch after each item with the
	// number of items finished so far.
	Progress func(done, total int)
}

func (s Settings) request(p project.Project, v catalog.Variant, base string) Request {
	return Request{
		Project:      p,
		Width:        s.Width,
		Height:       s.Height,
		Format:       s.Format,
		Quality:      s.Quality,
		Variant:      v,
		BaseName:     base,
		Placeholders: s.Placeholders,
	}
}

func (s Settings) validate() error {
	if err := errors.ValidateDimensions(s.Width, s.Height); err != nil {
		return err
	}
	if s.Format != FormatPNG && s.Format != FormatJPEG {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", s.Format)
	}
	if s.Format == FormatJPEG {
		return errors.ValidateQuality(s.Quality)
	}
	return nil
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Export renders req.Project at the requested size, captures it and
// encodes it. The returned job records every state the export passed
// through, also on failure.
func (e *Exporter) Export(ctx context.Context, req Request) (Artifact, *Job, error) {
	start := e.now()
	job := newJob(req.Project.ID, string(req.Variant), start)
	fail := func(err error) (Artifact, *Job, error) {
		job.fail(err)
		job.Duration = e.now().Sub(start)
		e.Logger.Warn("export failed", "project", req.Project.ID, "variant", req.Variant, "state", job.States[len(job.States)-2], "err", err)
		return Artifact{}, job, err
	}

	s := Settings{Width: req.Width, Height: req.Height, Format: req.Format, Quality: req.Quality}
	if err := s.validate(); err != nil {
		return fail(err)
	}
	if err := errors.ValidateBaseName(req.BaseName); err != nil {
		return fail(err)
	}

	img, err := e.renderAndCapture(ctx, job, req)
	if err != nil {
		return fail(err)
	}

	if err := job.advance(StateEncoding); err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(errors.FromContext(err, "encode %s", req.BaseName))
	}
	encStart := time.Now()
	data, err := Encode(img, req.Format, req.Quality)
	observability.Export().OnEncodeComplete(ctx, req.Project.ID, string(req.Format), len(data), time.Since(encStart), err)
	if err != nil {
		return fail(err)
	}
	if err := job.advance(StateDone); err != nil {
		return fail(err)
	}
	job.Duration = e.now().Sub(start)

	a := Artifact{
		Name:    FileName(req.BaseName, req.Format),
		Format:  req.Format,
		Width:   req.Width,
		Height:  req.Height,
		Variant: string(req.Variant),
		Data:    data,
	}
	e.Logger.Info("exported artifact", "file", a.Name, "bytes", len(data), "duration", job.Duration)
	return a, job, nil
}

// renderAndCapture holds the target from rendering through capture.
func (e *Exporter) renderAndCapture(ctx context.Context, job *Job, req Request) (image.Image, error) {
	if err := job.advance(StateRendering); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.FromContext(err, "render %s", req.Project.ID)
	}
	if err := e.Target.Acquire(ctx); err != nil {
		return nil, err
	}
	defer e.Target.Release()

	hooks := observability.Export()
	hooks.OnRenderStart(ctx, req.Project.ID, string(req.Variant))
	renderStart := time.Now()
	tree, err := e.Renderer.Render(ctx, req.Project.Clone(), req.Width, req.Height, compose.Options{
		Variant:      req.Variant,
		Placeholders: req.Placeholders,
	})
	hooks.OnRenderComplete(ctx, req.Project.ID, time.Since(renderStart), err)
	if err != nil {
		return nil, err
	}

	if err := job.advance(StateCapturing); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.FromContext(err, "capture %s", req.Project.ID)
	}
	captureStart := time.Now()
	img, err := e.Target.Capture(tree)
	hooks.OnCaptureComplete(ctx, req.Project.ID, req.Width, req.Height, time.Since(captureStart), err)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ExportProject exports p the way the editor's "export current" action
// does: one screenshot-{ts} file, or for paired layouts a left and a
// right file rendered in that order.
func (e *Exporter) ExportProject(ctx context.Context, p project.Project, s Settings) ([]Artifact, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if !p.IsPaired() {
		a, _, err := e.Export(ctx, s.request(p, catalog.VariantNone, BaseName(catalog.VariantNone, Timestamp(e.now()))))
		if err != nil {
			return nil, err
		}
		return []Artifact{a}, nil
	}

	left, _, err := e.Export(ctx, s.request(p, catalog.VariantLeft, BaseName(catalog.VariantLeft, Timestamp(e.now()))))
	if err != nil {
		return nil, err
	}
	if err := Sleep(ctx, e.PairDelay); err != nil {
		return nil, err
	}
	right, _, err := e.Export(ctx, s.request(p, catalog.VariantRight, BaseName(catalog.VariantRight, Timestamp(e.now()))))
	if err != nil {
		return nil, err
	}
	return []Artifact{left, right}, nil
}

// BaseName is the file name, without extension, of a single export:
// screenshot-{ts}, or screenshot-{variant}-{ts} for one half of a pair.
func BaseName(v catalog.Variant, ts string) string {
	if v == catalog.VariantNone {
		return "screenshot-" + ts
	}
	return "screenshot-" + string(v) + "-" + ts
}

// Timestamp formats t as Unix milliseconds, the suffix of export file names.
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// Sleep waits d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.FromContext(ctx.Err(), "wait between paired exports")
	case <-timer.C:
		return nil
	}
}
