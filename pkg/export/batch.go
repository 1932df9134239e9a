package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/observability"
	"github.com/matzehuels/storeshots/pkg/project"
)

// Item is one entry of a batch. A nil Project means the project could
// not be found; the item then fails with ELEMENT_NOT_FOUND.
type Item struct {
	ID      string
	Project *project.Project
}

// Outcome is the result of one batch item.
type Outcome struct {
	Index     int        `json:"index"`
	ProjectID string     `json:"project_id"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
	Jobs      []*Job     `json:"jobs,omitempty"`
	Err       error      `json:"-"`
}

// Failed reports whether the item produced no artifacts.
func (o Outcome) Failed() bool { return o.Err != nil }

// BatchResult holds one outcome per item, in item order.
type BatchResult struct {
	Outcomes []Outcome
}

// Artifacts returns every artifact of the successful items, in order.
func (r BatchResult) Artifacts() []Artifact {
	var out []Artifact
	for _, o := range r.Outcomes {
		if !o.Failed() {
			out = append(out, o.Artifacts...)
		}
	}
	return out
}

// Failed returns the outcomes that failed.
func (r BatchResult) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// Batch exports items one at a time, in order, through the shared
// target. Item i is fully rendered and captured before item i+1 starts.
// A failure is recorded on its outcome and the batch moves on, except
// for cancellation, which marks every remaining item CANCELED.
func (e *Exporter) Batch(ctx context.Context, items []Item, s Settings) (BatchResult, error) {
	if err := s.validate(); err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Outcomes: make([]Outcome, len(items))}
	start := time.Now()
	for i, it := range items {
		index := i + 1
		out := &res.Outcomes[i]
		out.Index = index
		out.ProjectID = it.ID

		if err := ctx.Err(); err != nil {
			out.Err = errors.FromContext(err, "export item %d", index)
			observability.Export().OnBatchItem(ctx, index, it.ID, out.Err)
			continue
		}
		if it.Project == nil {
			out.Err = errors.New(errors.ErrCodeElementNotFound, "project %q not found", it.ID)
		} else {
			out.ProjectID = it.Project.ID
			e.batchItem(ctx, out, *it.Project, s)
		}
		if out.Err != nil {
			e.Logger.Warn("batch item failed", "index", index, "project", out.ProjectID, "err", out.Err)
		}
		observability.Export().OnBatchItem(ctx, index, out.ProjectID, out.Err)
		if s.Progress != nil {
			s.Progress(index, len(items))
		}
	}

	e.Logger.Info("batch export finished",
		"items", len(items),
		"failed", len(res.Failed()),
		"duration", time.Since(start))
	return res, nil
}

// batchItem exports one project as screenshot-{index}, or as
// screenshot-{index}-left and -right for paired layouts.
func (e *Exporter) batchItem(ctx context.Context, out *Outcome, p project.Project, s Settings) {
	base := fmt.Sprintf("screenshot-%d", out.Index)
	variants := []variantFile{{catalog.VariantNone, base}}
	if p.IsPaired() {
		variants = []variantFile{
			{catalog.VariantLeft, base + "-left"},
			{catalog.VariantRight, base + "-right"},
		}
	}

	for i, v := range variants {
		if i > 0 {
			if err := Sleep(ctx, e.PairDelay); err != nil {
				out.Err = err
				return
			}
		}
		a, job, err := e.Export(ctx, s.request(p, v.variant, v.base))
		out.Jobs = append(out.Jobs, job)
		if err != nil {
			out.Artifacts = nil
			out.Err = err
			return
		}
		out.Artifacts = append(out.Artifacts, a)
	}
}

type variantFile struct {
	variant catalog.Variant
	base    string
}

// Package bundles the successful artifacts. Exactly one artifact is
// returned as is; more are zipped into screenshots-{ts}.zip.
func (r BatchResult) Package(ctx context.Context, ts string) (Artifact, error) {
	arts := r.Artifacts()
	switch len(arts) {
	case 0:
		return Artifact{}, errors.New(errors.ErrCodeNotFound, "no artifacts to package")
	case 1:
		return arts[0], nil
	}
	if err := ctx.Err(); err != nil {
		return Artifact{}, errors.FromContext(err, "assemble archive")
	}
	data, err := Zip(arts)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: "screenshots-" + ts + ".zip", Data: data}, nil
}

// Zip writes arts into a zip archive in order. PNG data is already
// compressed and is stored as is.
func Zip(arts []Artifact) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]bool, len(arts))
	for _, a := range arts {
		if seen[a.Name] {
			return nil, errors.New(errors.ErrCodeInternal, "duplicate archive entry %q", a.Name)
		}
		seen[a.Name] = true

		method := zip.Deflate
		if strings.HasSuffix(a.Name, ".png") || strings.HasSuffix(a.Name, ".jpg") {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: a.Name, Method: method, Modified: time.Now()})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncodingFailed, err, "add %s to archive", a.Name)
		}
		if _, err := w.Write(a.Data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncodingFailed, err, "write %s to archive", a.Name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodingFailed, err, "close archive")
	}
	return buf.Bytes(), nil
}
