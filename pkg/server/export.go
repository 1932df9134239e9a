package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/export"
	"github.com/matzehuels/storeshots/pkg/pipeline"
)

// Response headers of the export endpoints.
const (
	HeaderCache        = "X-Cache"
	HeaderExportFailed = "X-Export-Failed"
	HeaderExportCount  = "X-Export-Count"
)

// handleComposition returns the visual tree of a project as JSON.
func (s *Server) handleComposition(w http.ResponseWriter, r *http.Request) {
	p, err := s.project(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := s.queryOptions(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, err)
		return
	}
	data, hit, err := s.Runner.CompositionJSON(r.Context(), p, opts.Width, opts.Height, catalog.Variant(opts.Variant), opts.Refresh)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set(HeaderCache, cacheHeader(hit))
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handleExport exports one project: the image itself, or a zip holding
// the left and right halves of a paired project.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	p, err := s.project(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := s.queryOptions(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.Runner.Export(r.Context(), p, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	out := export.BatchResult{Outcomes: []export.Outcome{{ProjectID: p.ID, Artifacts: res.Artifacts}}}
	a, err := out.Package(r.Context(), export.Timestamp(s.now()))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set(HeaderCache, cacheHeader(res.CacheInfo.Hit))
	writeArtifact(w, a)
}

// batchRequest is the body of POST /api/export. An empty ids list
// exports every project.
type batchRequest struct {
	IDs []string `json:"ids"`
	pipeline.Options
}

// handleBatchExport exports several projects into one download. Failed
// items are listed in the X-Export-Failed header; the request only fails
// when nothing could be exported.
func (s *Server) handleBatchExport(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	opts := s.withDefaults(req.Options)

	res, err := s.Runner.ExportAll(r.Context(), s.Store, req.IDs, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	failed := res.Failed()
	ids := make([]string, len(failed))
	for i, o := range failed {
		ids[i] = o.ProjectID
		s.Logger.Warn("batch item failed", "index", o.Index, "project", o.ProjectID, "err", o.Err)
	}
	if len(ids) > 0 {
		w.Header().Set(HeaderExportFailed, strings.Join(ids, ","))
	}
	w.Header().Set(HeaderExportCount, strconv.Itoa(len(res.Outcomes)-len(failed)))

	a, err := res.Package(r.Context(), export.Timestamp(s.now()))
	if err != nil {
		if len(failed) > 0 {
			err = failed[0].Err
		}
		writeError(w, err)
		return
	}
	writeArtifact(w, a)
}

// queryOptions reads export options from the query string on top of the
// server defaults.
func (s *Server) queryOptions(q url.Values) (pipeline.Options, error) {
	var o pipeline.Options
	o.Size = q.Get("size")
	o.Format = q.Get("format")
	o.Variant = q.Get("variant")

	var err error
	if o.Width, err = intParam(q, "width"); err != nil {
		return o, err
	}
	if o.Height, err = intParam(q, "height"); err != nil {
		return o, err
	}
	if v := q.Get("quality"); v != "" {
		if o.Quality, err = strconv.ParseFloat(v, 64); err != nil {
			return o, errors.New(errors.ErrCodeInvalidInput, "quality must be a number, got %q", v)
		}
	}
	if o.Placeholders, err = boolParam(q, "placeholders"); err != nil {
		return o, err
	}
	if o.Refresh, err = boolParam(q, "refresh"); err != nil {
		return o, err
	}
	return s.withDefaults(o), nil
}

// withDefaults fills the fields o leaves unset from s.Defaults.
func (s *Server) withDefaults(o pipeline.Options) pipeline.Options {
	d := s.Defaults
	if o.Size == "" && o.Width == 0 && o.Height == 0 {
		o.Size, o.Width, o.Height = d.Size, d.Width, d.Height
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	if o.Quality == 0 {
		o.Quality = d.Quality
	}
	o.Logger = s.Logger
	return o
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, v)
	}
	return n, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
	}
	return b, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
