package server

import (
	"html/template"
	"net/http"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/export"
	"github.com/matzehuels/storeshots/pkg/imagesrc"
)

// PreviewMaxHeight is the preview canvas height when the request does
// not give a size.
const PreviewMaxHeight = 800

// PreviewSelector selects the composition element of the preview page.
const PreviewSelector = "#composition"

var previewPage = template.Must(template.New("preview").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  html, body { margin: 0; background: #18181b; }
  body { display: flex; min-height: 100vh; align-items: center; justify-content: center; }
  #composition { display: flex; line-height: 0; }
  #composition img { display: block; width: {{.Width}}px; height: {{.Height}}px; }
</style>
</head>
<body>
<div id="composition" data-project="{{.ID}}">
{{- range .Images}}
  <img src="{{.}}" alt="">
{{- end}}
</div>
</body>
</html>
`))

type previewData struct {
	ID, Title     string
	Width, Height int
	Images        []template.URL
}

// handlePreview serves an HTML page showing the project at preview
// resolution. Paired projects show both halves side by side so the seam
// can be inspected.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
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
	if r.URL.Query().Get("width") == "" && r.URL.Query().Get("height") == "" && r.URL.Query().Get("size") == "" {
		platform := catalog.PlatformAndroid
		if d, ok := catalog.LookupDevice(p.DeviceFrameID); ok {
			platform = d.Platform
		}
		opts.Size = ""
		opts.Width, opts.Height, _ = catalog.PreviewSize(platform, PreviewMaxHeight)
	}
	opts.Format = string(export.FormatPNG)
	opts.Placeholders = true
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.Runner.Export(r.Context(), p, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	data := previewData{ID: p.ID, Title: p.Title, Width: opts.Width, Height: opts.Height}
	for _, a := range res.Artifacts {
		// Data URIs built from our own PNG bytes are safe to mark as URLs.
		data.Images = append(data.Images, template.URL(imagesrc.EncodeDataURI(a.ContentType(), a.Data)))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := previewPage.Execute(w, data); err != nil {
		s.Logger.Error("render preview page", "id", p.ID, "err", err)
	}
}
