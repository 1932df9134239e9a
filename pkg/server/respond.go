package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/export"
	"github.com/matzehuels/storeshots/pkg/imagesrc"
	"github.com/matzehuels/storeshots/pkg/project"
)

// errorBody is the JSON form of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidSize,
		errors.ErrCodeInvalidPath, errors.ErrCodeInvalidImageSource, errors.ErrCodeCatalogLookupFailed:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeElementNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCanceled:
		return http.StatusRequestTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeStatus(w, StatusFor(code), string(code), errors.UserMessage(err))
}

func writeStatus(w http.ResponseWriter, status int, code, message string) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = http.StatusText(status)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeArtifact(w http.ResponseWriter, a export.Artifact) {
	w.Header().Set("Content-Type", a.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+a.Name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}

// decodeJSON reads a bounded JSON body into dst. Unknown fields are
// rejected so typos in patch documents do not pass silently.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if s.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body: %v", err)
	}
	return nil
}

// decodeChanges reads a project.Changes body and checks it against the
// catalogs and the server's image source policy.
func (s *Server) decodeChanges(w http.ResponseWriter, r *http.Request) (project.Changes, error) {
	var c project.Changes
	if err := s.decodeJSON(w, r, &c); err != nil {
		return c, err
	}
	if err := c.CheckCatalog(); err != nil {
		return c, err
	}
	if !s.AllowLocalImages {
		for _, src := range c.ImageSources() {
			if !imagesrc.IsDataURI(src) {
				return c, errors.New(errors.ErrCodeInvalidImageSource, "images must be sent as data: URIs")
			}
		}
	}
	return c, nil
}

func errNotFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}
