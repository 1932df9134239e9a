package server

import (
	"net/http"

	"github.com/matzehuels/storeshots/pkg/buildinfo"
	"github.com/matzehuels/storeshots/pkg/catalog"
)

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status   string `json:"status"`
		Projects int    `json:"projects"`
		buildinfo.Info
	}{"ok", s.Store.Len(), buildinfo.Current()})
}

func (s *Server) handleLayouts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Layouts())
}

// handleDevices lists devices, filtered by ?platform=ios|android.
func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	if p := r.URL.Query().Get("platform"); p != "" {
		writeJSON(w, http.StatusOK, catalog.DevicesByPlatform(catalog.Platform(p)))
		return
	}
	writeJSON(w, http.StatusOK, catalog.Devices())
}

// handleSizes lists export sizes, filtered by ?store=app-store|play-store.
func (s *Server) handleSizes(w http.ResponseWriter, r *http.Request) {
	if st := r.URL.Query().Get("store"); st != "" {
		writeJSON(w, http.StatusOK, catalog.SizesByStore(catalog.Store(st)))
		return
	}
	writeJSON(w, http.StatusOK, catalog.Sizes())
}

func (s *Server) handleGradients(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Gradients []catalog.Gradient   `json:"gradients"`
		Solids    []catalog.SolidColor `json:"solids"`
	}{catalog.Gradients(), catalog.SolidColors()})
}
