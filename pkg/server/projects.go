package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/storeshots/pkg/project"
)

// projectList is the response of GET /api/projects.
type projectList struct {
	SelectedID string            `json:"selected_id"`
	Projects   []project.Project `json:"projects"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	snap := s.Store.Snapshot()
	if snap.Projects == nil {
		snap.Projects = []project.Project{}
	}
	writeJSON(w, http.StatusOK, projectList{SelectedID: snap.SelectedID, Projects: snap.Projects})
}

// handleCreateProject adds a default project. An optional body of
// project.Changes is applied to it.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var c project.Changes
	if r.ContentLength != 0 {
		var err error
		if c, err = s.decodeChanges(w, r); err != nil {
			writeError(w, err)
			return
		}
	}
	p, err := s.Store.Add(c.Patches()...)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.persist(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.Logger.Info("project created", "id", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.project(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	c, err := s.decodeChanges(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.Store.Update(chi.URLParam(r, "id"), c.Patches()...)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.persist(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Store.Remove(id); err != nil {
		writeError(w, err)
		return
	}
	if err := s.persist(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.Logger.Info("project deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicateProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.Store.Duplicate(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.persist(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleSelectProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Store.Select(id); err != nil {
		writeError(w, err)
		return
	}
	if err := s.persist(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.handleGetProject(w, r)
}

// project looks up the {id} route parameter.
func (s *Server) project(r *http.Request) (project.Project, error) {
	id := chi.URLParam(r, "id")
	p, ok := s.Store.Get(id)
	if !ok {
		return project.Project{}, errNotFound("project %q not found", id)
	}
	return p, nil
}
