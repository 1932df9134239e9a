package project

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storeshots/pkg/errors"
)

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

// Change kinds.
const (
	ChangeAdded     ChangeKind = "added"
	ChangeUpdated   ChangeKind = "updated"
	ChangeRemoved   ChangeKind = "removed"
	ChangeSelected  ChangeKind = "selected"
	ChangeReordered ChangeKind = "reordered"
	ChangeImported  ChangeKind = "imported"
	ChangeCleared   ChangeKind = "cleared"
)

// Change is delivered to subscribers after every mutation. Projects is a
// snapshot owned by the subscriber.
type Change struct {
	Kind       ChangeKind
	ID         string
	SelectedID string
	Projects   []Project
}

// Active returns the selected project of the snapshot.
func (c Change) Active() (Project, bool) {
	for _, p := range c.Projects {
		if p.ID == c.SelectedID {
			return p, true
		}
	}
	return Project{}, false
}

// Snapshot is the persisted form of a store.
type Snapshot struct {
	Version    int       `json:"version" toml:"version" yaml:"version" bson:"version"`
	SelectedID string    `json:"selected_id,omitempty" toml:"selected_id,omitempty" yaml:"selected_id,omitempty" bson:"selected_id,omitempty"`
	Projects   []Project `json:"projects" toml:"projects" yaml:"projects" bson:"-"`
}

// SnapshotVersion is the current persisted format version.
const SnapshotVersion = 1

// Store owns the ordered project list and the selection. It is safe for
// concurrent use. Subscribers run outside the lock, in registration order.
type Store struct {
	mu       sync.RWMutex
	projects []Project
	selected string

	subMu  sync.Mutex
	subs   map[int]func(Change)
	nextID int

	logger *log.Logger
	now    func() time.Time
}

// NewStore creates an empty store. A nil logger discards output.
func NewStore(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Store{
		subs:   make(map[int]func(Change)),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used for UpdatedAt stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// =============================================================================
// Queries
// =============================================================================

// Len returns the number of projects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// List returns deep copies of all projects in order.
func (s *Store) List() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.projects)
}

// Get returns a copy of the project with the given id.
func (s *Store) Get(id string) (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.projects[i].Clone(), true
	}
	return Project{}, false
}

// SelectedID returns the selected project id, or "" when none is selected.
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Active returns a copy of the selected project.
func (s *Store) Active() (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(s.selected); i >= 0 {
		return s.projects[i].Clone(), true
	}
	return Project{}, false
}

// Snapshot returns the persisted form of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Version: SnapshotVersion, SelectedID: s.selected, Projects: cloneAll(s.projects)}
}

// =============================================================================
// Mutations
// =============================================================================

// Add appends a default project, applies patches to it and selects it.
func (s *Store) Add(patches ...Patch) (Project, error) {
	s.mu.Lock()
	p := New()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	p, err := Apply(p, patches...)
	if err != nil {
		s.mu.Unlock()
		return Project{}, err
	}
	s.projects = append(s.projects, p)
	s.selected = p.ID
	c := s.changeLocked(ChangeAdded, p.ID)
	s.mu.Unlock()

	s.logger.Debug("project added", "id", p.ID)
	s.notify(c)
	return p.Clone(), nil
}

// Update applies patches to a copy of project id and replaces it. On error
// the stored project is unchanged.
func (s *Store) Update(id string, patches ...Patch) (Project, error) {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return Project{}, notFound(id)
	}
	p, err := Apply(s.projects[i], patches...)
	if err != nil {
		s.mu.Unlock()
		return Project{}, err
	}
	p.ID = id
	p.UpdatedAt = s.now()
	s.projects[i] = p
	c := s.changeLocked(ChangeUpdated, id)
	s.mu.Unlock()

	s.logger.Debug("project updated", "id", id, "patches", len(patches))
	s.notify(c)
	return p.Clone(), nil
}

// Duplicate copies project id under a new id, suffixes its title with
// " (copy)", inserts it right after the original and selects it.
func (s *Store) Duplicate(id string) (Project, error) {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return Project{}, notFound(id)
	}
	dup := s.projects[i].Clone()
	dup.ID = NewID()
	dup.Title += " (copy)"
	dup.CreatedAt = s.now()
	dup.UpdatedAt = dup.CreatedAt
	s.projects = slices.Insert(s.projects, i+1, dup)
	s.selected = dup.ID
	c := s.changeLocked(ChangeAdded, dup.ID)
	s.mu.Unlock()

	s.logger.Debug("project duplicated", "from", id, "id", dup.ID)
	s.notify(c)
	return dup.Clone(), nil
}

// Remove deletes project id. If it was selected, the first remaining
// project becomes selected.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound(id)
	}
	s.projects = slices.Delete(s.projects, i, i+1)
	if s.selected == id {
		s.selected = ""
		if len(s.projects) > 0 {
			s.selected = s.projects[0].ID
		}
	}
	c := s.changeLocked(ChangeRemoved, id)
	s.mu.Unlock()

	s.logger.Debug("project removed", "id", id)
	s.notify(c)
	return nil
}

// Select makes id the active project. An empty id clears the selection.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	if id != "" && s.index(id) < 0 {
		s.mu.Unlock()
		return notFound(id)
	}
	s.selected = id
	c := s.changeLocked(ChangeSelected, id)
	s.mu.Unlock()

	s.notify(c)
	return nil
}

// Reorder moves the project at index from to index to.
func (s *Store) Reorder(from, to int) error {
	s.mu.Lock()
	n := len(s.projects)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidInput, "reorder %d -> %d out of range [0,%d)", from, to, n)
	}
	p := s.projects[from]
	s.projects = slices.Delete(s.projects, from, from+1)
	s.projects = slices.Insert(s.projects, to, p)
	c := s.changeLocked(ChangeReordered, p.ID)
	s.mu.Unlock()

	s.notify(c)
	return nil
}

// Import replaces all projects and selects the first one. Missing fields
// are filled with defaults. Duplicate ids are rejected.
func (s *Store) Import(projects []Project) error {
	return s.restore(Snapshot{Version: SnapshotVersion, Projects: projects}, ChangeImported)
}

// Clear removes every project.
func (s *Store) Clear() {
	s.mu.Lock()
	s.projects = nil
	s.selected = ""
	c := s.changeLocked(ChangeCleared, "")
	s.mu.Unlock()

	s.notify(c)
}

// =============================================================================
// Persistence
// =============================================================================

// Load replaces the store content with the backend's snapshot.
func (s *Store) Load(ctx context.Context, b Backend) error {
	snap, err := b.Load(ctx)
	if err != nil {
		return err
	}
	return s.restore(snap, ChangeImported)
}

// Save writes the current state to the backend.
func (s *Store) Save(ctx context.Context, b Backend) error {
	snap := s.Snapshot()
	if err := b.Save(ctx, snap); err != nil {
		return err
	}
	s.logger.Debug("projects saved", "count", len(snap.Projects))
	return nil
}

func (s *Store) restore(snap Snapshot, kind ChangeKind) error {
	projects := cloneAll(snap.Projects)
	seen := make(map[string]bool, len(projects))
	for i := range projects {
		projects[i].Normalize()
		if seen[projects[i].ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate project id %q", projects[i].ID)
		}
		seen[projects[i].ID] = true
	}

	s.mu.Lock()
	s.projects = projects
	s.selected = ""
	if seen[snap.SelectedID] {
		s.selected = snap.SelectedID
	} else if len(projects) > 0 {
		s.selected = projects[0].ID
	}
	c := s.changeLocked(kind, "")
	s.mu.Unlock()

	s.notify(c)
	return nil
}

// =============================================================================
// Internals
// =============================================================================

func (s *Store) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.projects, func(p Project) bool { return p.ID == id })
}

func (s *Store) changeLocked(kind ChangeKind, id string) Change {
	return Change{Kind: kind, ID: id, SelectedID: s.selected, Projects: cloneAll(s.projects)}
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		own := c
		own.Projects = cloneAll(c.Projects)
		fn(own)
	}
}

func cloneAll(ps []Project) []Project {
	if ps == nil {
		return nil
	}
	out := make([]Project, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "project %q not found", id)
}
