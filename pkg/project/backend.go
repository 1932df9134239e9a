package project

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/storeshots/pkg/errors"
)

// Backend persists store snapshots.
type Backend interface {
	// Load returns the persisted snapshot. A backend with nothing stored
	// returns an empty snapshot and no error.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snap Snapshot) error

	// Close releases backend resources.
	Close() error
}

// Codec names the serialization of a project file.
type Codec string

// Supported codecs.
const (
	CodecJSON Codec = "json"
	CodecTOML Codec = "toml"
	CodecYAML Codec = "yaml"
)

// CodecFor picks a codec from a file extension.
func CodecFor(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return CodecJSON, nil
	case ".toml":
		return CodecTOML, nil
	case ".yaml", ".yml":
		return CodecYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported project file %q (want .json, .toml, .yaml or .yml)", filepath.Base(path))
}

// Marshal encodes a snapshot.
func (c Codec) Marshal(snap Snapshot) ([]byte, error) {
	var (
		buf bytes.Buffer
		err error
	)
	switch c {
	case CodecJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(snap)
	case CodecTOML:
		err = toml.NewEncoder(&buf).Encode(snap)
	case CodecYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(snap)
		if err == nil {
			err = enc.Close()
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown codec %q", c)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodingFailed, err, "encode projects as %s", c)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a snapshot.
func (c Codec) Unmarshal(data []byte) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	switch c {
	case CodecJSON:
		err = json.Unmarshal(data, &snap)
	case CodecTOML:
		_, err = toml.Decode(string(data), &snap)
	case CodecYAML:
		err = yaml.Unmarshal(data, &snap)
	default:
		return Snapshot{}, errors.New(errors.ErrCodeInvalidFormat, "unknown codec %q", c)
	}
	if err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s projects", c)
	}
	return snap, nil
}

// =============================================================================
// File backend
// =============================================================================

// FileBackend stores the snapshot in one file whose extension picks the
// codec. Writes go through a temp file and a rename.
type FileBackend struct {
	mu    sync.Mutex
	path  string
	codec Codec
}

// NewFileBackend creates a backend for path.
func NewFileBackend(path string) (*FileBackend, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}
	return &FileBackend{path: path, codec: codec}, nil
}

// Path returns the backing file.
func (b *FileBackend) Path() string { return b.path }

// Load reads the file. A missing file is an empty snapshot.
func (b *FileBackend) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, errors.FromContext(err, "load %s", b.path)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return Snapshot{Version: SnapshotVersion}, nil
	}
	if err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", b.path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Snapshot{Version: SnapshotVersion}, nil
	}
	return b.codec.Unmarshal(data)
}

// Save writes the file atomically.
func (b *FileBackend) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return errors.FromContext(err, "save %s", b.path)
	}
	data, err := b.codec.Marshal(snap)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", b.path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", b.path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", b.path)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "replace %s", b.path)
	}
	return nil
}

// Close does nothing for file backends.
func (b *FileBackend) Close() error { return nil }

var _ Backend = (*FileBackend)(nil)

// =============================================================================
// Memory backend
// =============================================================================

// MemoryBackend keeps the snapshot in memory. Useful for tests and the
// HTTP server without persistence.
type MemoryBackend struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewMemoryBackend creates an empty memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{snap: Snapshot{Version: SnapshotVersion}}
}

func (b *MemoryBackend) Load(ctx context.Context) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{Version: b.snap.Version, SelectedID: b.snap.SelectedID, Projects: cloneAll(b.snap.Projects)}, nil
}

func (b *MemoryBackend) Save(ctx context.Context, snap Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = Snapshot{Version: snap.Version, SelectedID: snap.SelectedID, Projects: cloneAll(snap.Projects)}
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

var _ Backend = (*MemoryBackend)(nil)
