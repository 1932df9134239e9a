package project

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/storeshots/pkg/errors"
	"github.com/matzehuels/storeshots/pkg/geometry"
)

func TestNewDefaults(t *testing.T) {
	p := New()
	if p.ID == "" {
		t.Fatal("New() produced an empty id")
	}
	if p.Title != DefaultTitle || p.Subtitle != DefaultSubtitle {
		t.Errorf("title/subtitle = %q/%q", p.Title, p.Subtitle)
	}
	if p.LayoutID != "classic" || p.DeviceFrameID != "iphone-15-pro" {
		t.Errorf("layout/device = %q/%q", p.LayoutID, p.DeviceFrameID)
	}
	if !p.Background.IsGradient() || p.Background.Angle != 135 || len(p.Background.Colors) != 3 {
		t.Errorf("background = %+v, want sunset gradient", p.Background)
	}
	if len(p.FeaturePills) != 4 || len(p.Stats) != 3 {
		t.Errorf("pills=%d stats=%d, want 4 and 3", len(p.FeaturePills), len(p.Stats))
	}
	if p.FeaturePillsPosition != PlaceFirst || p.StatsPosition != PlaceSecond {
		t.Errorf("positions = %q/%q", p.FeaturePillsPosition, p.StatsPosition)
	}
	if p.PhoneTransform.Scale != 1 || p.TextTransform.Scale != 1 || p.ImageTransform.Zoom != 1 {
		t.Error("transforms should default to identity")
	}
	if New().ID == p.ID {
		t.Error("two projects share an id")
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := New()
	img := "a.png"
	p.PhoneConfigs[1].Image = &img

	c := p.Clone()
	c.FeaturePills[0].Text = "changed"
	c.Background.Colors[0] = "#000000"
	*c.PhoneConfigs[1].Image = "b.png"

	if p.FeaturePills[0].Text == "changed" || p.Background.Colors[0] == "#000000" {
		t.Error("Clone shares slices with the original")
	}
	if *p.PhoneConfigs[1].Image != "a.png" {
		t.Error("Clone shares phone config pointers with the original")
	}
}

func TestPhoneResolution(t *testing.T) {
	p := New()
	p.Image = "shared.png"
	p.PhoneTransform = PhoneTransform{X: 3, Scale: 1.1}
	empty := ""
	p.PhoneConfigs[1] = PhoneConfig{Image: &empty, DeviceFrameID: "pixel-8"}

	if got := p.PhoneImage(0); got != "shared.png" {
		t.Errorf("PhoneImage(0) = %q", got)
	}
	if got := p.PhoneImage(1); got != "" {
		t.Errorf("PhoneImage(1) = %q, want explicit empty override", got)
	}
	if got := p.PhoneDevice(1); got != "pixel-8" {
		t.Errorf("PhoneDevice(1) = %q", got)
	}
	if got := p.PhoneDevice(0); got != "iphone-15-pro" {
		t.Errorf("PhoneDevice(0) = %q", got)
	}
	if got := p.PhoneDelta(0); got.DX != 3 || got.Scale != 1.1 {
		t.Errorf("PhoneDelta(0) = %+v, want shared transform", got)
	}
	if got := p.PhoneDelta(1); got != geometry.Identity {
		t.Errorf("PhoneDelta(1) = %+v, want identity", got)
	}
}

func TestApplyRejectsWholeUpdate(t *testing.T) {
	p := New()
	got, err := Apply(p, SetTitle("ok"), SetImageTransform(ImageTransform{Zoom: -1}))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("Apply() error = %v, want INVALID_INPUT", err)
	}
	if got.Title != p.Title {
		t.Errorf("Apply() returned a partially patched project: %q", got.Title)
	}
}

func TestPatches(t *testing.T) {
	tests := []struct {
		name  string
		patch Patch
		check func(Project) bool
		fails bool
	}{
		{"solid", SetSolidBackground("#ff0000"), func(p Project) bool {
			return p.Background.Type == BackgroundSolid && p.Background.AccentColor() == "#ff0000"
		}, false},
		{"preset", UseGradientPreset("aurora"), func(p Project) bool { return p.Background.Angle == 45 }, false},
		{"unknown preset", UseGradientPreset("nope"), nil, true},
		{"empty gradient", SetGradientBackground(nil, 0), nil, true},
		{"placement", SetStatsPosition(PlaceBoth), func(p Project) bool { return p.StatsPosition == PlaceBoth }, false},
		{"bad placement", SetStatsPosition("middle"), nil, true},
		{"phone delta", SetPhoneDelta(1, PhoneTransform{Y: -4, Scale: 1}), func(p Project) bool {
			return p.PhoneConfigs[1].PhoneTransform != nil && p.PhoneConfigs[1].PhoneTransform.Y == -4
		}, false},
		{"phone index", SetPhoneDelta(2, PhoneTransform{}), nil, true},
		{"select phone", SelectPhone(1), func(p Project) bool {
			return p.SelectedPhoneIndex != nil && *p.SelectedPhoneIndex == 1
		}, false},
		{"empty layout", SetLayout(""), nil, true},
		{"unknown layout kept", SetLayout("mystery"), func(p Project) bool { return p.LayoutID == "mystery" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(New(), tt.patch)
			if tt.fails {
				if err == nil {
					t.Error("Apply() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if !tt.check(got) {
				t.Errorf("patch not applied: %+v", got)
			}
		})
	}
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(nil)

	a, err := s.Add(SetTitle("A"))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := s.Add(SetTitle("B"))
	if s.SelectedID() != b.ID {
		t.Errorf("Add did not select the new project")
	}

	dup, err := s.Duplicate(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if dup.ID == a.ID || dup.Title != "A (copy)" {
		t.Errorf("Duplicate() = %q %q", dup.ID, dup.Title)
	}
	list := s.List()
	if len(list) != 3 || list[1].ID != dup.ID {
		t.Errorf("duplicate not inserted after original: %v", ids(list))
	}
	if s.SelectedID() != dup.ID {
		t.Error("Duplicate did not select the copy")
	}

	if err := s.Remove(dup.ID); err != nil {
		t.Fatal(err)
	}
	if s.SelectedID() != a.ID {
		t.Errorf("after removing the selection, selected = %q, want first project", s.SelectedID())
	}

	if err := s.Reorder(0, 1); err != nil {
		t.Fatal(err)
	}
	if got := ids(s.List()); got[0] != b.ID || got[1] != a.ID {
		t.Errorf("Reorder(0, 1) = %v", got)
	}
	if err := s.Reorder(0, 5); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Reorder out of range error = %v", err)
	}

	if _, err := s.Update("missing", SetTitle("x")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Update(missing) error = %v", err)
	}
	if err := s.Select("missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Select(missing) error = %v", err)
	}

	s.Clear()
	if s.Len() != 0 || s.SelectedID() != "" {
		t.Error("Clear() left state behind")
	}
	if _, ok := s.Active(); ok {
		t.Error("Active() on empty store should report false")
	}
}

func TestStoreUpdateStampsAndCopies(t *testing.T) {
	s := NewStore(nil)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	p, _ := s.Add()
	p.Title = "mutated outside"
	if got, _ := s.Get(p.ID); got.Title == "mutated outside" {
		t.Error("store exposes its internal project")
	}

	u, err := s.Update(p.ID, SetTitle("Hello"))
	if err != nil {
		t.Fatal(err)
	}
	if u.Title != "Hello" || !u.UpdatedAt.Equal(fixed) {
		t.Errorf("Update() = %q at %v", u.Title, u.UpdatedAt)
	}
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore(nil)
	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c) })

	p, _ := s.Add()
	_, _ = s.Update(p.ID, SetTitle("Hi"))

	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if changes[0].Kind != ChangeAdded || changes[1].Kind != ChangeUpdated {
		t.Errorf("kinds = %s, %s", changes[0].Kind, changes[1].Kind)
	}
	active, ok := changes[1].Active()
	if !ok || active.Title != "Hi" {
		t.Errorf("snapshot active = %+v, %v", active.Title, ok)
	}

	changes[1].Projects[0].Title = "scribbled"
	if got, _ := s.Get(p.ID); got.Title != "Hi" {
		t.Error("subscriber snapshot aliases store state")
	}

	unsubscribe()
	unsubscribe()
	s.Clear()
	if len(changes) != 2 {
		t.Error("notification delivered after unsubscribe")
	}
}

func TestStoreImport(t *testing.T) {
	s := NewStore(nil)
	if err := s.Import([]Project{{ID: "x", Title: "X"}, {ID: "y"}}); err != nil {
		t.Fatal(err)
	}
	if s.SelectedID() != "x" {
		t.Errorf("selected = %q, want first imported", s.SelectedID())
	}
	got, _ := s.Get("y")
	if got.LayoutID != "classic" || got.TextStyle.TitleSize != 32 {
		t.Errorf("import did not normalize: %+v", got)
	}

	if err := s.Import([]Project{{ID: "z"}, {ID: "z"}}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Import(duplicate ids) error = %v", err)
	}
	if s.Len() != 2 {
		t.Error("failed import replaced the store")
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".toml", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "projects"+ext)
			b, err := NewFileBackend(path)
			if err != nil {
				t.Fatal(err)
			}

			src := NewStore(nil)
			a, _ := src.Add(SetTitle("Alpha"), SetPhoneImage(1, "second.png"), SelectPhone(1))
			_, _ = src.Add(SetTitle("Beta"), SetSolidBackground("#111111"))
			_ = src.Select(a.ID)
			if err := src.Save(ctx, b); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			dst := NewStore(nil)
			if err := dst.Load(ctx, b); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if dst.SelectedID() != a.ID {
				t.Errorf("selected = %q, want %q", dst.SelectedID(), a.ID)
			}
			list := dst.List()
			if len(list) != 2 || list[0].Title != "Alpha" || list[1].Background.Color != "#111111" {
				t.Fatalf("loaded = %+v", list)
			}
			if img := list[0].PhoneImage(1); img != "second.png" {
				t.Errorf("phone override lost: %q", img)
			}
			if list[0].SelectedPhoneIndex == nil || *list[0].SelectedPhoneIndex != 1 {
				t.Error("selected phone index lost")
			}
		})
	}
}

func TestFileBackendMissingFile(t *testing.T) {
	b, err := NewFileBackend(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatal(err)
	}
	snap, err := b.Load(context.Background())
	if err != nil || len(snap.Projects) != 0 {
		t.Errorf("Load(missing) = %+v, %v", snap, err)
	}
}

func TestCodecFor(t *testing.T) {
	tests := []struct {
		path string
		want Codec
		err  bool
	}{
		{"a.json", CodecJSON, false},
		{"a.TOML", CodecTOML, false},
		{"a.yml", CodecYAML, false},
		{"a.yaml", CodecYAML, false},
		{"a.txt", "", true},
	}
	for _, tt := range tests {
		got, err := CodecFor(tt.path)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("CodecFor(%q) = %q, %v", tt.path, got, err)
		}
	}
}

func TestNewMongoBackendRequiresURI(t *testing.T) {
	if _, err := NewMongoBackend(context.Background(), MongoConfig{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("NewMongoBackend(empty) error = %v", err)
	}
}

func ids(ps []Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
