package project

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/storeshots/pkg/errors"
)

func TestChangesFromJSON(t *testing.T) {
	doc := `{
		"title": "Ship faster",
		"layout_id": "split-pair",
		"background": {"type": "solid", "color": "#101010"},
		"show_stats": false,
		"feature_pills": [],
		"paired_tuning": {"rotation": -4},
		"phone_configs": {"1": {"device_frame_id": "pixel-8"}},
		"selected_phone": 1
	}`
	var c Changes
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if c.IsEmpty() {
		t.Fatal("IsEmpty() = true")
	}

	p, err := Apply(New(), c.Patches()...)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if p.Title != "Ship faster" || p.LayoutID != "split-pair" {
		t.Errorf("title/layout = %q/%q", p.Title, p.LayoutID)
	}
	if p.Background.Type != BackgroundSolid || p.Background.Color != "#101010" {
		t.Errorf("background = %+v", p.Background)
	}
	if p.ShowStats {
		t.Error("ShowStats = true, want false")
	}
	if p.FeaturePills == nil || len(p.FeaturePills) != 0 {
		t.Errorf("FeaturePills = %v, want empty list", p.FeaturePills)
	}
	if p.PhoneRotation == nil || *p.PhoneRotation != -4 || p.PhoneScale != nil {
		t.Errorf("paired tuning = %v/%v", p.PhoneRotation, p.PhoneScale)
	}
	if p.PhoneDevice(1) != "pixel-8" || p.PhoneDevice(0) != p.DeviceFrameID {
		t.Errorf("phone devices = %q/%q", p.PhoneDevice(0), p.PhoneDevice(1))
	}
	if p.SelectedPhoneIndex == nil || *p.SelectedPhoneIndex != 1 {
		t.Errorf("SelectedPhoneIndex = %v", p.SelectedPhoneIndex)
	}
	// Untouched fields keep their values.
	if p.Subtitle != DefaultSubtitle {
		t.Errorf("Subtitle = %q, want default", p.Subtitle)
	}
}

func TestChangesRejected(t *testing.T) {
	empty := ""
	unknown := "no-such-preset"
	tests := []struct {
		name string
		c    Changes
		code errors.Code
	}{
		{"empty layout", Changes{LayoutID: &empty}, errors.ErrCodeInvalidInput},
		{"empty gradient", Changes{Background: &Background{Type: BackgroundGradient}}, errors.ErrCodeInvalidInput},
		{"unknown preset", Changes{GradientPreset: &unknown}, errors.ErrCodeCatalogLookupFailed},
		{"phone index", Changes{PhoneConfigs: map[int]PhoneConfig{2: {}}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := New()
			got, err := Apply(orig, tt.c.Patches()...)
			if !errors.Is(err, tt.code) {
				t.Errorf("Apply() error = %v, want %s", err, tt.code)
			}
			if got.LayoutID != orig.LayoutID {
				t.Error("rejected changes leaked into the result")
			}
		})
	}
}

func TestChangesEmpty(t *testing.T) {
	if !(Changes{}).IsEmpty() {
		t.Error("Changes{}.IsEmpty() = false")
	}
}

func TestChangesCheckCatalog(t *testing.T) {
	str := func(s string) *string { return &s }
	tests := []struct {
		name    string
		changes Changes
		wantErr bool
	}{
		{"nothing", Changes{}, false},
		{"known ids", Changes{LayoutID: str("classic"), DeviceFrameID: str("pixel-8")}, false},
		{"empty layout left to the patch", Changes{LayoutID: str("")}, false},
		{"unknown layout", Changes{LayoutID: str("nope")}, true},
		{"unknown device", Changes{DeviceFrameID: str("nokia-3310")}, true},
		{"unknown phone device", Changes{PhoneConfigs: map[int]PhoneConfig{1: {DeviceFrameID: "nokia-3310"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.changes.CheckCatalog()
			if tt.wantErr && !errors.Is(err, errors.ErrCodeCatalogLookupFailed) {
				t.Errorf("CheckCatalog() = %v, want CATALOG_LOOKUP_FAILED", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("CheckCatalog() = %v, want nil", err)
			}
		})
	}
}

func TestChangesImageSources(t *testing.T) {
	shared, second := "shot.png", "data:image/png;base64,AA=="
	c := Changes{
		Image: &shared,
		PhoneConfigs: map[int]PhoneConfig{
			1: {Image: &second},
			0: {DeviceFrameID: "pixel-8"},
		},
	}
	got := c.ImageSources()
	if len(got) != 2 || got[0] != shared || got[1] != second {
		t.Errorf("ImageSources() = %q, want [%q %q]", got, shared, second)
	}
	if got := (Changes{}).ImageSources(); len(got) != 0 {
		t.Errorf("Changes{}.ImageSources() = %q, want none", got)
	}
}
