package fonts

import (
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestBucket(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{100, WeightRegular},
		{400, WeightRegular},
		{500, WeightMedium},
		{600, WeightBold},
		{900, WeightBold},
	}
	for _, tt := range tests {
		if got := Bucket(tt.in); got != tt.want {
			t.Errorf("Bucket(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestResolveAliases(t *testing.T) {
	bold := Resolve(Spec{Family: FamilySans, Weight: 700})
	if got := Resolve(Spec{Family: "Inter", Weight: 600}); got != bold {
		t.Error("Inter 600 should resolve to the embedded bold sans")
	}
	if got := Resolve(Spec{Family: `"Unknown Face", Roboto`, Weight: 700}); got != bold {
		t.Error("fallback list should resolve through aliases")
	}
	if got := Resolve(Spec{Family: "Nope"}); got == nil {
		t.Error("unknown family must fall back to a face")
	}
	if Resolve(Spec{Family: "monospace"}) == Resolve(Spec{Family: "Inter"}) {
		t.Error("monospace should not resolve to the sans face")
	}
}

func TestRegister(t *testing.T) {
	if err := Register("Brand", 400, goregular.TTF); err != nil {
		t.Fatal(err)
	}
	if Resolve(Spec{Family: "brand"}) == nil {
		t.Error("registered family not found")
	}
	if err := Register("Broken", 400, []byte("nope")); err == nil {
		t.Error("Register() accepted invalid data")
	}
}

func TestMeasure(t *testing.T) {
	m := NewMeasurer()
	spec := Spec{Family: "Inter", Weight: 400, Size: 20}

	short := m.Width("Hi", spec)
	long := m.Width("Hello there", spec)
	if short <= 0 || long <= short {
		t.Errorf("Width() short=%v long=%v", short, long)
	}
	bigger := m.Width("Hi", Spec{Family: "Inter", Size: 40})
	if bigger < short*1.9 || bigger > short*2.1 {
		t.Errorf("Width() should scale with size: %v vs %v", short, bigger)
	}

	asc, desc := m.Metrics(spec)
	if asc <= 0 || desc <= 0 || asc+desc > 2*spec.Size {
		t.Errorf("Metrics() = %v, %v", asc, desc)
	}
}

func TestWrap(t *testing.T) {
	m := NewMeasurer()
	spec := Spec{Size: 16}
	text := "the quick brown fox jumps over the lazy dog"

	width := m.Width("the quick brown", spec)
	lines := Wrap(m, text, spec, width)
	if len(lines) < 3 {
		t.Fatalf("Wrap() = %q, want several lines", lines)
	}
	for _, l := range lines {
		if m.Width(l, spec) > width {
			t.Errorf("line %q wider than %v", l, width)
		}
	}
	if got := strings.Join(lines, " "); got != text {
		t.Errorf("Wrap() lost words: %q", got)
	}

	if got := Wrap(m, text, spec, 0); len(got) != 1 {
		t.Errorf("Wrap(width 0) = %q, want one line", got)
	}
	if got := Wrap(m, "a\nb", spec, 1000); len(got) != 2 {
		t.Errorf("Wrap() dropped an explicit newline: %q", got)
	}

	narrow := Wrap(m, "supercalifragilistic", spec, m.Width("super", spec))
	if len(narrow) < 2 || strings.Join(narrow, "") != "supercalifragilistic" {
		t.Errorf("long word split = %q", narrow)
	}
}
