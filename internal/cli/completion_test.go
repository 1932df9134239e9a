package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

// complete runs cobra's hidden completion command and returns the
// candidate lines, without the trailing directive.
func (e *testEnv) complete(t *testing.T, args ...string) []string {
	t.Helper()
	root := e.cli.RootCommand()
	var out bytes.Buffer
	// Global flags go after the subcommand so the last arg stays the word
	// being completed.
	full := []string{"__complete", args[0], "--config=" + e.config, "--projects=" + e.projects}
	root.SetArgs(append(full, args[1:]...))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("complete %v: %v", args, err)
	}
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if l != "" && !strings.HasPrefix(l, ":") {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestCompleteFlags(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"layout", []string{"set", "--layout", "spl"}, "split-pair"},
		{"device", []string{"new", "--device", "pix"}, "pixel-8\tPixel 8"},
		{"size", []string{"export", "--size", ""}, "\t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := env.complete(t, tt.args...)
			if len(got) == 0 {
				t.Fatalf("complete(%v) = none, want %q", tt.args, tt.want)
			}
			for _, g := range got {
				if !strings.HasPrefix(g, tt.args[len(tt.args)-1]) {
					t.Errorf("complete(%v) = %q, want prefix %q", tt.args, g, tt.args[len(tt.args)-1])
				}
			}
			found := false
			for _, g := range got {
				found = found || strings.Contains(g, tt.want)
			}
			if !found {
				t.Errorf("complete(%v) = %q, want an entry containing %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestCompleteProjectIDs(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "new", "--title", "Alpha")
	env.mustRun(t, "new", "--title", "Beta")
	snap := env.snapshot(t)

	got := env.complete(t, "select", "")
	if len(got) != 2 {
		t.Fatalf("complete(select) = %q, want 2 ids", got)
	}
	for i, p := range snap.Projects {
		if want := p.ID + "\t" + p.Title; got[i] != want {
			t.Errorf("complete(select)[%d] = %q, want %q", i, got[i], want)
		}
	}

	if got := env.complete(t, "delete", snap.Projects[0].ID, ""); len(got) != 0 {
		t.Errorf("complete(delete id) = %q, want none after the id", got)
	}
	if got := env.complete(t, "export-all", snap.Projects[0].ID, ""); len(got) != 2 {
		t.Errorf("complete(export-all id) = %q, want both ids", got)
	}
	if got := env.complete(t, "list", ""); len(got) != 0 {
		t.Errorf("complete(list) = %q, want no project ids", got)
	}
}
