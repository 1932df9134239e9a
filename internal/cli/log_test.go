package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storeshots/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		wantLog bool
	}{
		{"debug at info level", log.InfoLevel, false},
		{"debug at debug level", log.DebugLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newLogger(&buf, tt.level).Debug("render start")
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Exported 3 of 3 projects")

	out := buf.String()
	if !strings.Contains(out, "Exported 3 of 3 projects (") || !strings.Contains(out, "s)") {
		t.Errorf("progress output = %q, want the message with its elapsed time", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext() did not return the stored logger")
	}
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("loggerFromContext() without a logger should fall back to log.Default()")
	}
}

func TestLogHooksWriteDebugRecords(t *testing.T) {
	ctx := context.Background()
	failed := stderrors.New("element gone")

	tests := []struct {
		name string
		emit func(l *log.Logger)
		want []string
	}{
		{
			name: "render start",
			emit: func(l *log.Logger) { (&logExportHooks{l}).OnRenderStart(ctx, "p1", "left") },
			want: []string{"render start", "project=p1", "variant=left"},
		},
		{
			name: "capture",
			emit: func(l *log.Logger) { (&logExportHooks{l}).OnCaptureComplete(ctx, "p1", 1080, 1920, time.Millisecond, nil) },
			want: []string{"capture done", "width=1080", "height=1920"},
		},
		{
			name: "encode",
			emit: func(l *log.Logger) { (&logExportHooks{l}).OnEncodeComplete(ctx, "p1", "png", 2048, time.Millisecond, nil) },
			want: []string{"encode done", "format=png", "bytes=2048"},
		},
		{
			name: "batch item failed",
			emit: func(l *log.Logger) { (&logExportHooks{l}).OnBatchItem(ctx, 2, "p2", failed) },
			want: []string{"batch item failed", "index=2", "project=p2", "element gone"},
		},
		{
			name: "batch item done",
			emit: func(l *log.Logger) { (&logExportHooks{l}).OnBatchItem(ctx, 3, "p3", nil) },
			want: []string{"batch item done", "index=3"},
		},
		{
			name: "cache hit",
			emit: func(l *log.Logger) { (&logCacheHooks{l}).OnCacheHit(ctx, "artifact") },
			want: []string{"cache hit", "type=artifact"},
		},
		{
			name: "cache set",
			emit: func(l *log.Logger) { (&logCacheHooks{l}).OnCacheSet(ctx, "composition", 512) },
			want: []string{"cache set", "type=composition", "bytes=512"},
		},
		{
			name: "http response",
			emit: func(l *log.Logger) {
				(&logHTTPHooks{l}).OnResponse(ctx, "GET", "/api/projects", 200, time.Millisecond)
			},
			want: []string{"response", "method=GET", "path=/api/projects", "status=200"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, log.DebugLevel))
			out := buf.String()
			if !strings.Contains(out, "DEBU") {
				t.Errorf("output %q is not a debug record", out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
		})
	}
}

func TestSetLogLevelRegistersHooks(t *testing.T) {
	t.Cleanup(observability.Reset)
	observability.Reset()

	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)
	c.SetLogLevel(log.InfoLevel)
	if _, ok := observability.Export().(*logExportHooks); ok {
		t.Fatal("info level should leave the no-op hooks in place")
	}

	c.SetLogLevel(log.DebugLevel)
	if _, ok := observability.Export().(*logExportHooks); !ok {
		t.Errorf("Export() = %T, want *logExportHooks", observability.Export())
	}
	if _, ok := observability.Cache().(*logCacheHooks); !ok {
		t.Errorf("Cache() = %T, want *logCacheHooks", observability.Cache())
	}
	if _, ok := observability.HTTP().(*logHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want *logHTTPHooks", observability.HTTP())
	}

	observability.Cache().OnCacheMiss(context.Background(), "artifact")
	if !strings.Contains(buf.String(), "cache miss") {
		t.Errorf("registered cache hook wrote %q, want a cache miss record", buf.String())
	}
}
