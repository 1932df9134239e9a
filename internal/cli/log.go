// Package cli implements the storeshots command-line interface.
//
// Projects live in a projects file (TOML, YAML or JSON, chosen by
// extension). Commands load the file into a project.Store, apply typed
// patches, export through the pipeline and save the file back.
//
// # Commands
//
// The main commands are:
//   - new, list, set, duplicate, delete, select: edit a projects file
//   - export, export-all: render projects to PNG or JPEG
//   - tree: print the composition of a project as JSON
//   - catalog: list layouts, devices, export sizes and gradients
//   - capture: screenshot a live page element with headless Chromium
//   - serve: run the HTTP API
//   - cache: manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Verbose
// mode also registers observability hooks that log every render,
// capture, encode and cache event.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Exported 2 files (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability hooks backed by the logger
// =============================================================================

type logExportHooks struct{ logger *log.Logger }

func (h *logExportHooks) OnRenderStart(_ context.Context, projectID, variant string) {
	h.logger.Debug("render start", "project", projectID, "variant", variant)
}

func (h *logExportHooks) OnRenderComplete(_ context.Context, projectID string, d time.Duration, err error) {
	h.logger.Debug("render done", "project", projectID, "duration", d, "err", err)
}

func (h *logExportHooks) OnCaptureComplete(_ context.Context, projectID string, w, ht int, d time.Duration, err error) {
	h.logger.Debug("capture done", "project", projectID, "width", w, "height", ht, "duration", d, "err", err)
}

func (h *logExportHooks) OnEncodeComplete(_ context.Context, projectID, format string, size int, d time.Duration, err error) {
	h.logger.Debug("encode done", "project", projectID, "format", format, "bytes", size, "duration", d, "err", err)
}

func (h *logExportHooks) OnBatchItem(_ context.Context, index int, projectID string, err error) {
	if err != nil {
		h.logger.Debug("batch item failed", "index", index, "project", projectID, "err", err)
		return
	}
	h.logger.Debug("batch item done", "index", index, "project", projectID)
}

type logCacheHooks struct{ logger *log.Logger }

func (h *logCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logCacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

type logHTTPHooks struct{ logger *log.Logger }

func (h *logHTTPHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHTTPHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}
