// Package telemetry implements the project-local JSONL span exporter (spec
// 6.2): one JSON object per line, rotated by size ceiling to <file>.1..5.
// Grounded on the teacher's pkg/observability.DebugExporter, which
// implements the same sdktrace.SpanExporter interface but captures spans
// in memory for UI inspection; this exporter instead appends each record to
// a project's logs/traces.jsonl file as the run progresses.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// defaultMaxBytes is the size ceiling above which the exporter rotates the
// file (spec 6.2's "configurable size ceiling").
const defaultMaxBytes = 10 * 1024 * 1024

const maxRotations = 5

// SpanRecord is one line of the JSONL export (spec 6.2's exact field list).
type SpanRecord struct {
	TraceID      string            `json:"trace_id"`
	SpanID       string            `json:"span_id"`
	ParentSpanID *string           `json:"parent_span_id"`
	Name         string            `json:"name"`
	StartTime    string            `json:"start_time"`
	EndTime      string            `json:"end_time"`
	DurationMS   float64           `json:"duration_ms"`
	Status       string            `json:"status"`
	Attributes   map[string]string `json:"attributes"`
}

// Exporter appends span records to a JSONL file, rotating it once it
// crosses maxBytes. Safe for concurrent ExportSpans calls.
type Exporter struct {
	mu          sync.Mutex
	path        string
	maxBytes    int64
	file        *os.File
	writtenSize int64
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithMaxBytes overrides the default rotation size ceiling.
func WithMaxBytes(n int64) Option {
	return func(e *Exporter) { e.maxBytes = n }
}

// New opens (creating parent directories as needed) the JSONL file at path
// for appending. If clearBeforeRun is true, any existing file and its
// rotated siblings are removed first (manifest.json's
// logging.tracing.clear_before_run, spec 6.1).
func New(path string, clearBeforeRun bool, opts ...Option) (*Exporter, error) {
	e := &Exporter{path: path, maxBytes: defaultMaxBytes}
	for _, opt := range opts {
		opt(e)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: creating log directory: %w", err)
	}

	if clearBeforeRun {
		_ = os.Remove(path)
		for i := 1; i <= maxRotations; i++ {
			_ = os.Remove(rotatedPath(path, i))
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("telemetry: stat %s: %w", path, err)
	}

	e.file = f
	e.writtenSize = info.Size()
	return e, nil
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *Exporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, span := range spans {
		rec := convert(span)
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("telemetry: marshaling span %s: %w", rec.SpanID, err)
		}
		line = append(line, '\n')

		if e.writtenSize > 0 && e.writtenSize+int64(len(line)) > e.maxBytes {
			if err := e.rotateLocked(); err != nil {
				return err
			}
		}

		n, err := e.file.Write(line)
		if err != nil {
			return fmt.Errorf("telemetry: writing span %s: %w", rec.SpanID, err)
		}
		e.writtenSize += int64(n)
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil
	}
	err := e.file.Close()
	e.file = nil
	return err
}

func (e *Exporter) rotateLocked() error {
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: closing before rotation: %w", err)
	}

	_ = os.Remove(rotatedPath(e.path, maxRotations))
	for i := maxRotations - 1; i >= 1; i-- {
		_ = os.Rename(rotatedPath(e.path, i), rotatedPath(e.path, i+1))
	}
	if err := os.Rename(e.path, rotatedPath(e.path, 1)); err != nil {
		return fmt.Errorf("telemetry: rotating %s: %w", e.path, err)
	}

	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("telemetry: reopening %s after rotation: %w", e.path, err)
	}
	e.file = f
	e.writtenSize = 0
	return nil
}

func rotatedPath(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}

func convert(span sdktrace.ReadOnlySpan) SpanRecord {
	attrs := make(map[string]string, len(span.Attributes()))
	for _, attr := range span.Attributes() {
		attrs[string(attr.Key)] = attr.Value.AsString()
	}

	rec := SpanRecord{
		TraceID:    span.SpanContext().TraceID().String(),
		SpanID:     span.SpanContext().SpanID().String(),
		Name:       span.Name(),
		StartTime:  span.StartTime().UTC().Format(time.RFC3339Nano),
		EndTime:    span.EndTime().UTC().Format(time.RFC3339Nano),
		DurationMS: float64(span.EndTime().Sub(span.StartTime())) / float64(time.Millisecond),
		Status:     span.Status().Code.String(),
		Attributes: attrs,
	}
	if span.Parent().HasSpanID() {
		id := span.Parent().SpanID().String()
		rec.ParentSpanID = &id
	}
	return rec
}

var _ sdktrace.SpanExporter = (*Exporter)(nil)
