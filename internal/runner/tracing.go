package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kadirpekel/adkflow/internal/compiler/project"
	"github.com/kadirpekel/adkflow/internal/telemetry"
)

// noopTracer is used whenever tracing is disabled, so callers can always
// start a span unconditionally.
var noopTracer = noop.NewTracerProvider().Tracer("adkflow")

// tracingSession owns the exporter/provider for one run, if tracing is
// enabled, and must be shut down once the run finishes.
type tracingSession struct {
	tracer   oteltrace.Tracer
	provider *sdktrace.TracerProvider
	exporter *telemetry.Exporter
}

func (s *tracingSession) shutdown(ctx context.Context) {
	if s == nil || s.provider == nil {
		return
	}
	_ = s.provider.Shutdown(ctx)
}

// setupTracing resolves the tracing file/enabled flags per spec 6.4
// (ADKFLOW_TRACING_ENABLED / ADKFLOW_TRACE_FILE environment overrides take
// precedence over the project manifest's logging.tracing block) and, if
// enabled, opens the project-local JSONL exporter and a batching
// TracerProvider backed by it.
func setupTracing(projectPath string, proj *project.Project) (*tracingSession, error) {
	enabled := false
	file := "logs/traces.jsonl"
	clearBeforeRun := false

	if proj.Logging != nil && proj.Logging.Tracing != nil {
		enabled = proj.Logging.Tracing.Enabled
		clearBeforeRun = proj.Logging.Tracing.ClearBeforeRun
		if proj.Logging.Tracing.File != "" {
			file = proj.Logging.Tracing.File
		}
	}
	if v, ok := os.LookupEnv("ADKFLOW_TRACING_ENABLED"); ok {
		enabled = parseBoolFlag(v, enabled)
	}
	if v := os.Getenv("ADKFLOW_TRACE_FILE"); v != "" {
		file = v
	}

	if !enabled {
		return &tracingSession{tracer: noopTracer}, nil
	}

	exporter, err := telemetry.New(filepath.Join(projectPath, file), clearBeforeRun)
	if err != nil {
		return nil, err
	}
	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	return &tracingSession{
		tracer:   provider.Tracer("adkflow"),
		provider: provider,
		exporter: exporter,
	}, nil
}

func parseBoolFlag(v string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return fallback
	}
}

// endSpan records err (if any) on span before ending it, matching the
// codes.Error/codes.Ok convention spec 6.2's status field expects.
func endSpan(span oteltrace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
