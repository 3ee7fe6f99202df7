package telemetry

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestExporterWritesOneJSONLinePerSpan(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "traces.jsonl")

	exporter, err := New(path, false)
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	tracer := tp.Tracer("adkflow-test")
	_, span := tracer.Start(context.Background(), "agent_run")
	span.End()
	_, span = tracer.Start(context.Background(), "tool_call")
	span.End()

	require.NoError(t, tp.ForceFlush(context.Background()))

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"name":"agent_run"`)
	require.Contains(t, lines[1], `"name":"tool_call"`)
}

func TestExporterRotatesAboveSizeCeiling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traces.jsonl")

	exporter, err := New(path, false, WithMaxBytes(1))
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	tracer := tp.Tracer("adkflow-test")

	for i := 0; i < 3; i++ {
		_, span := tracer.Start(context.Background(), "span")
		span.End()
	}
	require.NoError(t, tp.ForceFlush(context.Background()))

	_, err = os.Stat(rotatedPath(path, 1))
	require.NoError(t, err, "expected a rotated .1 file once the ceiling was crossed")
}

func TestExporterClearBeforeRunRemovesPriorFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traces.jsonl")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))
	require.NoError(t, os.WriteFile(rotatedPath(path, 1), []byte("stale\n"), 0o644))

	exporter, err := New(path, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = exporter.Shutdown(context.Background()) })

	_, err = os.Stat(rotatedPath(path, 1))
	require.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, data)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	require.NoError(t, scanner.Err())
	return lines
}
