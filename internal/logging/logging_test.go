package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNew_JSONAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json", slog.LevelInfo)

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "hello", "k", "v")
	span.End()

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "hello" || rec["k"] != "v" {
		t.Errorf("unexpected record: %v", rec)
	}
	if rec["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("trace_id: got %v", rec["trace_id"])
	}
	if rec["span_id"] == nil {
		t.Error("expected span_id")
	}
}

func TestNew_TextWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "text", slog.LevelWarn)

	log.Info("dropped")
	log.With("component", "db").Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info record should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "kept") || !strings.Contains(out, "component=db") {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, "trace_id") {
		t.Errorf("no span, no trace_id expected: %s", out)
	}
}
