package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestCriticalLevelRendered(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "json")

	log.Critical("db down")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["level"] != "CRITICAL" {
		t.Fatalf("expected CRITICAL level, got %v", record["level"])
	}
}

func TestBusinessErrorSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "text")

	log.BusinessError("nothing", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}

	log.BusinessError("members.enroll: already active", errors.New("already active"), "member_id", 7)
	if !bytes.Contains(buf.Bytes(), []byte("level=WARN")) {
		t.Fatalf("expected warn record, got %q", buf.String())
	}
}

func TestWithContextAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "json")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	log.WithContext(ctx).Info("access: evaluated")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["trace_id"] != traceID.String() {
		t.Fatalf("expected trace id, got %v", record["trace_id"])
	}
}

func TestParseLevelDevelopmentDefaultsToDebug(t *testing.T) {
	if got := parseLevel("", "development"); got != slog.LevelDebug {
		t.Fatalf("expected debug, got %v", got)
	}
	if got := parseLevel("fatal", "production"); got != LevelCritical {
		t.Fatalf("expected critical, got %v", got)
	}
}

func TestWithContextAddsStoredFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "json")

	ctx := ContextWith(context.Background(), "request_id", "req-1")
	ctx = ContextWith(ctx, "actor_id", 42)
	log.WithContext(ctx).Info("members.enroll: done")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["request_id"] != "req-1" {
		t.Fatalf("expected request id, got %v", record["request_id"])
	}
	if record["actor_id"] != float64(42) {
		t.Fatalf("expected actor id, got %v", record["actor_id"])
	}
}

func TestContextWithDoesNotLeakIntoParent(t *testing.T) {
	parent := ContextWith(context.Background(), "request_id", "req-1")
	_ = ContextWith(parent, "actor_id", 1)

	if got := contextFields(parent); len(got) != 2 {
		t.Fatalf("expected parent fields untouched, got %v", got)
	}
}
