package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/ordinex/ordinex/internal/errors"
)

func newBufferLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{
		Level:       level,
		Format:      FormatJSON,
		Output:      NewOutput(&buf),
		ServiceName: "ordinex-test",
	}), &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v\n%s", err, buf.String())
	}
	return entry
}

func TestLevelsFilter(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn)

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info entry written at warn level: %s", buf.String())
	}

	logger.Warn("shown", "k", "v")
	entry := decode(t, buf)
	if entry["msg"] != "shown" || entry["k"] != "v" {
		t.Errorf("entry = %v", entry)
	}
	if entry["service"] != "ordinex-test" {
		t.Errorf("service = %v, want ordinex-test", entry["service"])
	}
}

func TestWithErrorCoded(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug)

	err := errors.NewEmptyPlanError("plan-9")
	logger.WithError(err).Error("breakdown failed")

	entry := decode(t, buf)
	if entry["error_code"] != "MISSION-001" {
		t.Errorf("error_code = %v, want MISSION-001", entry["error_code"])
	}
	if _, ok := entry["suggestions"]; !ok {
		t.Error("suggestions missing from entry")
	}
}

func TestWithErrorWrappedAndPlain(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug)

	wrapped := fmt.Errorf("handler: %w", errors.NewBreakdownNotFoundError("bd-1"))
	logger.WithError(wrapped).Info("lookup")
	if entry := decode(t, buf); entry["error_code"] != "MISSION-003" {
		t.Errorf("error_code = %v, want MISSION-003", entry["error_code"])
	}

	buf.Reset()
	logger.WithError(fmt.Errorf("boom")).Info("plain")
	entry := decode(t, buf)
	if entry["error"] != "boom" {
		t.Errorf("error = %v, want boom", entry["error"])
	}
	if _, ok := entry["error_code"]; ok {
		t.Error("plain errors should not carry error_code")
	}

	if logger.WithError(nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestWithContext(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
	ctx = ContextWithRequestID(ctx, "req-1")

	logger.WithContext(ctx).InfoContext(ctx, "handled")
	entry := decode(t, buf)

	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
	if entry["trace_id"] != traceID.String() || entry["span_id"] != spanID.String() {
		t.Errorf("trace ids = %v/%v", entry["trace_id"], entry["span_id"])
	}

	if logger.WithContext(context.Background()) != logger {
		t.Error("WithContext without values should return the same logger")
	}
}

func TestLogErrorContext(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo)

	ctx := ContextWithRequestID(context.Background(), "req-2")
	logger.LogErrorContext(ctx, errors.NewPlanTooLargeError(60, 48))

	entry := decode(t, buf)
	if entry["level"] != "ERROR" || entry["msg"] != "operation failed" {
		t.Errorf("entry = %v", entry)
	}
	if entry["error_code"] != "PLAN-003" || entry["request_id"] != "req-2" {
		t.Errorf("entry = %v", entry)
	}
	if !strings.Contains(entry["error_message"].(string), "60 steps") {
		t.Errorf("error_message = %v", entry["error_message"])
	}

	buf.Reset()
	logger.LogError(nil)
	if buf.Len() != 0 {
		t.Errorf("LogError(nil) wrote %s", buf.String())
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: NewOutput(&buf)})
	logger.Info("hello", "plan_id", "p1")

	if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "plan_id=p1") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestParse(t *testing.T) {
	levels := map[string]Level{"": LevelInfo, "DEBUG": LevelDebug, "warning": LevelWarn, "error": LevelError}
	for in, want := range levels {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) error = nil")
	}

	if f, err := ParseFormat("Text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(Text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) error = nil")
	}
}

func TestConfigFromStrings(t *testing.T) {
	cfg, err := ConfigFromStrings("debug", "text")
	if err != nil {
		t.Fatalf("ConfigFromStrings() error = %v", err)
	}
	if cfg.Level != LevelDebug || cfg.Format != FormatText || !cfg.AddSource {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := ConfigFromStrings("info", "yaml"); err == nil {
		t.Error("ConfigFromStrings with bad format: error = nil")
	}
}

func TestGlobal(t *testing.T) {
	original := globalLogger
	defer SetGlobal(original)

	SetGlobal(nil)
	if Global() == nil {
		t.Fatal("Global() returned nil")
	}

	custom, _ := newBufferLogger(LevelError)
	SetGlobal(custom)
	if Global() != custom {
		t.Error("Global() did not return the logger passed to SetGlobal")
	}
}
