package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func boolPtr(v bool) *bool { return &v }

func TestNewConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Verbose: true, Writer: &buf, Color: boolPtr(false)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("starting cleanup", "batch_size", 50)
	Success(context.Background(), logger, "entry removed")
	logger.Error("remove control not found", "error", errors.New("control not found"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered at info level:\n%s", out)
	}
	for _, want := range []string{"INFO", "starting cleanup batch_size=50", "SUCCESS", "entry removed", "ERROR", `error="control not found"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour disabled but output contains escape codes:\n%s", out)
	}
}

// Quiet mode still prints errors so a failed run is never silent, unlike a
// debug switch that mutes every tag.
func TestNewQuietKeepsErrorsOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Verbose: false, Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("info line")
	Success(context.Background(), logger, "success line")
	logger.Error("fatal error")

	out := buf.String()
	if strings.Contains(out, "info line") || strings.Contains(out, "success line") {
		t.Errorf("quiet logger printed non-error lines:\n%s", out)
	}
	if !strings.Contains(out, "fatal error") {
		t.Errorf("quiet logger dropped error line:\n%s", out)
	}
}

func TestConsoleComponentPrefixAndColor(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Verbose: true, Writer: &buf, Color: boolPtr(true)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	Success(context.Background(), logger.With("component", "driver"), "cleanup complete")

	out := buf.String()
	if !strings.Contains(out, "driver: cleanup complete") {
		t.Errorf("component prefix missing:\n%s", out)
	}
	if !strings.Contains(out, ansiGreen) {
		t.Errorf("success line should be green:\n%q", out)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json", Verbose: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	Success(context.Background(), logger, "entry removed", "deleted", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["level"] != "success" {
		t.Errorf("level = %v, want success", record["level"])
	}
	if record["msg"] != "entry removed" {
		t.Errorf("msg = %v, want entry removed", record["msg"])
	}
	if _, ok := record["ts"]; !ok {
		t.Errorf("record missing ts: %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("New() accepted unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"success", LevelSuccess, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNeedsQuotes(t *testing.T) {
	if !needsQuotes("") || !needsQuotes("a b") || !needsQuotes(`x"y`) {
		t.Error("needsQuotes should quote empty, spaced and quoted values")
	}
	if needsQuotes("plain") {
		t.Error("needsQuotes(plain) = true")
	}
}

func TestConsoleAddSource(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Verbose: true, Writer: &buf, Color: boolPtr(false), AddSource: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("with source")

	if out := buf.String(); !strings.Contains(out, "[logger_test.go:") {
		t.Errorf("console line missing source location:\n%s", out)
	}
}
