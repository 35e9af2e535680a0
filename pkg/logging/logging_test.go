package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo, JSON))
	logger.Debug("hidden")
	logger.Info("Balances computed", "group_id", "g1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "Balances computed" || entry["group_id"] != "g1" {
		t.Errorf("unexpected entry %v", entry)
	}

	buf.Reset()
	slog.New(NewHandler(&buf, slog.LevelInfo, Console)).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("unexpected console output %q", buf.String())
	}
}

func TestConfigureRejectsBadInput(t *testing.T) {
	if err := Configure("loud", Console); err == nil {
		t.Error("expected error for bad level")
	}
	if err := Configure("info", "xml"); err == nil {
		t.Error("expected error for bad format")
	}
}
