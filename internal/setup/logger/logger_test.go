package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := New(tt.level, &bytes.Buffer{}, false).GetLevel(); got != tt.want {
			t.Errorf("New(%q): expected level %s, got %s", tt.level, tt.want, got)
		}
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", &buf, false)

	log.Debug().Msg("hidden")
	log.Info().Str("request_id", "r1").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 record, got %d: %s", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if record["request_id"] != "r1" || record["message"] != "visible" {
		t.Errorf("Unexpected record: %v", record)
	}
	if _, ok := record["caller"]; !ok {
		t.Error("Expected caller field")
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", &buf, true)
	log.Info().Msg("hello")

	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("Expected console output, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("Expected message in output, got %s", buf.String())
	}
}
