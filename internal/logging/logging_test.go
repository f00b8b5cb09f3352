package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func restoreLogger(t *testing.T) {
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetup_JSON(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	if err := Setup("info", "json", &buf); err != nil {
		t.Fatal(err)
	}
	log.Debug().Msg("hidden")
	log.Info().Int("people", 4).Msg("seated")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line above debug level, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["message"] != "seated" || entry["people"] != float64(4) || entry["caller"] == nil {
		t.Errorf("entry = %v", entry)
	}
}

func TestSetup_Console(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	if err := Setup("debug", "console", &buf); err != nil {
		t.Fatal(err)
	}
	log.Debug().Str("date", "2024-01-01").Msg("loaded snapshot")
	if out := buf.String(); !strings.Contains(out, "loaded snapshot") || strings.HasPrefix(out, "{") {
		t.Errorf("console output = %q", out)
	}
}

func TestSetup_Errors(t *testing.T) {
	restoreLogger(t)

	if err := Setup("loud", "json", nil); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := Setup("info", "xml", nil); err == nil {
		t.Error("expected error for unknown format")
	}
}
