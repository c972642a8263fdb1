package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("should be filtered")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered at warn level, got %q", buf.String())
	}

	log.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn record should be emitted at warn level")
	}
}

func TestNewWithWriter_JSONKeys(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("assistant").WithField("action", "list_students").Info("handled")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if record["message"] != "handled" {
		t.Errorf("expected message 'handled', got %v", record["message"])
	}
	if record["level"] != "info" {
		t.Errorf("expected level 'info', got %v", record["level"])
	}
	if record["module"] != "assistant" {
		t.Errorf("expected module 'assistant', got %v", record["module"])
	}
	if record["action"] != "list_students" {
		t.Errorf("expected action 'list_students', got %v", record["action"])
	}
	if _, ok := record["timestamp"]; !ok {
		t.Error("expected timestamp key in record")
	}
}

func TestNewWithWriter_WarnLevelRename(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Warn("careful")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if record["level"] != "warning" {
		t.Errorf("expected level 'warning', got %v", record["level"])
	}
}

func TestNewWithOptions_NoTokenUsesLocalOnly(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions("info", &buf, Options{})

	log.Info("local only")
	if buf.Len() == 0 {
		t.Error("expected record written to local writer")
	}
}
