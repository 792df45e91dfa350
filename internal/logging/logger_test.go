package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")

	logger, err := New(Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("task created", String(FieldTaskID, "t-1"), String(FieldSKU, "ELEC-WIDGET"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"task_id":"t-1"`) {
		t.Fatalf("expected task_id field in output, got: %s", data)
	}
	if !strings.Contains(string(data), `"sku":"ELEC-WIDGET"`) {
		t.Fatalf("expected sku field in output, got: %s", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("chatty"); got.String() != "INFO" {
		t.Fatalf("unexpected level: %v", got)
	}
}

func TestErrorAttrToleratesNil(t *testing.T) {
	attr := Error(nil)
	if attr.Value.String() != "<nil>" {
		t.Fatalf("unexpected value: %v", attr.Value)
	}
}
