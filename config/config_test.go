package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"serial": {"port": "/dev/ttyACM0"}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Serial.Port != "/dev/ttyACM0" {
		t.Errorf("expected port /dev/ttyACM0, got %q", cfg.Serial.Port)
	}
	if cfg.Measure.Repetitions != 5 {
		t.Errorf("expected default repetitions 5, got %d", cfg.Measure.Repetitions)
	}
	if cfg.Export.Path != "results.csv" {
		t.Errorf("expected default export path, got %q", cfg.Export.Path)
	}
	if cfg.Monitoring.Port != 8080 {
		t.Errorf("expected default monitoring port 8080, got %d", cfg.Monitoring.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"serial": `)
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestValidateRepetitionBounds(t *testing.T) {
	for _, reps := range []int{-1, 51} {
		cfg := Default()
		cfg.Measure.Repetitions = reps
		err := Validate(cfg)
		if err == nil || !strings.Contains(err.Error(), "measure.repetitions") {
			t.Errorf("reps=%d: expected repetitions validation error, got %v", reps, err)
		}
	}
}

func TestValidateExportDirectoryMustExist(t *testing.T) {
	cfg := Default()
	cfg.Export.Path = "/definitely/not/a/real/dir/out.csv"
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "export.path") {
		t.Errorf("expected export.path validation error, got %v", err)
	}
}

func TestValidateAccumulatesErrors(t *testing.T) {
	cfg := Default()
	cfg.Measure.Repetitions = 0
	cfg.Monitoring.Port = 99999
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "measure.repetitions") || !strings.Contains(msg, "monitoring.port") {
		t.Errorf("expected both errors reported, got %q", msg)
	}
}
