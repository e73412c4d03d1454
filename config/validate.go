package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationError contains details about configuration validation failures
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// MaxRepetitions mirrors the per-batch bound the front-ends enforce.
const MaxRepetitions = 50

// Validate checks the configuration for errors
func Validate(cfg *Config) error {
	var errors ValidationErrors

	if cfg.Measure.Repetitions < 1 || cfg.Measure.Repetitions > MaxRepetitions {
		errors = append(errors, ValidationError{
			Field:   "measure.repetitions",
			Message: fmt.Sprintf("must be between 1 and %d", MaxRepetitions),
		})
	}

	if cfg.Measure.IntervalSec < 0 {
		errors = append(errors, ValidationError{
			Field:   "measure.interval_sec",
			Message: "must not be negative",
		})
	}

	if cfg.Export.Path == "" {
		errors = append(errors, ValidationError{
			Field:   "export.path",
			Message: "export path is required",
		})
	} else if dir := filepath.Dir(cfg.Export.Path); dir != "." {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			errors = append(errors, ValidationError{
				Field:   "export.path",
				Message: fmt.Sprintf("directory does not exist: %s", dir),
			})
		}
	}

	if cfg.Logging.BasePath != "" {
		if info, err := os.Stat(cfg.Logging.BasePath); err != nil || !info.IsDir() {
			errors = append(errors, ValidationError{
				Field:   "logging.base_path",
				Message: fmt.Sprintf("directory does not exist: %s", cfg.Logging.BasePath),
			})
		}
	}

	if cfg.Monitoring.Port < 1 || cfg.Monitoring.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "monitoring.port",
			Message: "must be between 1 and 65535",
		})
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}
