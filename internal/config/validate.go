package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fjglira/filecheck/internal/domain"
)

// Validate checks the Config for required fields and valid values.
func Validate(cfg *Config) error {
	var errs []string

	// Setup validation
	if cfg.Setup.Shell == "" {
		errs = append(errs, "setup.shell must not be empty")
	}
	if cfg.Setup.Timeout != "" {
		d, err := time.ParseDuration(cfg.Setup.Timeout)
		if err != nil {
			errs = append(errs, fmt.Sprintf("setup.timeout is not a valid duration: %v", err))
		} else if d < 0 {
			errs = append(errs, "setup.timeout must not be negative")
		}
	}

	for _, p := range cfg.Setup.BlockedPatterns {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Sprintf("setup.blocked_patterns: %q is not a valid regular expression", p))
		}
	}

	// Input validation
	if len(cfg.Input.Include) == 0 {
		errs = append(errs, "input.include must not be empty")
	}

	// Output validation
	if cfg.Output.Verbosity < 0 || cfg.Output.Verbosity > 2 {
		errs = append(errs, fmt.Sprintf("output.verbosity must be 0, 1 or 2 (got %d)", cfg.Output.Verbosity))
	}
	if cfg.Output.PreviewLimit < 0 {
		errs = append(errs, "output.preview_limit must not be negative")
	}
	if cfg.Output.Format != "text" && cfg.Output.Format != "json" {
		errs = append(errs, fmt.Sprintf("output.format must be text or json (got %q)", cfg.Output.Format))
	}

	// Validate logging level
	if cfg.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[cfg.Logging.Level] {
			errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
		}
	}

	if len(errs) > 0 {
		return domain.NewError("config", "", 0, fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
	}

	return nil
}

// SetupTimeout returns the parsed setup timeout, zero meaning none.
func (c SetupConfig) SetupTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
