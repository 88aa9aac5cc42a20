package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fjglira/filecheck/internal/domain"
)

// Config is the top-level configuration struct.
type Config struct {
	Run     RunConfig     `yaml:"run"`
	Setup   SetupConfig   `yaml:"setup"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

type RunConfig struct {
	// Files are run when no path is given on the command line.
	Files []string `yaml:"files"`
	// RelativeToSpec resolves source and comparison paths against the
	// directory of the test file instead of the working directory.
	RelativeToSpec bool `yaml:"relative_to_spec"`
}

type SetupConfig struct {
	Shell           string   `yaml:"shell"`
	ShellFlag       string   `yaml:"shell_flag"`
	Timeout         string   `yaml:"timeout"` // "0s" means no limit
	BlockedPatterns []string `yaml:"blocked_patterns"`
}

type InputConfig struct {
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	Recursive *bool    `yaml:"recursive"` // pointer to distinguish unset from false
}

type OutputConfig struct {
	Verbosity    int    `yaml:"verbosity"`
	PreviewLimit int    `yaml:"preview_limit"`
	Format       string `yaml:"format"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads a YAML configuration file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError("config", path, 0, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewError("config", path, 0, "failed to parse config file", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to the defaults
// otherwise. An explicitly requested file must exist.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return DefaultConfig(), nil
		}
		return nil, domain.NewErrorWithSuggestion("config", path, 0, "config file not accessible",
			"pass an existing file with --config or omit the flag", err)
	}
	return Load(path)
}
