package config

// DefaultConfigFile is looked up in the working directory.
const DefaultConfigFile = "filecheck.yaml"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	recursive := true
	return &Config{
		Setup: SetupConfig{
			Shell:     "/bin/sh",
			ShellFlag: "-c",
			Timeout:   "0s",
			BlockedPatterns: []string{
				`\brm\s+-(?:rf|fr)\s+/\*?(?:[\s;&|)]|$)`,
				`\bmkfs\b`,
				`\bdd\s+if=`,
				`(?i)\bformat\s+c:`,
				`>\s*/dev/sd[a-z]`,
			},
		},
		Input: InputConfig{
			Include:   []string{"*.toml", "*.yaml", "*.yml"},
			Exclude:   []string{"vendor/**", "node_modules/**", ".git/**"},
			Recursive: &recursive,
		},
		Output: OutputConfig{
			Verbosity:    0,
			PreviewLimit: 5,
			Format:       "text",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "filecheck.log",
		},
	}
}
