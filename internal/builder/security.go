package builder

import (
	"fmt"
	"regexp"
)

// CompilePatterns compiles the setup.blocked_patterns regular expressions.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid blocked pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// ValidateCommand checks if a setup command matches any blocked pattern.
func ValidateCommand(command string, blocked []*regexp.Regexp) error {
	for _, re := range blocked {
		if loc := re.FindStringIndex(command); loc != nil {
			return fmt.Errorf("setup command blocked by security policy: %q matches %q; if this is intentional, remove it from setup.blocked_patterns in filecheck.yaml",
				command[loc[0]:loc[1]], re.String())
		}
	}
	return nil
}
