package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fjglira/filecheck/internal/runner"
	"github.com/fjglira/filecheck/internal/spec"
)

type validation struct {
	Name    string `json:"name"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [test files or directories...]",
		Short: "Check configuration and test files without running them",
		Long: `Loads the configuration, then decodes and builds every test file. Each
malformed declaration is reported; nothing is executed. Exits 1 when any
declaration is invalid.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			files, err := a.testFiles(args)
			if err != nil {
				return err
			}

			r := a.newRunner(runner.NopObserver{})
			var checks []validation
			invalid := 0
			for _, file := range files {
				for _, s := range r.Load(file) {
					v := validation{Name: spec.DisplayName(s), Valid: true}
					if es, ok := s.(spec.ErrorSpec); ok {
						v.Valid, v.Message = false, es.Message
						invalid++
					}
					checks = append(checks, v)
				}
			}

			out := cmd.OutOrStdout()
			if a.cfg.Output.Format == "json" {
				if checks == nil {
					checks = []validation{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(checks); err != nil {
					return WrapExitError(ExitCommandError, "failed to write output", err)
				}
			} else {
				for _, v := range checks {
					if v.Valid {
						fmt.Fprintf(out, "OK      %s\n", v.Name)
					} else {
						fmt.Fprintf(out, "INVALID %s\n%s\n", v.Name, indentBlock(v.Message))
					}
				}
				fmt.Fprintf(out, "%d specification(s), %d invalid\n", len(checks), invalid)
			}

			if invalid > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d invalid specification(s)", invalid))
			}
			return nil
		},
	}
}

func indentBlock(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}
