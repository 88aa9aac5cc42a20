package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fjglira/filecheck/internal/pipeline"
)

type catalog struct {
	Methods       []string `json:"test_methods"`
	Preprocessors []string `json:"preprocessors"`
	Verifiers     []string `json:"verifiers"`
	Stages        []string `json:"stages"`
	Predicates    []string `json:"predicates"`
	Extensions    []string `json:"extensions"`
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available test methods, preprocessors, verifiers and stages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			c := catalog{
				Methods:       a.builder.Methods(),
				Preprocessors: a.registry.PreprocessorNames(),
				Verifiers:     a.registry.VerifierNames(),
				Stages:        pipeline.StageNames(),
				Predicates:    pipeline.PredicateNames(),
				Extensions:    a.decoders.Extensions(),
			}

			out := cmd.OutOrStdout()
			if a.cfg.Output.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(c)
			}
			sections := []struct {
				title string
				names []string
			}{
				{"Test methods", c.Methods},
				{"Preprocessors", c.Preprocessors},
				{"Verifiers", c.Verifiers},
				{"Stages", c.Stages},
				{"Predicates", c.Predicates},
				{"Test file extensions", c.Extensions},
			}
			for _, sec := range sections {
				fmt.Fprintf(out, "%s:\n  %s\n", sec.title, strings.Join(sec.names, "\n  "))
			}
			return nil
		},
	}
}
