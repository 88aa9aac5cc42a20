package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"

	"github.com/fjglira/filecheck/internal/cli"
)

var (
	specsDir = filepath.Join("..", "..", "testdata", "specs")
	numbers  = filepath.Join(specsDir, "numbers.toml")
	repeated = filepath.Join(specsDir, "repeated.yaml")
	broken   = filepath.Join(specsDir, "broken.toml")
)

func writeConfig(content string) string {
	path := filepath.Join(GinkgoT().TempDir(), "filecheck.yaml")
	Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
	return path
}

const relativeConfig = `run:
  relative_to_spec: true
logging:
  file: ""
`

// execute runs the command tree with args and returns its output and exit code.
func execute(ctx context.Context, out io.Writer, args ...string) int {
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	return cli.GetExitCode(cmd.ExecuteContext(ctx))
}

var _ = Describe("CLI", func() {
	var (
		out    *bytes.Buffer
		config string
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		config = writeConfig(relativeConfig)
	})

	Describe("run", func() {
		It("should exit 0 when every specification passes", func() {
			code := execute(context.Background(), out, "run", "--config", config, numbers, repeated)
			Expect(code).To(Equal(cli.ExitSuccess))
			Expect(out.String()).To(ContainSubstring("PASS " + numbers + "#file_comparison\n"))
			Expect(out.String()).To(ContainSubstring("PASS " + repeated + "#file_comparison.2\n"))
			Expect(out.String()).To(HaveSuffix("PASS 3 passed, 0 failed, 3 total\n"))
		})

		It("should run when no subcommand is given", func() {
			code := execute(context.Background(), out, "--config", config, numbers)
			Expect(code).To(Equal(cli.ExitSuccess))
			Expect(out.String()).To(ContainSubstring("1 passed"))
		})

		It("should exit 1 when a specification fails", func() {
			cmd := cli.NewRootCommand()
			cmd.SetArgs([]string{"run", "--config", config, specsDir})
			cmd.SetOut(out)
			err := cmd.Execute()
			Expect(cli.GetExitCode(err)).To(Equal(cli.ExitFailure))
			Expect(err).To(MatchError("1 of 4 specification(s) failed"))
			Expect(out.String()).To(ContainSubstring("FAIL " + broken + "\n"))
		})

		It("should print the error preview with -v 1", func() {
			code := execute(context.Background(), out, "--config", config, "-v", "1", broken)
			Expect(code).To(Equal(cli.ExitFailure))
			Expect(out.String()).To(ContainSubstring("== " + broken))
			Expect(out.String()).To(ContainSubstring("invalid TOML"))
		})

		It("should write a JSON report", func() {
			code := execute(context.Background(), out, "--config", config, "--format", "json", numbers)
			Expect(code).To(Equal(cli.ExitSuccess))
			var doc map[string]any
			Expect(json.Unmarshal(out.Bytes(), &doc)).To(Succeed())
			Expect(doc["summary"]).To(HaveKeyWithValue("passed", 1.0))
		})

		It("should use run.files when no argument is given", func() {
			cfg := writeConfig(fmt.Sprintf("run:\n  relative_to_spec: true\n  files: [%q]\nlogging:\n  file: \"\"\n", numbers))
			code := execute(context.Background(), out, "--config", cfg)
			Expect(code).To(Equal(cli.ExitSuccess))
		})

		It("should write the log file", func() {
			logFile := filepath.Join(GinkgoT().TempDir(), "run.log")
			code := execute(context.Background(), out, "--config", config, "--log-file", logFile, "--log-level", "debug", numbers)
			Expect(code).To(Equal(cli.ExitSuccess))
			data, err := os.ReadFile(logFile)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("run_id="))
			Expect(string(data)).To(ContainSubstring("Run complete"))
		})

		DescribeTable("command errors exit 2",
			func(args ...string) {
				Expect(execute(context.Background(), out, args...)).To(Equal(cli.ExitCommandError))
			},
			Entry("missing test file", "run", "--log-file", "", "missing.toml"),
			Entry("no test files", "run", "--log-file", ""),
			Entry("missing explicit config", "run", "--config", "missing.yaml", "--log-file", ""),
			Entry("bad verbosity", "run", "-v", "5", "--log-file", ""),
			Entry("bad format", "run", "--format", "xml", "--log-file", ""),
			Entry("unknown flag", "run", "--no-such-flag"),
		)
	})

	Describe("validate", func() {
		It("should report invalid declarations without running anything", func() {
			code := execute(context.Background(), out, "validate", "--config", config, specsDir)
			Expect(code).To(Equal(cli.ExitFailure))
			Expect(out.String()).To(ContainSubstring("OK      " + numbers + "#file_comparison"))
			Expect(out.String()).To(ContainSubstring("INVALID " + broken))
			Expect(out.String()).To(ContainSubstring("4 specification(s), 1 invalid"))
		})

		It("should pass for valid files", func() {
			code := execute(context.Background(), out, "validate", "--config", config, "--format", "json", numbers)
			Expect(code).To(Equal(cli.ExitSuccess))
			var checks []map[string]any
			Expect(json.Unmarshal(out.Bytes(), &checks)).To(Succeed())
			Expect(checks).To(HaveLen(1))
			Expect(checks[0]).To(HaveKeyWithValue("valid", true))
		})
	})

	Describe("list", func() {
		It("should print the catalog", func() {
			code := execute(context.Background(), out, "list", "--config", config)
			Expect(code).To(Equal(cli.ExitSuccess))
			Expect(out.String()).To(ContainSubstring("Test methods:\n  file_comparison\n"))
			Expect(out.String()).To(ContainSubstring("  relative_error\n"))
			Expect(out.String()).To(ContainSubstring("  markdown_blocks\n"))
			Expect(out.String()).To(ContainSubstring("  regex_extract\n"))
			Expect(out.String()).To(ContainSubstring("  .yml"))
		})

		It("should print the catalog as JSON", func() {
			code := execute(context.Background(), out, "list", "--config", config, "--format", "json")
			Expect(code).To(Equal(cli.ExitSuccess))
			var c map[string][]string
			Expect(json.Unmarshal(out.Bytes(), &c)).To(Succeed())
			Expect(c["verifiers"]).To(ContainElements("strict", "elementwise", "ignore"))
		})
	})

	Describe("watch", func() {
		It("should rerun a test file when it changes", func() {
			dir := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(dir, "out.txt"), []byte("1\n"), 0644)).To(Succeed())
			testFile := filepath.Join(dir, "watched.toml")
			body := `source_path = "out.txt"

[file_comparison.parameters]
comparison_file = "out.txt"
source_preprocessor = "lines"
verifier = "strict"
`
			Expect(os.WriteFile(testFile, []byte(body), 0644)).To(Succeed())

			ctx, cancel := context.WithCancel(context.Background())
			buf := gbytes.NewBuffer()
			done := make(chan int)
			go func() {
				defer GinkgoRecover()
				done <- execute(ctx, buf, "watch", "--config", config, testFile)
			}()

			Eventually(buf).Should(gbytes.Say(`PASS 1 passed, 0 failed, 1 total`))
			Expect(os.WriteFile(testFile, []byte(body+"\n"), 0644)).To(Succeed())
			Eventually(buf, "5s").Should(gbytes.Say(`PASS 1 passed, 0 failed, 1 total`))

			cancel()
			Eventually(done).Should(Receive(Equal(cli.ExitSuccess)))
		})
	})
})

var _ = Describe("ExitError", func() {
	It("should carry its code through wrapping", func() {
		err := cli.WrapExitError(cli.ExitFailure, "tests failed", errors.New("boom"))
		Expect(err.Error()).To(Equal("tests failed: boom"))
		Expect(cli.GetExitCode(err)).To(Equal(cli.ExitFailure))
		Expect(errors.Unwrap(err)).To(MatchError("boom"))
	})

	It("should map plain errors to command errors and nil to success", func() {
		Expect(cli.GetExitCode(errors.New("unknown flag"))).To(Equal(cli.ExitCommandError))
		Expect(cli.GetExitCode(nil)).To(Equal(cli.ExitSuccess))
		Expect(cli.NewExitError(cli.ExitCommandError, "x").Error()).To(Equal("x"))
	})
})
