package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/filecheck/internal/config"
)

var _ = Describe("Config", func() {
	Describe("Load", func() {
		It("should load minimal config on top of the defaults", func() {
			cfg, err := config.Load(filepath.Join("..", "..", "testdata", "configs", "minimal.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg).ToNot(BeNil())
			Expect(cfg.Logging.Level).To(Equal("debug"))
			Expect(cfg.Logging.File).To(Equal("filecheck.log"))
			Expect(cfg.Setup.Shell).To(Equal("/bin/sh"))
			Expect(cfg.Output.PreviewLimit).To(Equal(5))
		})

		It("should load full config", func() {
			cfg, err := config.Load(filepath.Join("..", "..", "testdata", "configs", "full.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Run.Files).To(ConsistOf("testdata/specs/numbers.toml"))
			Expect(cfg.Run.RelativeToSpec).To(BeTrue())
			Expect(cfg.Setup.Shell).To(Equal("/bin/bash"))
			Expect(cfg.Setup.BlockedPatterns).To(ContainElement(`\bshutdown\b`))
			Expect(cfg.Setup.SetupTimeout()).To(Equal(30 * time.Second))
			Expect(cfg.Input.Exclude).To(ContainElement("fixtures/**"))
			Expect(*cfg.Input.Recursive).To(BeFalse())
			Expect(cfg.Output.Verbosity).To(Equal(2))
			Expect(cfg.Output.Format).To(Equal("json"))
			Expect(cfg.Logging.File).To(Equal("run.log"))
		})

		It("should return error for nonexistent file", func() {
			_, err := config.Load("nonexistent.yaml")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid YAML", func() {
			tmpFile := filepath.Join(GinkgoT().TempDir(), "invalid_filecheck.yaml")
			Expect(os.WriteFile(tmpFile, []byte("{{invalid yaml}}"), 0644)).To(Succeed())

			_, loadErr := config.Load(tmpFile)
			Expect(loadErr).To(HaveOccurred())
			Expect(loadErr.Error()).To(ContainSubstring("[config]"))
		})
	})

	Describe("LoadOrDefault", func() {
		It("should fall back to defaults when the implicit file is missing", func() {
			cfg, err := config.LoadOrDefault("nonexistent.yaml", false)
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg).To(Equal(config.DefaultConfig()))
		})

		It("should fail when an explicit file is missing", func() {
			_, err := config.LoadOrDefault("nonexistent.yaml", true)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("--config"))
		})
	})

	Describe("DefaultConfig", func() {
		It("should return config with sensible defaults", func() {
			cfg := config.DefaultConfig()
			Expect(cfg.Input.Include).To(ConsistOf("*.toml", "*.yaml", "*.yml"))
			Expect(*cfg.Input.Recursive).To(BeTrue())
			Expect(cfg.Setup.ShellFlag).To(Equal("-c"))
			Expect(cfg.Setup.SetupTimeout()).To(BeZero())
			Expect(cfg.Output.Format).To(Equal("text"))
			Expect(cfg.Logging.Level).To(Equal("info"))
			Expect(config.Validate(cfg)).To(Succeed())
		})
	})

	Describe("Validate", func() {
		It("should pass for valid config", func() {
			cfg, err := config.Load(filepath.Join("..", "..", "testdata", "configs", "full.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(config.Validate(cfg)).To(Succeed())
		})

		DescribeTable("invalid values",
			func(mutate func(*config.Config), field string) {
				cfg := config.DefaultConfig()
				mutate(cfg)
				err := config.Validate(cfg)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring(field))
			},
			Entry("empty shell", func(c *config.Config) { c.Setup.Shell = "" }, "setup.shell"),
			Entry("bad timeout", func(c *config.Config) { c.Setup.Timeout = "soon" }, "setup.timeout"),
			Entry("negative timeout", func(c *config.Config) { c.Setup.Timeout = "-1s" }, "setup.timeout"),
			Entry("invalid blocked pattern", func(c *config.Config) { c.Setup.BlockedPatterns = []string{"rm ("} }, "setup.blocked_patterns"),
			Entry("empty include", func(c *config.Config) { c.Input.Include = nil }, "input.include"),
			Entry("verbosity too high", func(c *config.Config) { c.Output.Verbosity = 3 }, "output.verbosity"),
			Entry("negative preview", func(c *config.Config) { c.Output.PreviewLimit = -1 }, "output.preview_limit"),
			Entry("unknown format", func(c *config.Config) { c.Output.Format = "xml" }, "output.format"),
			Entry("unknown log level", func(c *config.Config) { c.Logging.Level = "verbose" }, "logging.level"),
		)

		It("should aggregate every problem into one error", func() {
			cfg := config.DefaultConfig()
			cfg.Setup.Shell = ""
			cfg.Output.Format = "xml"
			err := config.Validate(cfg)
			Expect(err).To(MatchError(And(ContainSubstring("setup.shell"), ContainSubstring("; "), ContainSubstring("output.format"))))
		})
	})
})
