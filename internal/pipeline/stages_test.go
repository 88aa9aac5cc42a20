package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/filecheck/internal/pipeline"
)

var _ = Describe("Stages", func() {
	run := func(decl []any, in any) (any, error) {
		stage, err := pipeline.ParsePipeline(decl)
		Expect(err).ToNot(HaveOccurred())
		return stage(in)
	}

	It("should treat an empty pipeline as the identity", func() {
		Expect(run(nil, "x")).To(Equal("x"))
	})

	It("should compose stages left to right", func() {
		out, err := run([]any{
			"strip",
			map[string]any{"name": "split", "sep": ","},
			map[string]any{"name": "each", "stage": "to_float"},
		}, " 1,2.5 ")
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(Equal([]any{1.0, 2.5}))
	})

	It("should split on whitespace by default", func() {
		Expect(run([]any{"split"}, "a  b\tc")).To(Equal([]any{"a", "b", "c"}))
	})

	It("should pick fields and slices", func() {
		list := []any{"a", "b", "c", "d"}
		Expect(run([]any{map[string]any{"name": "field", "index": -1}}, list)).To(Equal("d"))
		Expect(run([]any{map[string]any{"name": "slice", "start": 1, "end": 3}}, list)).To(Equal([]any{"b", "c"}))
		Expect(run([]any{map[string]any{"name": "slice", "end": -1}}, list)).To(Equal([]any{"a", "b", "c"}))
		Expect(run([]any{map[string]any{"name": "slice", "start": 2}}, list)).To(Equal([]any{"c", "d"}))

		_, err := run([]any{map[string]any{"name": "field", "index": 7}}, list)
		Expect(err).To(MatchError(ContainSubstring("out of range")))
	})

	It("should extract regular expression groups", func() {
		decl := []any{map[string]any{"name": "regex_extract", "pattern": `x=(\d+)`, "group": 1}, "to_int"}
		Expect(run(decl, "a x=42 b")).To(Equal(int64(42)))

		_, err := run(decl, "nothing here")
		Expect(err).To(MatchError(ContainSubstring("does not match")))
	})

	It("should apply the text transforms", func() {
		Expect(run([]any{"lstrip", "upper"}, "  ab ")).To(Equal("AB "))
		Expect(run([]any{"rstrip", "lower"}, "AB  ")).To(Equal("ab"))
		Expect(run([]any{map[string]any{"name": "replace", "old": "D", "new": "e"}, "to_float"}, "1.5D3")).To(Equal(1500.0))
		Expect(run([]any{map[string]any{"name": "trim_prefix", "prefix": "v="}}, "v=3")).To(Equal("3"))
		Expect(run([]any{map[string]any{"name": "trim_suffix", "suffix": "ms"}}, "12ms")).To(Equal("12"))
	})

	It("should evaluate sandboxed expressions", func() {
		Expect(run([]any{map[string]any{"name": "expr", "expression": "upper(line)"}}, "abc")).To(Equal("ABC"))
	})

	It("should report conversion failures", func() {
		_, err := run([]any{"to_float"}, "1.0x")
		Expect(err).To(MatchError(ContainSubstring(`"1.0x" is not a number`)))

		_, err = run([]any{"strip"}, 3.0)
		Expect(err).To(MatchError(ContainSubstring("expected text")))
	})

	It("should reject unknown stages and arguments at build time", func() {
		_, err := pipeline.ParsePipeline([]any{"eval"})
		Expect(err).To(MatchError(ContainSubstring(`unknown stage "eval"`)))

		_, err = pipeline.ParsePipeline([]any{map[string]any{"name": "split", "separator": ","}})
		Expect(err).To(MatchError(ContainSubstring("unknown parameter(s) separator")))

		_, err = pipeline.ParsePipeline([]any{map[string]any{"name": "regex_extract", "pattern": "("}})
		Expect(err).To(MatchError(ContainSubstring("invalid pattern")))

		_, err = pipeline.ParsePipeline([]any{map[string]any{"name": "expr", "expression": "line +"}})
		Expect(err).To(MatchError(ContainSubstring("invalid expression")))

		_, err = pipeline.ParsePipeline([]any{42})
		Expect(err).To(HaveOccurred())
	})

	It("should list the available stages", func() {
		Expect(pipeline.StageNames()).To(ContainElements("strip", "split", "to_float", "each", "expr"))
	})
})

var _ = Describe("Predicates", func() {
	eval := func(decl any, def bool, line string) bool {
		p, err := pipeline.ParsePredicate(decl, def)
		Expect(err).ToNot(HaveOccurred())
		b, err := p(line)
		Expect(err).ToNot(HaveOccurred())
		return b
	}

	It("should fall back to the default when absent", func() {
		Expect(eval(nil, true, "x")).To(BeTrue())
		Expect(eval("", false, "x")).To(BeFalse())
	})

	It("should evaluate the named predicates", func() {
		Expect(eval("empty", false, "  ")).To(BeTrue())
		Expect(eval("nonempty", false, "  ")).To(BeFalse())
		Expect(eval("never", true, "x")).To(BeFalse())
		Expect(eval(map[string]any{"name": "contains", "text": "ERR"}, false, "an ERR here")).To(BeTrue())
		Expect(eval(map[string]any{"name": "prefix", "text": "#"}, false, "# c")).To(BeTrue())
		Expect(eval(map[string]any{"name": "suffix", "text": ";"}, false, "a;")).To(BeTrue())
		Expect(eval(map[string]any{"name": "regex", "pattern": `^\d+$`}, false, "123")).To(BeTrue())
	})

	It("should negate an inner predicate", func() {
		decl := map[string]any{"name": "not", "predicate": map[string]any{"name": "prefix", "text": "#"}}
		Expect(eval(decl, false, "# comment")).To(BeFalse())
		Expect(eval(decl, false, "1.0")).To(BeTrue())
	})

	It("should evaluate boolean expressions", func() {
		decl := map[string]any{"name": "expr", "expression": `line startsWith "END"`}
		Expect(eval(decl, false, "END of data")).To(BeTrue())
		Expect(eval(decl, false, "1.0")).To(BeFalse())
	})

	It("should reject expressions that are not boolean", func() {
		_, err := pipeline.ParsePredicate(map[string]any{"name": "expr", "expression": "len(line)"}, false)
		Expect(err).To(HaveOccurred())
	})

	It("should reject unknown predicates", func() {
		_, err := pipeline.ParsePredicate("sometimes", false)
		Expect(err).To(MatchError(ContainSubstring(`unknown predicate "sometimes"`)))
	})
})
