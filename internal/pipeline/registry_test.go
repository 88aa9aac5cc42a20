package pipeline_test

import (
	"errors"
	"iter"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/filecheck/internal/domain"
	"github.com/fjglira/filecheck/internal/pipeline"
)

var _ = Describe("Registry", func() {
	It("should hold the built-in entries", func() {
		reg := pipeline.DefaultRegistry()
		Expect(reg.PreprocessorNames()).To(Equal([]string{"asciidoc_blocks", "blocks", "lines", "markdown_blocks"}))
		Expect(reg.VerifierNames()).To(Equal([]string{"absolute_error", "elementwise", "ignore", "relative_error", "strict"}))
		Expect(reg.HasPreprocessor("lines")).To(BeTrue())
		Expect(reg.HasVerifier("lines")).To(BeFalse())
	})

	It("should return a typed error for unknown names", func() {
		reg := pipeline.DefaultRegistry()
		_, err := reg.Preprocessor("columns", nil)
		var unknown *pipeline.UnknownNameError
		Expect(errors.As(err, &unknown)).To(BeTrue())
		Expect(unknown.Kind).To(Equal("preprocessor"))
		Expect(err.Error()).To(Equal(`unknown preprocessor "columns"`))
	})

	It("should name the entry when binding fails", func() {
		_, err := pipeline.DefaultRegistry().Verifier("absolute_error", nil)
		Expect(err).To(MatchError(HavePrefix(`verifier "absolute_error": `)))
	})

	It("should accept custom entries", func() {
		reg := pipeline.NewRegistry()
		reg.RegisterVerifier("always_fail", func(pipeline.Params, *pipeline.Registry) (pipeline.Verifier, error) {
			return func(any, any) []domain.Error { return []domain.Error{domain.Errorf("no")} }, nil
		})
		reg.RegisterPreprocessor("constant", func(pipeline.Params) (pipeline.Preprocessor, error) {
			return func(string) iter.Seq2[pipeline.Chunk, error] {
				return func(yield func(pipeline.Chunk, error) bool) {
					yield(pipeline.Chunk{Value: 1}, nil)
				}
			}, nil
		})

		v, err := reg.Verifier("always_fail", nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(v(1, 1)).To(HaveLen(1))

		p, err := reg.Preprocessor("constant", nil)
		Expect(err).ToNot(HaveOccurred())
		chunks, err := collect(p("ignored"))
		Expect(err).ToNot(HaveOccurred())
		Expect(chunks).To(HaveLen(1))
	})
})
