package domain_test

import (
	"errors"
	"io/fs"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/filecheck/internal/domain"
)

var _ = Describe("Location", func() {
	It("should render lines 1-indexed", func() {
		Expect(domain.Line(0).String()).To(Equal("line 1"))
		Expect(domain.Span(2, 6).String()).To(Equal("lines 3-7"))
		Expect(domain.Span(4, 4).String()).To(Equal("line 5"))
		Expect(domain.Location{}.String()).To(Equal("unknown location"))
	})

	It("should treat the zero value as absent", func() {
		Expect(domain.Location{}.IsZero()).To(BeTrue())
		Expect(domain.Line(0).IsZero()).To(BeFalse())
	})
})

var _ = Describe("Error", func() {
	It("should attach a location without mutating the original", func() {
		e := domain.Errorf("expected %v, got %v", 1.05, 1.0)
		located := e.WithLocation(domain.Line(3))
		Expect(e.Location.IsZero()).To(BeTrue())
		Expect(located.Location).To(Equal(domain.Line(3)))
		Expect(located.Message).To(Equal("expected 1.05, got 1"))
	})

	It("should format the brief summary on one line", func() {
		e := domain.Errorf("boom").WithLocation(domain.Line(1))
		Expect(e.BriefSummary()).To(Equal("Error at line 2: boom"))
		Expect(e.BriefSummary()).ToNot(ContainSubstring("\n"))
		Expect(domain.Errorf("boom").BriefSummary()).To(Equal("boom"))
	})

	It("should format the full description", func() {
		e := domain.Errorf("boom").WithLocation(domain.Span(0, 2))
		Expect(e.FullDescription()).To(Equal("Encountered error at lines 1-3:\nboom"))
	})
})

var _ = Describe("CheckError", func() {
	It("should include phase, file, line, cause and hint", func() {
		err := domain.NewErrorWithSuggestion("load", "a.toml", 4, "failed to decode", "check the syntax", fs.ErrNotExist)
		Expect(err.Error()).To(Equal("[load] a.toml:4: failed to decode: file does not exist (hint: check the syntax)"))
		Expect(errors.Is(err, fs.ErrNotExist)).To(BeTrue())
	})

	It("should omit empty parts", func() {
		Expect(domain.NewError("config", "", 0, "validation failed", nil).Error()).To(Equal("[config]: validation failed"))
	})
})
