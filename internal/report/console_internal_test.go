package report

import (
	"bytes"
	"os"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = ginkgo.Describe("setupSpinner", func() {
	ginkgo.It("should write to the reporter output", func() {
		var buf bytes.Buffer
		s := newSetupSpinner(true, &buf)
		Expect(s.spinner).ToNot(BeNil())
		Expect(s.spinner.Writer).To(BeIdenticalTo(&buf))
	})

	ginkgo.It("should check the terminal of a file output", func() {
		s := newSetupSpinner(true, os.Stderr)
		Expect(s.spinner.WriterFile).To(BeIdenticalTo(os.Stderr))
	})

	ginkgo.It("should stay inert when disabled", func() {
		s := newSetupSpinner(false, os.Stderr)
		Expect(s.spinner).To(BeNil())
		s.Start("setup")
		s.Stop()
	})
})
