package spankit_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	spankit "github.com/spankit/spankit-go"
)

var _ = Describe("Options", func() {
	Describe("DefaultOptions", func() {
		It("fills in every default", func() {
			opts := spankit.DefaultOptions()

			Expect(opts.MaxSpans).To(Equal(spankit.DefaultMaxSpans))
			Expect(opts.SampleRate).To(Equal(1.0))
			Expect(opts.ReportTimeout).To(Equal(spankit.DefaultReportTimeout))
			Expect(opts.RetryMax).To(Equal(spankit.DefaultRetryMax))
		})
	})

	Describe("OptionsFromEnv", func() {
		AfterEach(func() {
			os.Unsetenv("SPANKIT_ENDPOINT")
			os.Unsetenv("SPANKIT_ACCESS_TOKEN")
			os.Unsetenv("SPANKIT_MAX_SPANS")
			os.Unsetenv("SPANKIT_REPORT_TIMEOUT")
		})

		It("matches the defaults with nothing set", func() {
			opts, err := spankit.OptionsFromEnv()

			Expect(err).NotTo(HaveOccurred())
			Expect(opts).To(Equal(spankit.DefaultOptions()))
		})

		It("reads SPANKIT_ variables", func() {
			os.Setenv("SPANKIT_ENDPOINT", "https://collector.example.com")
			os.Setenv("SPANKIT_ACCESS_TOKEN", "sekrit")
			os.Setenv("SPANKIT_MAX_SPANS", "25")
			os.Setenv("SPANKIT_REPORT_TIMEOUT", "5s")

			opts, err := spankit.OptionsFromEnv()

			Expect(err).NotTo(HaveOccurred())
			Expect(opts.Endpoint).To(Equal("https://collector.example.com"))
			Expect(opts.AccessToken).To(Equal("sekrit"))
			Expect(opts.MaxSpans).To(Equal(25))
			Expect(opts.ReportTimeout).To(Equal(5 * time.Second))
		})

		It("rejects malformed values", func() {
			os.Setenv("SPANKIT_MAX_SPANS", "banana")

			_, err := spankit.OptionsFromEnv()

			Expect(err).To(HaveOccurred())
		})
	})
})
