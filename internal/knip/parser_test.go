package knip_test

import (
	"encoding/json"

	"knipclean/internal/knip"
	"knipclean/internal/model"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const sampleOutput = `{"files":["src/unused.ts","src/old/helper.ts"],` +
	`"dependencies":["left-pad"],"devDependencies":["lodash"],` +
	`"exports":{"src/b.ts":["two","three"],"src/a.ts":["one"]}}`

var _ = Describe("DecodeReport", func() {
	It("accepts valid JSON from a non-zero exit", func() {
		var direct model.Report
		Expect(json.Unmarshal([]byte(sampleOutput), &direct)).To(Succeed())

		report, err := knip.DecodeReport(knip.RunResult{ExitCode: 1, Stdout: []byte(sampleOutput)})
		Expect(err).To(Succeed())
		Expect(*report).To(Equal(direct))
		Expect(report.Files).To(Equal([]string{"src/unused.ts", "src/old/helper.ts"}))
		Expect(report.Exports).To(Equal([]model.ExportGroup{
			{File: "src/b.ts", Names: []string{"two", "three"}},
			{File: "src/a.ts", Names: []string{"one"}},
		}))
	})

	DescribeTable("treats empty output as a clean report",
		func(res knip.RunResult) {
			report, err := knip.DecodeReport(res)
			Expect(err).To(Succeed())
			Expect(report.IsClean()).To(BeTrue())
			Expect(report.Files).NotTo(BeNil())
			Expect(report.Exports).NotTo(BeNil())
		},
		Entry("exit 0", knip.RunResult{}),
		Entry("exit 0 with whitespace", knip.RunResult{Stdout: []byte("\n  \n")}),
		Entry("exit 1 without diagnostics", knip.RunResult{ExitCode: 1}),
		Entry("exit 0 with warnings on stderr", knip.RunResult{Stderr: []byte("npm WARN deprecated")}),
	)

	It("fails when a failing process printed nothing usable", func() {
		_, err := knip.DecodeReport(knip.RunResult{ExitCode: 2, Stderr: []byte("ERROR: Unable to find config")})
		Expect(err).To(MatchError(model.ErrProcessFailed))
		Expect(err).To(MatchError(ContainSubstring("Unable to find config")))
	})

	It("reports unparsable output of a failing process as ProcessFailed", func() {
		_, err := knip.DecodeReport(knip.RunResult{ExitCode: 2, Stdout: []byte("Segmentation fault")})
		Expect(err).To(MatchError(model.ErrProcessFailed))
	})

	It("reports unparsable output of a successful process as ParseError", func() {
		_, err := knip.DecodeReport(knip.RunResult{Stdout: []byte("<html>")})
		Expect(err).To(MatchError(model.ErrParse))
	})

	It("ignores noise printed around the JSON object", func() {
		out := "Need to install the following packages:\n" + sampleOutput + "\n"
		report, err := knip.DecodeReport(knip.RunResult{ExitCode: 1, Stdout: []byte(out)})
		Expect(err).To(Succeed())
		Expect(report.DevDependencies).To(Equal([]string{"lodash"}))
	})

	It("skips braces in warning lines before the JSON object", func() {
		out := "npm WARN config {production} is deprecated\n  " + sampleOutput + "\n"
		report, err := knip.DecodeReport(knip.RunResult{ExitCode: 1, Stdout: []byte(out)})
		Expect(err).To(Succeed())
		Expect(report.Dependencies).To(Equal([]string{"left-pad"}))
	})
})

var _ = Describe("CleanOutcome", func() {
	DescribeTable("classifies knip --fix runs",
		func(res knip.RunResult, ok bool) {
			err := knip.CleanOutcome(res)
			if ok {
				Expect(err).To(Succeed())
			} else {
				Expect(err).To(MatchError(model.ErrProcessFailed))
			}
		},
		Entry("exit 0", knip.RunResult{}, true),
		Entry("files removed", knip.RunResult{ExitCode: 1, Stdout: []byte("3 files removed")}, true),
		Entry("dependencies removed on stderr", knip.RunResult{ExitCode: 1, Stderr: []byte("2 Dependencies removed")}, true),
		Entry("other failure", knip.RunResult{ExitCode: 1, Stderr: []byte("boom")}, false),
	)
})
