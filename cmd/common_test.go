package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"knipclean/internal/history"
	"knipclean/internal/knip"
	"knipclean/internal/logging"
	"knipclean/internal/model"
	"knipclean/internal/settings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type cannedRunner struct {
	outputs []string
}

func (c *cannedRunner) Run(context.Context, string, string, ...string) (knip.RunResult, error) {
	out := c.outputs[0]
	c.outputs = c.outputs[1:]
	return knip.RunResult{ExitCode: 1, Stdout: []byte(out)}, nil
}

var _ = Describe("env.scan", func() {
	var e *env

	BeforeEach(func() {
		root := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(root, "package.json"),
			[]byte(`{"devDependencies": {"knip": "^5.0.0"}}`), 0o644)).To(Succeed())

		store, err := history.Open(context.Background(), filepath.Join(GinkgoT().TempDir(), "history.db"))
		Expect(err).To(Succeed())
		DeferCleanup(store.Close)

		a := knip.NewAnalyzer(nil)
		a.Runner = &cannedRunner{outputs: []string{
			`{"files":["a.ts","b.ts"],"dependencies":[],"devDependencies":[],"exports":{}}`,
			`{"files":["a.ts"],"dependencies":[],"devDependencies":[],"exports":{}}`,
		}}
		e = &env{
			root:     root,
			settings: settings.Defaults(),
			run:      &logging.Run{},
			logger:   a.Logger,
			analyzer: a,
			history:  store,
		}
	})

	It("records scans and reports the change", func() {
		_, first, err := e.scan(context.Background(), nil)
		Expect(err).To(Succeed())
		Expect(first.Text).To(Equal("Scan complete: 2 issues"))

		report, second, err := e.scan(context.Background(), nil)
		Expect(err).To(Succeed())
		Expect(report.Files).To(Equal([]string{"a.ts"}))
		Expect(second.Text).To(Equal("Scan complete: 1 issues (-1 issues since last scan)"))

		entries, err := e.history.Recent(context.Background(), e.root, 10)
		Expect(err).To(Succeed())
		Expect(entries).To(HaveLen(2))
	})

	It("feeds refresh scans into the notifier", func() {
		var got []model.Notice
		scanner := scannerFor(e, nil, notifierFunc(func(n model.Notice) { got = append(got, n) }))
		_, err := scanner(context.Background(), e.root)
		Expect(err).To(Succeed())
		Expect(got).To(HaveLen(1))
		Expect(got[0].Level).To(Equal(model.LevelInfo))
	})
})

type notifierFunc func(model.Notice)

func (f notifierFunc) Notify(n model.Notice) { f(n) }

var _ = Describe("confirm", func() {
	DescribeTable("accepts only an explicit yes",
		func(input string, expected bool) {
			Expect(confirm(strings.NewReader(input), "Continue?")).To(Equal(expected))
		},
		Entry("y", "y\n", true),
		Entry("yes without newline", "YES", true),
		Entry("empty", "\n", false),
		Entry("eof", "", false),
		Entry("no", "n\n", false),
	)
})
