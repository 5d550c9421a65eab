package model_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"knipclean/internal/model"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Report", func() {
	decode := func(doc string) *model.Report {
		var r model.Report
		Expect(json.Unmarshal([]byte(doc), &r)).To(Succeed())
		return &r
	}

	It("keeps the analyzer's export order", func() {
		r := decode(`{"exports":{"z.ts":["a"],"a.ts":["b","c"],"m.ts":[]}}`)
		Expect(r.Exports).To(Equal([]model.ExportGroup{
			{File: "z.ts", Names: []string{"a"}},
			{File: "a.ts", Names: []string{"b", "c"}},
			{File: "m.ts", Names: []string{}},
		}))
		Expect(r.ExportNames("a.ts")).To(Equal([]string{"b", "c"}))
		Expect(r.ExportNames("missing.ts")).To(BeNil())
	})

	It("folds duplicate export keys into the first occurrence", func() {
		r := decode(`{"exports":{"a.ts":["x"],"b.ts":["y"],"a.ts":["z"]}}`)
		Expect(r.Exports).To(HaveLen(2))
		Expect(r.ExportNames("a.ts")).To(Equal([]string{"x", "z"}))
	})

	It("fills missing and null collections with empty ones", func() {
		r := decode(`{"files":null,"types":["Unused"]}`)
		Expect(r.Files).To(Equal([]string{}))
		Expect(r.Dependencies).To(Equal([]string{}))
		Expect(r.DevDependencies).To(Equal([]string{}))
		Expect(r.Exports).To(Equal([]model.ExportGroup{}))
		Expect(r.IsClean()).To(BeTrue())
	})

	It("rejects exports that are not an object", func() {
		var r model.Report
		Expect(json.Unmarshal([]byte(`{"exports":["a.ts"]}`), &r)).NotTo(Succeed())
	})

	It("counts issues", func() {
		r := decode(`{"files":["a.ts"],"dependencies":["x","y"],"devDependencies":[],"exports":{"b.ts":["c","d"]}}`)
		Expect(r.Issues()).To(Equal(4))
		Expect(r.IsClean()).To(BeFalse())
	})

	It("writes the knip reporter shape with ordered exports", func() {
		r := decode(`{"files":["a.ts"],"exports":{"z.ts":["a"],"a.ts":["b"]}}`)
		out, err := json.Marshal(r)
		Expect(err).To(Succeed())
		Expect(string(out)).To(Equal(
			`{"files":["a.ts"],"dependencies":[],"devDependencies":[],"exports":{"z.ts":["a"],"a.ts":["b"]}}`))
	})
})

var _ = Describe("Snapshot", func() {
	It("matches applied actions by value", func() {
		s := model.Snapshot{Report: model.EmptyReport(), Applied: []model.Action{
			model.DeleteFile("src/a.ts"),
			model.RemoveDependency("lodash", true),
		}}
		Expect(s.IsApplied(model.DeleteFile("src/a.ts"))).To(BeTrue())
		Expect(s.IsApplied(model.RemoveDependency("lodash", true))).To(BeTrue())
		Expect(s.IsApplied(model.RemoveDependency("lodash", false))).To(BeFalse())
		Expect(s.IsApplied(model.OpenFile("src/a.ts"))).To(BeFalse())
	})
})

var _ = Describe("ReadPreview", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("truncates long files", func() {
		path := filepath.Join(dir, "long.ts")
		Expect(os.WriteFile(path, []byte(strings.Repeat("line\n", 10)), 0o644)).To(Succeed())

		p := model.ReadPreview(path, 3)
		Expect(p.Lines).To(HaveLen(3))
		Expect(p.Truncated).To(BeTrue())
		Expect(p.String()).To(ContainSubstring("   1  line"))
	})

	It("flags binary files", func() {
		path := filepath.Join(dir, "blob.bin")
		Expect(os.WriteFile(path, []byte{0x00, 0x01, 0xff, '\n'}, 0o644)).To(Succeed())

		p := model.ReadPreview(path, 10)
		Expect(p.Binary).To(BeTrue())
		Expect(p.String()).To(Equal("(binary file)"))
	})

	It("reports unreadable files", func() {
		p := model.ReadPreview(filepath.Join(dir, "nope.ts"), 10)
		Expect(p.ErrorMsg).To(HavePrefix("Could not read file"))
	})
})
