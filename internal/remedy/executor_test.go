package remedy_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"knipclean/internal/model"
	"knipclean/internal/remedy"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const sampleManifest = `{
    "name": "demo",
    "version": "1.0.0",
    "dependencies": {
        "left-pad": "^1.3.0",
        "react": "^18.0.0"
    },
    "devDependencies": {
        "knip": "^5.0.0",
        "lodash": "^4.17.21"
    }
}
`

var _ = Describe("Executor", func() {
	var (
		root     string
		opened   []string
		viewErr  error
		executor *remedy.Executor
		ctx      context.Context
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		opened = nil
		viewErr = nil
		ctx = context.Background()
		executor = remedy.NewExecutor(remedy.ViewerFunc(func(path string) error {
			opened = append(opened, path)
			return viewErr
		}), nil)
		Expect(os.MkdirAll(filepath.Join(root, "src"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, "src", "unused.ts"), []byte("export {}\n"), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, "package.json"), []byte(sampleManifest), 0o644)).To(Succeed())
	})

	Describe("DeleteFile", func() {
		It("removes the file", func() {
			notice, err := executor.Execute(ctx, root, model.DeleteFile("src/unused.ts"))
			Expect(err).To(Succeed())
			Expect(notice.Level).To(Equal(model.LevelInfo))
			Expect(filepath.Join(root, "src", "unused.ts")).NotTo(BeAnExistingFile())
		})

		It("warns instead of failing when the file is already gone", func() {
			notice, err := executor.Execute(ctx, root, model.DeleteFile("src/gone.ts"))
			Expect(err).To(Succeed())
			Expect(notice.Level).To(Equal(model.LevelWarning))
			Expect(notice.Text).To(ContainSubstring("File not found"))
		})

		It("refuses paths outside the project", func() {
			_, err := executor.Execute(ctx, root, model.DeleteFile("../package.json"))
			Expect(err).To(MatchError(model.ErrFileSystem))
		})

		It("reports a removal failure as a FileSystemError", func() {
			dir := filepath.Join(root, "src", "full")
			Expect(os.MkdirAll(filepath.Join(dir, "child"), 0o755)).To(Succeed())
			_, err := executor.Execute(ctx, root, model.DeleteFile("src/full"))
			Expect(err).To(MatchError(model.ErrFileSystem))
			Expect(dir).To(BeADirectory())
		})
	})

	Describe("OpenFile", func() {
		It("hands the absolute path to the viewer", func() {
			_, err := executor.Execute(ctx, root, model.OpenFile("src/unused.ts"))
			Expect(err).To(Succeed())
			Expect(opened).To(Equal([]string{filepath.Join(root, "src", "unused.ts")}))
		})

		It("warns when the file does not exist", func() {
			notice, err := executor.Execute(ctx, root, model.OpenFile("src/gone.ts"))
			Expect(err).To(Succeed())
			Expect(notice.Level).To(Equal(model.LevelWarning))
			Expect(opened).To(BeEmpty())
		})

		It("turns a viewer failure into a FileSystemError", func() {
			viewErr = errors.New("no display")
			_, err := executor.Execute(ctx, root, model.OpenFile("src/unused.ts"))
			Expect(err).To(MatchError(model.ErrFileSystem))
			Expect(err).To(MatchError(ContainSubstring("no display")))
		})
	})

	Describe("RemoveDependency", func() {
		read := func() string {
			b, err := os.ReadFile(filepath.Join(root, "package.json"))
			Expect(err).To(Succeed())
			return string(b)
		}

		It("removes a runtime dependency and keeps the layout", func() {
			notice, err := executor.Execute(ctx, root, model.RemoveDependency("left-pad", false))
			Expect(err).To(Succeed())
			Expect(notice.Text).To(Equal("Removed left-pad from dependencies"))
			Expect(read()).To(Equal(`{
    "name": "demo",
    "version": "1.0.0",
    "dependencies": {
        "react": "^18.0.0"
    },
    "devDependencies": {
        "knip": "^5.0.0",
        "lodash": "^4.17.21"
    }
}
`))
		})

		It("removes a dev dependency only from devDependencies", func() {
			_, err := executor.Execute(ctx, root, model.RemoveDependency("lodash", true))
			Expect(err).To(Succeed())
			Expect(read()).NotTo(ContainSubstring("lodash"))
			Expect(read()).To(ContainSubstring(`"left-pad"`))
		})

		It("leaves the manifest byte-identical when the entry is absent", func() {
			notice, err := executor.Execute(ctx, root, model.RemoveDependency("lodash", false))
			Expect(err).To(Succeed())
			Expect(notice.Level).To(Equal(model.LevelWarning))
			Expect(read()).To(Equal(sampleManifest))
		})

		It("fails with ManifestMissing without a package.json", func() {
			Expect(os.Remove(filepath.Join(root, "package.json"))).To(Succeed())
			_, err := executor.Execute(ctx, root, model.RemoveDependency("react", false))
			Expect(err).To(MatchError(model.ErrManifestMissing))
		})

		It("fails with ParseError on a broken package.json", func() {
			Expect(os.WriteFile(filepath.Join(root, "package.json"), []byte(`{"dependencies": `), 0o644)).To(Succeed())
			_, err := executor.Execute(ctx, root, model.RemoveDependency("react", false))
			Expect(err).To(MatchError(model.ErrParse))
		})
	})

	It("does not execute refresh requests", func() {
		_, err := executor.Execute(ctx, root, model.RequestRefresh())
		Expect(err).To(HaveOccurred())
	})

	It("does nothing once the context is done", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := executor.Execute(canceled, root, model.DeleteFile("src/unused.ts"))
		Expect(err).To(MatchError(model.ErrCanceled))
		Expect(filepath.Join(root, "src", "unused.ts")).To(BeAnExistingFile())
	})
})
