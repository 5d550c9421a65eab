package settings_test

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"knipclean/internal/settings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Load", func() {
	var root, configHome string

	BeforeEach(func() {
		if runtime.GOOS == "darwin" {
			Skip("user settings live under ~/Library on macOS")
		}
		root = GinkgoT().TempDir()
		configHome = GinkgoT().TempDir()
		GinkgoT().Setenv("XDG_CONFIG_HOME", configHome)
	})

	writeUser := func(content string) {
		dir := filepath.Join(configHome, "knipclean")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644)).To(Succeed())
	}

	It("returns the defaults without files", func() {
		s, err := settings.Load(root)
		Expect(err).To(Succeed())
		Expect(s.AnalyzeTimeout).To(Equal(60 * time.Second))
		Expect(s.CleanTimeout).To(Equal(120 * time.Second))
		Expect(s.ShowNotifications).To(BeTrue())
		Expect(s.Sources).To(BeEmpty())
	})

	It("lets the project file override the user file", func() {
		writeUser("analyzeTimeout: 30s\nshowNotifications: false\nopener: code\n")
		Expect(os.WriteFile(filepath.Join(root, settings.ProjectFile),
			[]byte("analyzeTimeout: 2m\ncommand: [pnpm, exec, knip]\n"), 0o644)).To(Succeed())

		s, err := settings.Load(root)
		Expect(err).To(Succeed())
		Expect(s.AnalyzeTimeout).To(Equal(2 * time.Minute))
		Expect(s.ShowNotifications).To(BeFalse())
		Expect(s.Opener).To(Equal("code"))
		Expect(s.Command).To(Equal([]string{"pnpm", "exec", "knip"}))
		Expect(s.Sources).To(HaveLen(2))
	})

	It("reports malformed files", func() {
		writeUser("analyzeTimeout: [\n")
		_, err := settings.Load(root)
		Expect(err).To(MatchError(ContainSubstring("config.yaml")))
	})

	It("rejects negative timeouts", func() {
		writeUser("cleanTimeout: -5s\n")
		_, err := settings.Load(root)
		Expect(err).To(HaveOccurred())
	})
})
