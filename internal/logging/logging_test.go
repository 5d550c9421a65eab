package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"knipclean/internal/logging"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Open", func() {
	BeforeEach(func() {
		if runtime.GOOS != "linux" {
			Skip("log directory is only redirected through XDG_STATE_HOME on Linux")
		}
		GinkgoT().Setenv("XDG_STATE_HOME", GinkgoT().TempDir())
	})

	It("writes JSON records tagged with the run", func() {
		run, err := logging.Open("scan", false)
		Expect(err).To(Succeed())
		run.Logger.Info("hello", "root", "/project")
		run.Logger.Debug("hidden")
		Expect(run.Close()).To(Succeed())

		Expect(filepath.Base(run.Path)).To(ContainSubstring(run.ID[:8]))
		data, err := os.ReadFile(run.Path)
		Expect(err).To(Succeed())
		lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
		Expect(lines).To(HaveLen(1))

		var rec map[string]any
		Expect(json.Unmarshal(lines[0], &rec)).To(Succeed())
		Expect(rec).To(HaveKeyWithValue("msg", "hello"))
		Expect(rec).To(HaveKeyWithValue("run_id", run.ID))
		Expect(rec).To(HaveKeyWithValue("command", "scan"))
	})

	It("includes debug records when verbose", func() {
		var buf bytes.Buffer
		logging.New(&buf, true).Debug("details")
		Expect(buf.String()).To(ContainSubstring(`"level":"DEBUG"`))
	})
})
