package model_test

import (
	"encoding/json"
	"errors"
	"fmt"

	"knipclean/internal/model"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Message", func() {
	DescribeTable("decodes wire commands",
		func(doc string, expected model.Action) {
			var a model.Action
			Expect(json.Unmarshal([]byte(doc), &a)).To(Succeed())
			Expect(a).To(Equal(expected))
		},
		Entry("delete", `{"command":"deleteFile","filePath":"src/a.ts"}`, model.DeleteFile("src/a.ts")),
		Entry("open", `{"command":"openFile","filePath":"src/a.ts"}`, model.OpenFile("src/a.ts")),
		Entry("dependency", `{"command":"removeDependency","dependency":"left-pad"}`, model.RemoveDependency("left-pad", false)),
		Entry("dev dependency", `{"command":"removeDevDependency","dependency":"@types/node"}`, model.RemoveDependency("@types/node", true)),
		Entry("refresh", `{"command":"refresh"}`, model.RequestRefresh()),
	)

	DescribeTable("rejects malformed messages",
		func(m model.Message) {
			_, err := m.Action()
			Expect(err).To(MatchError(model.ErrParse))
		},
		Entry("unknown command", model.Message{Command: "format"}),
		Entry("delete without path", model.Message{Command: model.CommandDeleteFile}),
		Entry("remove without name", model.Message{Command: model.CommandRemoveDependency}),
	)

	It("encodes actions back to messages", func() {
		Expect(model.RemoveDependency("x", true).Message()).To(Equal(
			model.Message{Command: model.CommandRemoveDevDependency, Dependency: "x"}))
		Expect(model.RequestRefresh().Message()).To(Equal(model.Message{Command: model.CommandRefresh}))
	})
})

var _ = Describe("Fault", func() {
	It("matches sentinels by kind through wrapping", func() {
		err := fmt.Errorf("scan: %w", model.NewFault(model.ProcessTimeout, "npx", errors.New("slow")))
		Expect(errors.Is(err, model.ErrProcessTimeout)).To(BeTrue())
		Expect(errors.Is(err, model.ErrProcessFailed)).To(BeFalse())
		Expect(model.KindOf(err)).To(Equal(model.ProcessTimeout))
		Expect(err.Error()).To(Equal("scan: npx: slow"))
	})

	It("reports zero for foreign errors", func() {
		Expect(model.KindOf(errors.New("plain"))).To(BeZero())
	})
})
