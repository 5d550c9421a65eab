package review_test

import (
	"context"
	"errors"
	"sync"

	"knipclean/internal/model"
	"knipclean/internal/review"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeView struct {
	mu       sync.Mutex
	rendered []model.Snapshot
	handler  func(model.Action)
	disposed int
}

func (v *fakeView) Render(s model.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rendered = append(v.rendered, s)
}

func (v *fakeView) OnAction(h func(model.Action)) { v.handler = h }

func (v *fakeView) Dispose() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disposed++
}

func (v *fakeView) send(a model.Action) { v.handler(a) }

func (v *fakeView) renders() []model.Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]model.Snapshot(nil), v.rendered...)
}

type fakeExecutor struct {
	mu      sync.Mutex
	actions []model.Action
	notice  model.Notice
	err     error
}

func (e *fakeExecutor) Execute(_ context.Context, _ string, a model.Action) (model.Notice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actions = append(e.actions, a)
	if e.err != nil {
		return model.Notice{}, e.err
	}
	if e.notice.Text != "" {
		return e.notice, nil
	}
	return model.Info("done %s", a), nil
}

type recorder struct {
	mu      sync.Mutex
	notices []model.Notice
}

func (r *recorder) Notify(n model.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

var _ = Describe("Session", func() {
	var (
		ctx      context.Context
		report   *model.Report
		view     *fakeView
		executor *fakeExecutor
		notices  *recorder
		scans    int
		scanErr  error
		deps     review.Deps
	)

	BeforeEach(func() {
		ctx = context.Background()
		report = &model.Report{
			Files:           []string{"src/unused.ts"},
			Dependencies:    []string{"left-pad"},
			DevDependencies: []string{},
			Exports:         []model.ExportGroup{},
		}
		view = &fakeView{}
		executor = &fakeExecutor{}
		notices = &recorder{}
		scans = 0
		scanErr = nil
		deps = review.Deps{
			Notifier: notices,
			Executor: executor,
			Scanner: func(context.Context, string) (*model.Report, error) {
				scans++
				if scanErr != nil {
					return nil, scanErr
				}
				return model.EmptyReport(), nil
			},
		}
	})

	It("renders on construction and waits for actions", func() {
		s := review.NewSession(ctx, "/project", report, view, deps)
		Expect(s.State()).To(Equal(review.AwaitingAction))
		Expect(view.renders()).To(HaveLen(1))
		Expect(view.renders()[0].Report).To(BeIdenticalTo(report))
		Expect(view.renders()[0].Root).To(Equal("/project"))
	})

	It("applies an action and re-renders the same report", func() {
		review.NewSession(ctx, "/project", report, view, deps)
		view.send(model.DeleteFile("src/unused.ts"))

		Expect(executor.actions).To(Equal([]model.Action{model.DeleteFile("src/unused.ts")}))
		r := view.renders()
		Expect(r).To(HaveLen(2))
		Expect(r[1].Report).To(BeIdenticalTo(report))
		Expect(r[1].IsApplied(model.DeleteFile("src/unused.ts"))).To(BeTrue())
		Expect(report.Files).To(Equal([]string{"src/unused.ts"}))
		Expect(notices.notices).To(HaveLen(1))
	})

	It("keeps the report and reports an error when an action fails", func() {
		executor.err = model.NewFault(model.ManifestWriteFailed, "save manifest", errors.New("read-only"))
		s := review.NewSession(ctx, "/project", report, view, deps)
		view.send(model.RemoveDependency("left-pad", false))

		Expect(s.State()).To(Equal(review.AwaitingAction))
		Expect(notices.notices).To(HaveLen(1))
		Expect(notices.notices[0].Level).To(Equal(model.LevelError))
		Expect(notices.notices[0].Text).To(ContainSubstring("read-only"))
		last := view.renders()[len(view.renders())-1]
		Expect(last.Report).To(BeIdenticalTo(report))
		Expect(last.Applied).To(BeEmpty())
	})

	It("does not mark warnings or opened files as applied", func() {
		executor.notice = model.Warning("File not found: src/unused.ts")
		s := review.NewSession(ctx, "/project", report, view, deps)
		view.send(model.DeleteFile("src/unused.ts"))
		executor.notice = model.Notice{}
		view.send(model.OpenFile("src/unused.ts"))

		Expect(s.Snapshot().Applied).To(BeEmpty())
	})

	It("replaces the report on refresh", func() {
		s := review.NewSession(ctx, "/project", report, view, deps)
		view.send(model.DeleteFile("src/unused.ts"))
		view.send(model.RequestRefresh())

		Expect(scans).To(Equal(1))
		Expect(executor.actions).To(HaveLen(1))
		Expect(s.Snapshot().Report.IsClean()).To(BeTrue())
		Expect(s.Snapshot().Applied).To(BeEmpty())
	})

	It("keeps the old report when the refresh scan fails", func() {
		scanErr = model.NewFault(model.ProcessTimeout, "npx", errors.New("too slow"))
		s := review.NewSession(ctx, "/project", report, view, deps)
		view.send(model.RequestRefresh())

		Expect(s.Snapshot().Report).To(BeIdenticalTo(report))
		Expect(notices.notices[0].Level).To(Equal(model.LevelError))
	})

	It("ignores actions after dispose and disposes the view once", func() {
		s := review.NewSession(ctx, "/project", report, view, deps)
		s.Dispose()
		s.Dispose()
		view.send(model.DeleteFile("src/unused.ts"))

		Expect(s.State()).To(Equal(review.Closed))
		Expect(view.disposed).To(Equal(1))
		Expect(executor.actions).To(BeEmpty())
		Expect(view.renders()).To(HaveLen(1))
	})

	It("applies concurrent actions one after another", func() {
		review.NewSession(ctx, "/project", report, view, deps)
		var wg sync.WaitGroup
		for _, f := range []string{"a.ts", "b.ts", "c.ts", "d.ts"} {
			wg.Add(1)
			go func(path string) {
				defer GinkgoRecover()
				defer wg.Done()
				view.send(model.DeleteFile(path))
			}(f)
		}
		wg.Wait()

		Expect(executor.actions).To(HaveLen(4))
		Expect(view.renders()).To(HaveLen(5))
		Expect(view.renders()[4].Applied).To(HaveLen(4))
	})
})

var _ = Describe("Manager", func() {
	It("disposes the previous session when showing a new one", func() {
		executor := &fakeExecutor{}
		m := review.NewManager(review.Deps{Executor: executor})
		first, second := &fakeView{}, &fakeView{}

		s1 := m.Show(context.Background(), "/a", model.EmptyReport(), first)
		s2 := m.Show(context.Background(), "/b", model.EmptyReport(), second)

		Expect(first.disposed).To(Equal(1))
		Expect(s1.State()).To(Equal(review.Closed))
		Expect(m.Current()).To(BeIdenticalTo(s2))

		first.send(model.DeleteFile("x.ts"))
		Expect(executor.actions).To(BeEmpty())

		second.send(model.DeleteFile("x.ts"))
		Expect(executor.actions).To(HaveLen(1))

		m.Close()
		Expect(second.disposed).To(Equal(1))
		Expect(m.Current()).To(BeNil())
	})

	It("opens no session once closed", func() {
		m := review.NewManager(review.Deps{Executor: &fakeExecutor{}})
		m.Close()

		late := &fakeView{}
		Expect(m.Show(context.Background(), "/a", model.EmptyReport(), late)).To(BeNil())
		Expect(late.renders()).To(BeEmpty())
		Expect(late.handler).To(BeNil())
		Expect(late.disposed).To(Equal(1))
		Expect(m.Current()).To(BeNil())
	})
})

var _ = Describe("Quiet", func() {
	It("drops only informational notices", func() {
		r := &recorder{}
		n := review.Quiet(r, false)
		n.Notify(model.Info("Scan complete: 3 issues"))
		n.Notify(model.Warning("File not found: a.ts"))
		Expect(r.notices).To(ConsistOf(model.Warning("File not found: a.ts")))
	})
})
