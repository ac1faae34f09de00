package tracing

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/hookr/hooking"
)

var _ = Describe("CollectTrace", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		docType  *hooking.Type
		doc      *hooking.Entity
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)

		docType = hooking.NewType("Document")
		docType.DeclareHook("write", "path")
		docType.DeclareHook("flush")

		doc = docType.NewEntity("doc", nil)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic if the tracer is attached twice", func() {
		CollectTrace(doc, tracer)

		Expect(func() { CollectTrace(doc, tracer) }).To(Panic())
	})

	It("should allow different tracers", func() {
		CollectTrace(doc, tracer)
		CollectTrace(doc, NewMockTracer(mockCtrl))

		Expect(doc.NumProbes()).To(Equal(2))
	})

	It("should trace a flat raise", func() {
		_, _ = docType.AddBasic("write", func(*hooking.Event) {},
			hooking.WithHandle("audit"))
		_, _ = docType.AddBasic("write", func(*hooking.Event) {})

		var started, step1, step2, ended Task

		gomock.InOrder(
			tracer.EXPECT().StartTask(gomock.Any()).
				Do(func(t Task) { started = t }),
			tracer.EXPECT().StepTask(gomock.Any()).
				Do(func(t Task) { step1 = t }),
			tracer.EXPECT().StepTask(gomock.Any()).
				Do(func(t Task) { step2 = t }),
			tracer.EXPECT().EndTask(gomock.Any()).
				Do(func(t Task) { ended = t }),
		)

		CollectTrace(doc, tracer)
		Expect(doc.Raise("write", "a.txt")).To(Succeed())

		Expect(started.ID).NotTo(BeEmpty())
		Expect(started.ParentID).To(BeEmpty())
		Expect(started.Kind).To(Equal(KindFlat))
		Expect(started.What).To(Equal("write"))
		Expect(started.Where).To(Equal("doc"))

		Expect(step1.ID).To(Equal(started.ID))
		Expect(step1.Steps).To(HaveLen(1))
		Expect(step1.Steps[0].What).To(Equal("audit"))
		Expect(step2.Steps[0].What).To(Equal("1"))

		Expect(ended.ID).To(Equal(started.ID))
		Expect(ended.Err()).To(BeNil())
	})

	It("should trace the terminal of a chained raise", func() {
		var kind string
		var steps []string

		tracer.EXPECT().StartTask(gomock.Any()).
			Do(func(t Task) { kind = t.Kind })
		tracer.EXPECT().StepTask(gomock.Any()).
			Do(func(t Task) { steps = append(steps, t.Steps[0].What) }).
			Times(2)
		tracer.EXPECT().EndTask(gomock.Any())

		_, _ = docType.AddBasic("write", func(ev *hooking.Event) (any, error) {
			return ev.Advance()
		}, hooking.WithHandle("wrap"))

		CollectTrace(doc, tracer)
		_, err := doc.RaiseAround("write",
			func(...any) (any, error) { return nil, nil }, "a.txt")

		Expect(err).NotTo(HaveOccurred())
		Expect(kind).To(Equal(KindAround))
		Expect(steps).To(Equal([]string{"wrap", StepTerminal}))
	})

	It("should report the error of a failed raise", func() {
		failure := errors.New("failed")
		_, _ = docType.AddBasic("write",
			func(*hooking.Event) error { return failure })

		var ended Task

		tracer.EXPECT().StartTask(gomock.Any())
		tracer.EXPECT().StepTask(gomock.Any())
		tracer.EXPECT().EndTask(gomock.Any()).Do(func(t Task) { ended = t })

		CollectTrace(doc, tracer)
		Expect(doc.Raise("write", "a.txt")).To(HaveOccurred())

		Expect(ended.Err()).To(MatchError(failure))
	})

	It("should make nested raises subtasks", func() {
		_, _ = docType.AddBasic("write", func(ev *hooking.Event) error {
			return doc.Raise("flush")
		})

		var started []Task

		tracer.EXPECT().StartTask(gomock.Any()).
			Do(func(t Task) { started = append(started, t) }).
			Times(2)
		tracer.EXPECT().StepTask(gomock.Any())
		tracer.EXPECT().EndTask(gomock.Any()).Times(2)

		CollectTrace(doc, tracer)
		Expect(doc.Raise("write", "a.txt")).To(Succeed())

		Expect(started).To(HaveLen(2))
		Expect(started[1].What).To(Equal("flush"))
		Expect(started[1].ParentID).To(Equal(started[0].ID))
	})

	It("should trace through the type", func() {
		other := docType.NewEntity("other", nil)

		var where []string

		tracer.EXPECT().StartTask(gomock.Any()).
			Do(func(t Task) { where = append(where, t.Where) }).
			Times(2)
		tracer.EXPECT().EndTask(gomock.Any()).Times(2)

		CollectTrace(docType, tracer)
		Expect(doc.Raise("flush")).To(Succeed())
		Expect(other.Raise("flush")).To(Succeed())

		Expect(where).To(Equal([]string{"doc", "other"}))
	})
})
