package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("StepCountTracer", func() {
	var (
		t *StepCountTracer
	)

	step := func(id, what string) Task {
		return Task{ID: id, Steps: []TaskStep{{What: what}}}
	}

	BeforeEach(func() {
		t = NewStepCountTracer(nil)
	})

	It("should count steps and tasks", func() {
		t.StartTask(Task{ID: "1", What: "write"})
		t.StepTask(step("1", "audit"))
		t.StepTask(step("1", "audit"))
		t.StepTask(step("1", "0"))
		t.EndTask(Task{ID: "1"})

		t.StartTask(Task{ID: "2", What: "write"})
		t.StepTask(step("2", "audit"))
		t.EndTask(Task{ID: "2"})

		Expect(t.GetStepNames()).To(Equal([]string{"audit", "0"}))
		Expect(t.GetStepCount("audit")).To(Equal(uint64(3)))
		Expect(t.GetTaskCount("audit")).To(Equal(uint64(2)))
		Expect(t.GetStepCount("0")).To(Equal(uint64(1)))
		Expect(t.GetTaskCount("0")).To(Equal(uint64(1)))
	})

	It("should ignore filtered tasks", func() {
		t = NewStepCountTracer(HookFilter("flush"))

		t.StartTask(Task{ID: "1", What: "write"})
		t.StepTask(step("1", "audit"))

		Expect(t.GetStepNames()).To(BeEmpty())
		Expect(t.GetStepCount("audit")).To(BeZero())
	})
})
