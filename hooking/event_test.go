package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Event", func() {
	var (
		ev *Event
	)

	BeforeEach(func() {
		ev = newEvent("src", "write", []any{"a.txt", 42}, false)
	})

	It("should carry source, name and args", func() {
		Expect(ev.Source()).To(Equal("src"))
		Expect(ev.Name()).To(Equal("write"))
		Expect(ev.Args()).To(Equal([]any{"a.txt", 42}))
		Expect(ev.Recursive()).To(BeFalse())
		Expect(ev.ID()).NotTo(BeEmpty())
		Expect(ev.Remaining()).To(Equal(0))
	})

	It("should not expose its args for mutation", func() {
		args := ev.Args()
		args[0] = "changed"

		Expect(ev.Args()[0]).To(Equal("a.txt"))
	})

	It("should not alias the raise arguments", func() {
		args := []any{"x"}
		e := newEvent(nil, "write", args, false)
		args[0] = "y"

		Expect(e.Args()).To(Equal([]any{"x"}))
	})

	DescribeTable("converting to callback arguments",
		func(arity int, expected func(*Event) []any) {
			args, err := ev.ToArgs(arity)

			Expect(err).NotTo(HaveOccurred())
			Expect(args).To(Equal(expected(ev)))
		},
		Entry("any arity", ArityAny, func(e *Event) []any {
			return []any{e, "a.txt", 42}
		}),
		Entry("one more than the args", 3, func(e *Event) []any {
			return []any{e, "a.txt", 42}
		}),
		Entry("exactly the args", 2, func(*Event) []any {
			return []any{"a.txt", 42}
		}),
	)

	It("should never produce a subset of the args", func() {
		_, err := ev.ToArgs(1)
		Expect(err).To(MatchError(ErrArityMismatch))

		_, err = ev.ToArgs(4)
		Expect(err).To(MatchError(ErrArityMismatch))
	})

	It("should panic when advanced in flat mode", func() {
		Expect(func() { _, _ = ev.Advance() }).To(PanicWith(MatchError(ErrNotChained)))
	})

	It("should describe itself", func() {
		Expect(ev.String()).To(Equal("write(flat [a.txt 42])"))
	})
})
