package hooking

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Dispatch", func() {
	var (
		base, hooks *HookSet
		calls       []string
	)

	flat := func(tag string) func(*Event) {
		return func(*Event) {
			calls = append(calls, tag)
		}
	}

	around := func(tag string) func(*Event) (any, error) {
		return func(ev *Event) (any, error) {
			calls = append(calls, tag)
			return ev.Advance()
		}
	}

	BeforeEach(func() {
		calls = nil
		base = NewHookSet()
		base.Declare("write", "path")
		hooks = base.DeepCopy()
	})

	add := func(s *HookSet, name string, fn any) {
		h, err := s.Get(name)
		Expect(err).NotTo(HaveOccurred())
		_, err = h.Add(Basic, fn)
		Expect(err).NotTo(HaveOccurred())
	}

	Context("in flat mode", func() {
		It("should run ancestors first, each in ascending order", func() {
			add(base, "write", flat("a0"))
			add(base, "write", flat("a1"))
			add(hooks, "write", flat("b0"))
			add(hooks, "write", flat("b1"))

			Expect(Raise(nil, hooks, "write", "a.txt")).To(Succeed())

			Expect(calls).To(Equal([]string{"a0", "a1", "b0", "b1"}))
		})

		It("should run wildcard callbacks before the named hook", func() {
			add(hooks, "write", flat("named"))
			add(hooks, Wildcard, flat("wild"))
			add(base, Wildcard, flat("base-wild"))

			Expect(Raise(nil, hooks, "write", "a.txt")).To(Succeed())

			Expect(calls).To(Equal([]string{"base-wild", "wild", "named"}))
		})

		It("should report unknown hooks", func() {
			Expect(Raise(nil, hooks, "missing")).To(MatchError(ErrNotFound))
		})

		It("should abort on the first error", func() {
			failure := errors.New("disk full")

			add(hooks, "write", flat("b0"))
			add(hooks, "write", func(*Event) error { return failure })
			add(hooks, "write", flat("b2"))

			err := Raise(nil, hooks, "write", "a.txt")

			Expect(err).To(MatchError(failure))
			Expect(calls).To(Equal([]string{"b0"}))

			var cbErr *CallbackError
			Expect(errors.As(err, &cbErr)).To(BeTrue())
			Expect(cbErr.Hook).To(Equal("write"))
			Expect(cbErr.Handle).To(Equal(Handle("1")))
			Expect(cbErr.Error()).To(Equal(
				`callback "1" of hook "write": disk full`))
		})

		It("should pass the arguments to External callbacks", func() {
			var got []string

			h, _ := hooks.Get("write")
			_, err := h.Add(External, func(path string) {
				got = append(got, path)
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = h.Add(External, func(ev *Event, path string) {
				got = append(got, ev.Name()+":"+path)
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(Raise(nil, hooks, "write", "a.txt")).To(Succeed())

			Expect(got).To(Equal([]string{"a.txt", "write:a.txt"}))
		})

		It("should report arguments of the wrong type", func() {
			h, _ := hooks.Get("write")
			_, _ = h.Add(External, func(path string) {})

			Expect(Raise(nil, hooks, "write", 42)).To(MatchError(ErrArgumentType))
		})

		It("should report a raise with the wrong number of arguments", func() {
			h, _ := hooks.Get("write")
			_, _ = h.Add(External, func(path string) {})

			Expect(Raise(nil, hooks, "write", "a", "b")).
				To(MatchError(ErrArityMismatch))
		})

		It("should pass zero values for nil arguments", func() {
			var got *int

			h, _ := hooks.Get("write")
			_, _ = h.Add(External, func(p *int) { got = p })

			n := 1
			got = &n

			Expect(Raise(nil, hooks, "write", nil)).To(Succeed())
			Expect(got).To(BeNil())
		})

		It("should not let callbacks advance", func() {
			add(hooks, "write", around("b0"))

			Expect(func() { _ = Raise(nil, hooks, "write", "a.txt") }).
				To(PanicWith(MatchError(ErrNotChained)))
		})

		It("should not recover panics", func() {
			add(hooks, "write", func(*Event) { panic("boom") })

			Expect(func() { _ = Raise(nil, hooks, "write", "a.txt") }).
				To(PanicWith("boom"))
		})
	})

	Context("in chained mode", func() {
		terminal := func(args ...any) (any, error) {
			calls = append(calls, "terminal")
			return "done", nil
		}

		It("should run descendants first, newest first, terminal last", func() {
			add(base, "write", around("a0"))
			add(base, "write", around("a1"))
			add(hooks, "write", around("b0"))
			add(hooks, "write", around("b1"))

			result, err := RaiseAround(nil, hooks, "write", terminal, "a.txt")

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("done"))
			Expect(calls).To(Equal(
				[]string{"b1", "b0", "a1", "a0", "terminal"}))
		})

		It("should run wildcard callbacks before the named hook", func() {
			add(hooks, "write", around("named"))
			add(hooks, Wildcard, around("wild"))

			_, err := RaiseAround(nil, hooks, "write", terminal, "a.txt")

			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal([]string{"wild", "named", "terminal"}))
		})

		It("should call only the terminal without callbacks", func() {
			result, err := RaiseAround(nil, hooks, "write", terminal, "a.txt")

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("done"))
			Expect(calls).To(Equal([]string{"terminal"}))
		})

		It("should stop when a callback does not advance", func() {
			add(hooks, "write", around("b0"))
			add(hooks, "write", func(*Event) (any, error) {
				calls = append(calls, "b1")
				return "short-circuit", nil
			})

			result, err := RaiseAround(nil, hooks, "write", terminal, "a.txt")

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("short-circuit"))
			Expect(calls).To(Equal([]string{"b1"}))
		})

		It("should replace the arguments given to Advance", func() {
			var seen []any

			add(hooks, "write", func(ev *Event) (any, error) {
				seen = append(seen, ev.Args()...)
				return ev.Advance()
			})
			add(hooks, "write", func(ev *Event) (any, error) {
				return ev.Advance("b.txt")
			})

			result, err := RaiseAround(nil, hooks, "write",
				func(args ...any) (any, error) {
					return args[0], nil
				}, "a.txt")

			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal([]any{"b.txt"}))
			Expect(result).To(Equal("b.txt"))
		})

		It("should let callbacks wrap the result", func() {
			add(hooks, "write", func(ev *Event) (any, error) {
				r, err := ev.Advance()
				return r.(string) + "!", err
			})

			result, err := RaiseAround(nil, hooks, "write", terminal, "a.txt")

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("done!"))
		})

		It("should share the chain among the events of a raise", func() {
			var ids []string

			add(hooks, "write", func(ev *Event) (any, error) {
				ids = append(ids, ev.ID())
				return ev.Advance()
			})
			add(hooks, "write", func(ev *Event) (any, error) {
				ids = append(ids, ev.ID())
				Expect(ev.Recursive()).To(BeTrue())
				Expect(ev.Remaining()).To(Equal(2))
				return ev.Advance()
			})

			_, err := RaiseAround(nil, hooks, "write", terminal, "a.txt")

			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(HaveLen(2))
			Expect(ids[0]).To(Equal(ids[1]))
		})

		It("should skip a link when a callback advances twice", func() {
			add(hooks, "write", around("b0"))
			add(hooks, "write", func(ev *Event) (any, error) {
				calls = append(calls, "b1")
				_, _ = ev.Advance()
				return ev.Advance()
			})

			Expect(func() {
				_, _ = RaiseAround(nil, hooks, "write", terminal, "a.txt")
			}).To(PanicWith(MatchError(ErrChainExhausted)))

			Expect(calls).To(Equal([]string{"b1", "b0", "terminal"}))
		})

		It("should propagate terminal errors", func() {
			failure := errors.New("write failed")
			add(hooks, "write", around("b0"))

			_, err := RaiseAround(nil, hooks, "write",
				func(...any) (any, error) { return nil, failure }, "a.txt")

			Expect(err).To(MatchError(failure))

			var cbErr *CallbackError
			Expect(errors.As(err, &cbErr)).To(BeTrue())
			Expect(cbErr.Handle).To(BeEmpty())
		})

		It("should report the innermost failing callback", func() {
			failure := errors.New("denied")
			add(hooks, "write", func(*Event) (any, error) { return nil, failure })
			add(hooks, "write", around("b1"))

			_, err := RaiseAround(nil, hooks, "write", terminal, "a.txt")

			var cbErr *CallbackError
			Expect(errors.As(err, &cbErr)).To(BeTrue())
			Expect(cbErr.Handle).To(Equal(Handle("0")))
		})

		It("should fall back to flat mode without a terminal", func() {
			add(hooks, "write", flat("b0"))

			result, err := RaiseAround(nil, hooks, "write", nil, "a.txt")

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeNil())
			Expect(calls).To(Equal([]string{"b0"}))
		})

		It("should report unknown hooks", func() {
			_, err := RaiseAround(nil, hooks, "missing", terminal)

			Expect(err).To(MatchError(ErrNotFound))
		})
	})
})
