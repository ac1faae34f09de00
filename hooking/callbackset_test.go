package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func handlesOf(cbs []*Callback) []Handle {
	out := make([]Handle, 0, len(cbs))
	for _, cb := range cbs {
		out = append(out, cb.Handle())
	}

	return out
}

var _ = Describe("CallbackSet", func() {
	var (
		s *CallbackSet
	)

	newCallback := func(handle Handle) *Callback {
		return &Callback{handle: handle, variant: Basic, inv: nil}
	}

	BeforeEach(func() {
		s = NewCallbackSet()
	})

	It("should start at index 0", func() {
		Expect(s.Len()).To(Equal(0))
		Expect(s.NextIndex()).To(Equal(0))
	})

	It("should assign increasing indices", func() {
		a := s.Insert(newCallback("a"))
		b := s.Insert(newCallback("b"))

		Expect(a.Index()).To(Equal(0))
		Expect(b.Index()).To(Equal(1))
		Expect(s.NextIndex()).To(Equal(2))
		Expect(handlesOf(s.Snapshot())).To(Equal([]Handle{"a", "b"}))
	})

	It("should replace a callback with the same handle in place", func() {
		s.Insert(newCallback("a"))
		s.Insert(newCallback("b"))

		replacement := newCallback("a")
		replacement.variant = Internal
		kept := s.Insert(replacement)

		Expect(s.Len()).To(Equal(2))
		Expect(kept.Index()).To(Equal(0))
		Expect(kept.Variant()).To(Equal(Internal))
		Expect(handlesOf(s.Snapshot())).To(Equal([]Handle{"a", "b"}))
	})

	It("should not reuse the index of a removed callback", func() {
		s.Insert(newCallback("a"))
		s.Insert(newCallback("b"))

		Expect(s.Remove(Handle("b"))).To(Succeed())
		Expect(s.Remove(Handle("a"))).To(Succeed())
		Expect(s.NextIndex()).To(Equal(0))

		s.Insert(newCallback("a"))
		s.Insert(newCallback("b"))
		Expect(s.Remove(0)).To(Succeed())

		c := s.Insert(newCallback("c"))
		Expect(c.Index()).To(Equal(2))
	})

	It("should look up by handle, string and index", func() {
		s.Insert(newCallback("a"))
		s.Insert(newCallback("b"))

		cb, err := s.Lookup(Handle("b"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cb.Index()).To(Equal(1))

		cb, err = s.Lookup("a")
		Expect(err).NotTo(HaveOccurred())
		Expect(cb.Index()).To(Equal(0))

		cb, err = s.Lookup(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(cb.Handle()).To(Equal(Handle("b")))
	})

	It("should report missing callbacks", func() {
		s.Insert(newCallback("a"))

		_, err := s.Lookup(Handle("x"))
		Expect(err).To(MatchError(ErrNotFound))

		Expect(s.Remove(7)).To(MatchError(ErrNotFound))
	})

	It("should reject keys of other types", func() {
		Expect(s.Remove(1.5)).To(MatchError(ErrInvalidKeyType))
		Expect(s.Remove(nil)).To(MatchError(ErrInvalidKeyType))
	})

	It("should iterate in both directions", func() {
		for _, h := range []Handle{"a", "b", "c"} {
			s.Insert(newCallback(h))
		}

		var forward, backward []Handle

		Expect(s.Each(func(cb *Callback) bool {
			forward = append(forward, cb.Handle())
			return true
		})).To(BeTrue())

		Expect(s.EachReverse(func(cb *Callback) bool {
			backward = append(backward, cb.Handle())
			return true
		})).To(BeTrue())

		Expect(forward).To(Equal([]Handle{"a", "b", "c"}))
		Expect(backward).To(Equal([]Handle{"c", "b", "a"}))
	})

	It("should stop iterating when visit returns false", func() {
		for _, h := range []Handle{"a", "b", "c"} {
			s.Insert(newCallback(h))
		}

		visited := 0
		Expect(s.Each(func(*Callback) bool {
			visited++
			return visited < 2
		})).To(BeFalse())
		Expect(visited).To(Equal(2))
	})

	It("should clear", func() {
		s.Insert(newCallback("a"))
		s.Clear()

		Expect(s.Len()).To(Equal(0))
		_, ok := s.Get("a")
		Expect(ok).To(BeFalse())
	})
})
