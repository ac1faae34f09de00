package manifest

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const documents = `
types:
  - name: report
    base: document
    hooks:
      - name: publish
        params: [channel]
  - name: document
    hooks:
      - name: beforeSave
        params: [doc]
      - name: write
        params: [data, offset]
`

var _ = Describe("Manifest", func() {
	It("should parse types and hooks", func() {
		m, err := Parse([]byte(documents))

		Expect(err).NotTo(HaveOccurred())
		Expect(m.Types).To(HaveLen(2))
		Expect(m.Roots()).To(Equal([]string{"document"}))
		Expect(m.Derived("document")).To(Equal([]string{"report"}))

		decl, ok := m.Type("document")
		Expect(ok).To(BeTrue())
		Expect(decl.Hooks[1]).To(Equal(HookDecl{
			Name:   "write",
			Params: []string{"data", "offset"},
		}))
	})

	It("should build bases before derived types", func() {
		m, err := Parse([]byte(documents))
		Expect(err).NotTo(HaveOccurred())

		types, err := m.Build()

		Expect(err).NotTo(HaveOccurred())
		Expect(types).To(HaveLen(2))
		Expect(types["report"].Base()).To(BeIdenticalTo(types["document"]))
		Expect(types["report"].HookSet().Names()).To(
			Equal([]string{"beforeSave", "write", "publish"}))
		Expect(types["document"].HookSet().Names()).To(
			Equal([]string{"beforeSave", "write"}))

		h, err := types["report"].Hook("write")
		Expect(err).NotTo(HaveOccurred())
		Expect(h.IsRoot()).To(BeFalse())
	})

	It("should accept an inherited hook redeclared with the same params", func() {
		m, err := Parse([]byte(`
types:
  - name: a
    hooks: [{name: x, params: [p]}]
  - name: b
    base: a
    hooks: [{name: x, params: [p]}]
`))
		Expect(err).NotTo(HaveOccurred())

		types, err := m.Build()
		Expect(err).NotTo(HaveOccurred())

		h, err := types["b"].Hook("x")
		Expect(err).NotTo(HaveOccurred())
		Expect(h.IsRoot()).To(BeFalse())
		Expect(h.Params()).To(Equal([]string{"p"}))
	})

	It("should load a manifest from a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "hooks.yaml")
		Expect(os.WriteFile(path, []byte(documents), 0o600)).To(Succeed())

		m, err := Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(m.Types).To(HaveLen(2))
	})

	It("should report missing files", func() {
		_, err := Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))

		Expect(err).To(HaveOccurred())
	})

	It("should report malformed YAML", func() {
		_, err := Parse([]byte("types: [name: {"))

		Expect(err).To(HaveOccurred())
		Expect(err).NotTo(MatchError(ErrInvalid))
	})

	DescribeTable("should reject invalid manifests",
		func(doc, msg string) {
			_, err := Parse([]byte(doc))

			Expect(err).To(MatchError(ErrInvalid))
			Expect(err.Error()).To(ContainSubstring(msg))
		},
		Entry("unnamed type", `
types:
  - hooks: [{name: a}]
`, "type #0 has no name"),
		Entry("duplicated type", `
types:
  - name: a
  - name: a
`, `type "a" declared twice`),
		Entry("unknown base", `
types:
  - name: a
    base: b
`, `derives from unknown type "b"`),
		Entry("derivation cycle", `
types:
  - name: a
    base: b
  - name: b
    base: a
`, "derivation cycle"),
		Entry("self derivation", `
types:
  - name: a
    base: a
`, "derivation cycle"),
		Entry("inherited hook with other params", `
types:
  - name: a
    hooks: [{name: x, params: [p]}]
  - name: b
    base: a
  - name: c
    base: b
    hooks: [{name: x, params: [p, q]}]
`, `type "c" redeclares hook "x" of type "a"`),
		Entry("unnamed hook", `
types:
  - name: a
    hooks: [{params: [x]}]
`, `hook #0 of type "a" has no name`),
		Entry("duplicated hook", `
types:
  - name: a
    hooks: [{name: x}, {name: x}]
`, `declares hook "x" twice`),
		Entry("wildcard hook", `
types:
  - name: a
    hooks: [{name: "*"}]
`, "reserved hook"),
	)
})
