package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hookr/hooking"
	"github.com/sarchlab/hookr/manifest"
)

var showCmd = &cobra.Command{
	Use:   "show [manifest]",
	Short: "Print the type tree of a hook manifest.",
	Long: "`show [manifest]` prints every type under its base type, with " +
		"the hooks it declares and the number of hooks it inherits.",
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		m, types := mustBuild(args[0])

		for _, root := range m.Roots() {
			printType(os.Stdout, m, types, root, 0)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func mustBuild(path string) (*manifest.Manifest, map[string]*hooking.Type) {
	m, err := manifest.Load(path)
	if err != nil {
		fatalf("Error loading manifest: %v", err)
	}

	types, err := m.Build()
	if err != nil {
		fatalf("Error building types: %v", err)
	}

	return m, types
}

func printType(
	w io.Writer,
	m *manifest.Manifest,
	types map[string]*hooking.Type,
	name string,
	depth int,
) {
	indent := strings.Repeat("  ", depth)

	inherited := 0
	for _, h := range types[name].Hooks() {
		if h.Inherited {
			inherited++
		}
	}

	fmt.Fprintf(w, "%s%s (%d inherited hooks)\n", indent, name, inherited)

	for _, h := range types[name].Hooks() {
		if h.Inherited {
			continue
		}

		fmt.Fprintf(w, "%s  - %s(%s)\n",
			indent, h.Name, strings.Join(h.Params, ", "))
	}

	for _, derived := range m.Derived(name) {
		printType(w, m, types, derived, depth+1)
	}
}
