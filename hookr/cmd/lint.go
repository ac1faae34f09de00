package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/hookr/manifest"
)

var lintCmd = &cobra.Command{
	Use:   "lint [manifest]",
	Short: "Validate a hook manifest.",
	Long:  "`lint [manifest]` checks that the manifest can be built.",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		m, err := manifest.Load(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		numHooks := 0
		for _, t := range m.Types {
			numHooks += len(t.Hooks)
		}

		fmt.Printf("%s: %d types, %d hooks, %d root types\n",
			args[0], len(m.Types), numHooks, len(m.Roots()))
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
