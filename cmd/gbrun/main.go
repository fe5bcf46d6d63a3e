// Command gbrun drives a ROM headlessly, watching its serial output for a
// pass/fail marker. It replaces ad hoc flag-parsing with a small, scriptable
// CLI surface (subcommands, --long/-short flags) for CI use.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gbrun",
		Short: "Headless Game Boy ROM runner",
	}
	root.AddCommand(newRunCmd())
	return root
}

func init() {
	log.SetFlags(0)
}
