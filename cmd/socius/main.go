package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "socius",
		Short: "Subjective multi-agent social simulation",
		Long: "socius runs a population of agents whose internal states are private:\n" +
			"every agent acts on distorted perceptions of what the others merely appear\n" +
			"to be. The run is observable over HTTP and snapshots to SQLite.",
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newInspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
