package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aventine/socius/internal/persistence"
)

func newInspectCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the latest snapshot in a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			runID, seed, err := db.LatestRun()
			if err != nil {
				return err
			}
			if runID == "" {
				fmt.Println("no runs in database")
				return nil
			}

			state, err := db.LoadState(runID)
			if err != nil {
				return err
			}

			fmt.Printf("run:        %s\n", runID)
			fmt.Printf("seed:       %d\n", seed)
			fmt.Printf("tick:       %d (sim-day %.1f)\n", state.Tick, float64(state.Tick)/1440)
			fmt.Printf("agents:     %d\n", len(state.Agents))
			fmt.Printf("beliefs:    %d\n", len(state.Beliefs))
			fmt.Printf("relations:  %d\n", len(state.Relations))

			var acute, chronic float64
			traumatized := 0
			for _, a := range state.Agents {
				acute += a.Stress.Acute
				chronic += a.Stress.Chronic
				if a.Stress.Phase.String() == "post_traumatic" {
					traumatized++
				}
			}
			if n := float64(len(state.Agents)); n > 0 {
				fmt.Printf("avg acute stress:   %.3f\n", acute/n)
				fmt.Printf("avg chronic stress: %.3f\n", chronic/n)
				fmt.Printf("post-traumatic:     %d\n", traumatized)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "socius.db", "SQLite snapshot path")
	return cmd
}
