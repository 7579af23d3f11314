package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// A missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	var verbose bool

	root := &cobra.Command{
		Use:     "reelgate",
		Short:   "Reelgate — budget-guarded video generation",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newGenerateCmd(),
		newEstimateCmd(),
		newBudgetCmd(),
		newLedgerCmd(),
		newPollCmd(),
		newMCPCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
