package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBudgetCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Inspect the monthly spending budget",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show spend vs the monthly limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := a.client.Summary(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PERIOD START\tLIMIT\tSPENT\tREMAINING\tUSED\tATTEMPTS\tREJECTED")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\t%d\t%d\n",
				s.PeriodStart.Format("2006-01-02"),
				s.MonthlyLimit, s.Spent, s.Remaining, s.UsedPercent,
				s.EntryCount, s.RejectedCount)
			return w.Flush()
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.AddCommand(statusCmd)
	return cmd
}
