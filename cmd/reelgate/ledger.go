package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reelgate/reelgate/pkg/ledger"
	"github.com/reelgate/reelgate/pkg/models"
	"github.com/reelgate/reelgate/pkg/report"
)

func newLedgerCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Query and export the spend ledger",
	}

	var (
		status string
		limit  int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded generation attempts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := a.ledger.List(cmd.Context(), ledger.ListOpts{
				Status: models.EntryStatus(status),
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No ledger entries found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tDURATION\tTIER\tCOST\tAUTHORIZED\tSTATUS\tJOB ID")
			for _, e := range entries {
				job := e.JobID
				if job == "" {
					job = "-"
				}
				fmt.Fprintf(w, "%s\t%gs\t%s\t%s\t%t\t%s\t%s\n",
					e.CreatedAt.Format("2006-01-02T15:04:05"),
					e.DurationSeconds, e.Tier, e.Amount, e.Authorized, e.Status, job)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "filter by status (approved, rejected, submitted, completed, failed)")
	listCmd.Flags().IntVar(&limit, "limit", 50, "max entries to show")

	var exportPath string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the ledger to a line-delimited JSON report",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := report.WriteFile(cmd.Context(), exportPath, a.ledger)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d entries to %s\n", n, exportPath)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&exportPath, "out", "reelgate-report.jsonl", "report file to write")

	var importPath string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Restore a report into the ledger database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := report.RestoreFile(cmd.Context(), a.ledger, importPath)
			if err != nil {
				return err
			}
			fmt.Printf("Restored %d entries from %s\n", n, importPath)
			return nil
		},
	}
	importCmd.Flags().StringVar(&importPath, "in", "", "report file to read")
	_ = importCmd.MarkFlagRequired("in")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.AddCommand(listCmd, exportCmd, importCmd)
	return cmd
}
