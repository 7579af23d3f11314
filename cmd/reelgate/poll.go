package main

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
)

func newPollCmd() *cobra.Command {
	var (
		configPath string
		jobID      string
		maxWait    time.Duration
		interval   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll a submitted job until it finishes or the wait elapses",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			if maxWait == 0 {
				maxWait = a.cfg.Poll.MaxWait
			}
			if interval == 0 {
				interval = a.cfg.Poll.Interval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			result, err := a.client.PollUntilTerminal(ctx, jobID, maxWait, interval)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&jobID, "job-id", "", "job id returned by generate")
	cmd.Flags().DurationVar(&maxWait, "max-wait", 0, "total time to wait (default from config)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "time between polls (default from config)")
	_ = cmd.MarkFlagRequired("job-id")

	return cmd
}
