package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/reelgate/reelgate/pkg/models"
	"github.com/reelgate/reelgate/pkg/retry"
)

func newGenerateCmd() *cobra.Command {
	var (
		configPath string
		prompt     string
		duration   float64
		tier       string
		aspect     string
		style      string
		wait       bool
		dryRun     bool
		retries    uint64
		fallback   []string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Submit a budget-checked video generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			req := models.GenerationRequest{
				Prompt:          prompt,
				DurationSeconds: duration,
				Tier:            models.Tier(tier),
				Aspect:          models.AspectRatio(aspect),
				Style:           models.Style(style),
			}
			if a.cfg.MaxDuration > 0 && duration > a.cfg.MaxDuration {
				return fmt.Errorf("duration %gs exceeds the service maximum of %gs", duration, a.cfg.MaxDuration)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if dryRun {
				decision, err := a.client.Preview(ctx, req)
				if err != nil {
					return err
				}
				fmt.Printf("Estimated cost: %s\n", decision.Estimate)
				if decision.Approved {
					fmt.Printf("Would be approved (%s remaining)\n", decision.Remaining)
				} else {
					fmt.Printf("Would be rejected: short by %s (%s remaining)\n", decision.Shortfall, decision.Remaining)
				}
				return nil
			}

			var result models.GenerationResult
			if retries > 0 || len(fallback) > 0 {
				opts := retry.DefaultOptions()
				if retries > 0 {
					opts.MaxRetries = retries
				}
				for _, t := range fallback {
					opts.TierFallback = append(opts.TierFallback, models.Tier(t))
				}
				result, err = retry.Generate(ctx, a.client, req, opts, a.log)
			} else {
				result, err = a.client.Generate(ctx, req)
			}
			if err != nil {
				return err
			}

			fmt.Printf("Submitted job %s (status: %s)\n", result.JobID, result.Status)

			if wait {
				final, err := a.client.PollUntilTerminal(ctx, result.JobID, a.cfg.Poll.MaxWait, a.cfg.Poll.Interval)
				if err != nil {
					return err
				}
				printResult(final)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&prompt, "prompt", "", "video prompt text")
	cmd.Flags().Float64Var(&duration, "duration", 90, "video duration in seconds")
	cmd.Flags().StringVar(&tier, "tier", "medium", "quality tier: low, medium, high")
	cmd.Flags().StringVar(&aspect, "aspect", string(models.AspectWidescreen), "aspect ratio: 16:9, 1:1, 9:16")
	cmd.Flags().StringVar(&style, "style", "", "style preset (optional)")
	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the job finishes")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "estimate and check budget without generating")
	cmd.Flags().Uint64Var(&retries, "retries", 0, "retry attempts on transport failure")
	cmd.Flags().StringSliceVar(&fallback, "fallback-tier", nil, "cheaper tiers to try if the budget rejects the request")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func printResult(r models.GenerationResult) {
	switch r.Status {
	case models.JobCompleted:
		fmt.Printf("Job %s completed: %s\n", r.JobID, r.OutputRef)
	case models.JobFailed:
		fmt.Printf("Job %s failed\n", r.JobID)
	default:
		fmt.Printf("Job %s still pending; poll again later with: reelgate poll --job-id %s\n", r.JobID, r.JobID)
	}
}
