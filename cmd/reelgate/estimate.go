package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reelgate/reelgate/pkg/models"
)

func newEstimateCmd() *cobra.Command {
	var (
		configPath string
		duration   float64
		tier       string
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the cost of a generation without spending anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			req := models.GenerationRequest{
				Prompt:          "(estimate)",
				DurationSeconds: duration,
				Tier:            models.Tier(tier),
			}
			decision, err := a.client.Preview(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Printf("Duration:  %gs at tier %s\n", duration, tier)
			fmt.Printf("Estimate:  %s\n", decision.Estimate)
			fmt.Printf("Remaining: %s\n", decision.Remaining)
			if decision.Approved {
				fmt.Println("Decision:  would be approved")
			} else {
				fmt.Printf("Decision:  would be rejected (short by %s)\n", decision.Shortfall)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().Float64Var(&duration, "duration", 90, "video duration in seconds")
	cmd.Flags().StringVar(&tier, "tier", "medium", "quality tier: low, medium, high")

	return cmd
}
