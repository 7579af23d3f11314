package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/reelgate/reelgate/pkg/mcp"
)

func newMCPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve budget and ledger tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := mcp.New(a.guard, a.ledger, version, a.log)
			return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}
