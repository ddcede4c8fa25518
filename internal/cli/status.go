package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the remote validation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if !client.Available(cmd.Context()) {
			return fmt.Errorf("endpoint %s is not available", cfg.Endpoint.URL)
		}
		fmt.Fprintf(os.Stdout, "endpoint available (session %s)\n", client.SessionID())
		return nil
	},
}
