package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listTemplatesCmd, listSuitesCmd, listTagsCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List remote catalog entries",
}

var listTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available test run templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		items, err := client.TestRunTemplates().All(cmd.Context())
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Fprintf(os.Stdout, " - %s\n", item)
		}
		return nil
	},
}

var listSuitesCmd = &cobra.Command{
	Use:   "suites",
	Short: "List available executable test suites",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		items, err := client.ExecutableTestSuites().All(cmd.Context())
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Fprintf(os.Stdout, " - %s\n", item)
		}
		return nil
	},
}

var listTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List available tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		items, err := client.Tags().All(cmd.Context())
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Fprintf(os.Stdout, " - %s\n", item)
		}
		return nil
	},
}
