package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guadaltel/etf-result-checker/internal/ddt"
)

var runJSONOutput bool

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runJSONOutput, "json", false, "print the report as JSON")
}

var runCmd = &cobra.Command{
	Use:   "run [suite-directory]",
	Short: "Run all data-driven test suites, or a single suite directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		runner := ddt.NewRunner(client, ddt.NewClientCatalog(client), client)

		ctx := cmd.Context()
		var report *ddt.Report
		if len(args) == 1 {
			report, err = runner.RunOne(ctx, args[0])
		} else {
			report, err = runner.RunAll(ctx, cfg.Suites.Dir)
		}
		if err != nil {
			return err
		}

		if runJSONOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			printReport(report)
		}

		if report.Failed() {
			return fmt.Errorf("test run failed")
		}
		return nil
	},
}

// printReport writes the human-readable report.
func printReport(report *ddt.Report) {
	for _, suite := range report.Suites {
		switch {
		case suite.Error != "":
			fmt.Fprintf(os.Stdout, "FAIL  %s: %s\n", suite.Name, suite.Error)
		case suite.Generated:
			fmt.Fprintf(os.Stdout, "GEN   %s: expectation template generated\n", suite.Name)
		default:
			fmt.Fprintf(os.Stdout, "SUITE %s\n", suite.Name)
			for _, c := range suite.Cases {
				if c.Passed {
					fmt.Fprintf(os.Stdout, "  ok    %s (%dms)\n", c.Label, c.Elapsed.Milliseconds())
				} else {
					fmt.Fprintf(os.Stdout, "  FAIL  %s: %s\n", c.Label, c.Failure)
				}
			}
		}
	}

	total, failed := report.Counts()
	fmt.Fprintf(os.Stdout, "%d test case(s), %d failed\n", total, failed)
}
