package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/resume-lens/internal/controller"
	"github.com/jonathan/resume-lens/internal/rendering"
	"github.com/jonathan/resume-lens/internal/schemas"
	"github.com/jonathan/resume-lens/internal/types"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <report.json>",
	Short: "Print a saved analysis report",
	Long:  `Validates a report saved with 'analyze --json' against the report schema and prints it, optionally as an HTML page.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var renderHTMLOut string

func init() {
	renderCmd.Flags().StringVar(&renderHTMLOut, "html", "", "Write the report as an HTML page to this path")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	path := args[0]

	if err := schemas.ValidateAnalysisFile(path); err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(content, &result); err != nil {
		return fmt.Errorf("failed to parse report: %w", err)
	}
	if !result.Success {
		message := result.Error
		if message == "" {
			message = "report does not describe a successful analysis"
		}
		return fmt.Errorf("analysis failed: %s", message)
	}

	report, err := rendering.Build(&result)
	if err != nil {
		return err
	}

	return reportOutcome(cmd.OutOrStdout(), controller.Outcome{
		State:  controller.StateResults,
		Result: &result,
		Report: report,
	}, reportOptions{html: renderHTMLOut})
}
