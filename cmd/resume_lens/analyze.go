package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonathan/resume-lens/internal/client"
	"github.com/jonathan/resume-lens/internal/config"
	"github.com/jonathan/resume-lens/internal/controller"
	"github.com/jonathan/resume-lens/internal/logging"
	"github.com/jonathan/resume-lens/internal/observability"
	"github.com/jonathan/resume-lens/internal/rendering"
	"github.com/jonathan/resume-lens/internal/submission"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume against a job description",
	Long: `Submits a job description and a resume (file, pasted text or both) to the analysis endpoint and prints the report.

Configuration can be loaded from a file using --config. Command-line flags override config file values.`,
	RunE: runAnalyze,
}

var (
	analyzeJob            string
	analyzeJobText        string
	analyzeResume         string
	analyzeResumeText     string
	analyzeResumeTextFile string
	analyzeHTMLOut        string
	analyzeJSON           bool
	analyzeEndpoint       string
	analyzeTimeout        time.Duration
	analyzeStrict         bool
	analyzeExtract        bool
	analyzeNoAnimation    bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeJob, "job", "j", "", "Path to the job description text file")
	analyzeCmd.Flags().StringVar(&analyzeJobText, "job-text", "", "Job description text")
	analyzeCmd.Flags().StringVarP(&analyzeResume, "resume", "r", "", "Path to the resume document (PDF, DOCX, DOC or TXT)")
	analyzeCmd.Flags().StringVar(&analyzeResumeText, "resume-text", "", "Resume text")
	analyzeCmd.Flags().StringVar(&analyzeResumeTextFile, "resume-text-file", "", "Path to a file holding the resume text")
	analyzeCmd.Flags().StringVar(&analyzeHTMLOut, "html", "", "Also write the report as an HTML page to this path")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the raw JSON report instead of the formatted one")
	analyzeCmd.Flags().StringVar(&analyzeEndpoint, "endpoint", "", "Analysis endpoint URL (defaults to config)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "Request timeout (0 waits indefinitely)")
	analyzeCmd.Flags().BoolVar(&analyzeStrict, "strict", false, "Validate the response against the report schema")
	analyzeCmd.Flags().BoolVar(&analyzeExtract, "extract-locally", false, "Extract resume text locally and send it instead of the file")
	analyzeCmd.Flags().BoolVar(&analyzeNoAnimation, "no-animation", false, "Disable the score count-up")

	analyzeCmd.MarkFlagsMutuallyExclusive("job", "job-text")
	analyzeCmd.MarkFlagsMutuallyExclusive("resume-text", "resume-text-file")

	rootCmd.AddCommand(analyzeCmd)
}

// analyzeInputs reads the flag inputs and returns them as controller events.
func analyzeInputs() ([]controller.Event, error) {
	jobDescription := analyzeJobText
	if analyzeJob != "" {
		content, err := os.ReadFile(analyzeJob)
		if err != nil {
			return nil, fmt.Errorf("failed to read job description: %w", err)
		}
		jobDescription = string(content)
	}

	resumeText := analyzeResumeText
	if analyzeResumeTextFile != "" {
		content, err := os.ReadFile(analyzeResumeTextFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read resume text: %w", err)
		}
		resumeText = string(content)
	}

	events := []controller.Event{
		controller.EditJobDescription{Text: jobDescription},
		controller.EditResumeText{Text: resumeText},
	}

	if analyzeResume != "" {
		file, err := submission.LoadFile(analyzeResume)
		if err != nil {
			return nil, err
		}
		events = append(events, controller.AssignFile{File: file, Source: controller.SourcePicker})
	}

	return events, nil
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(func(c *config.Config) {
		if analyzeEndpoint != "" {
			c.Endpoint = analyzeEndpoint
		}
		if cmd.Flags().Changed("timeout") {
			c.RequestTimeout = analyzeTimeout
		}
		if analyzeStrict {
			c.StrictSchema = true
		}
		if analyzeExtract {
			c.ExtractLocally = true
		}
	})
	if err != nil {
		return err
	}

	events, err := analyzeInputs()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	analyzer := client.New(cfg.Endpoint, &client.Options{
		Timeout:        cfg.RequestTimeout,
		StrictSchema:   cfg.StrictSchema,
		ExtractLocally: cfg.ExtractLocally,
		Logger:         logger,
	})

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	animate := !analyzeNoAnimation && !analyzeJSON && isInteractive(errOut)
	view := newTerminalView(ctx, errOut, animate)

	outcome, err := controller.RunOnce(ctx, view, analyzer, &controller.Options{
		StepInterval: cfg.StepInterval,
		Logger:       logger,
	}, events...)
	view.Wait()
	if err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}

	return reportOutcome(out, outcome, reportOptions{json: analyzeJSON, html: analyzeHTMLOut})
}

// reportOptions selects the output formats of a successful report.
type reportOptions struct {
	json bool
	html string
}

// reportOutcome prints a settled submission and turns failures into a
// non-zero exit.
func reportOutcome(out io.Writer, outcome controller.Outcome, opts reportOptions) error {
	switch {
	case outcome.Validation != nil:
		return fmt.Errorf("invalid input: %s", outcome.Message)
	case outcome.State == controller.StateError:
		return fmt.Errorf("analysis failed: %s", outcome.Message)
	case outcome.Result == nil || outcome.Report == nil:
		return errors.New(client.MessageUnexpected)
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome.Result); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		observability.NewPrinter(out).PrintReport(outcome.Result)
	}

	if opts.html != "" {
		if err := writeHTMLReport(opts.html, outcome.Report); err != nil {
			return err
		}
	}

	return nil
}

// writeHTMLReport saves the results page with final values.
func writeHTMLReport(path string, report *rendering.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	page := &rendering.Page{ShowResults: true, Report: report, Steps: controller.StepsAt(-1)}
	if err := rendering.RenderPage(f, page); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
