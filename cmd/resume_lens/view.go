package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jonathan/resume-lens/internal/anim"
	"github.com/jonathan/resume-lens/internal/controller"
	"github.com/jonathan/resume-lens/internal/observability"
	"github.com/jonathan/resume-lens/internal/rendering"
	"github.com/mattn/go-isatty"
)

// fieldLabels names the inputs a validation failure points at.
var fieldLabels = map[controller.Target]string{
	controller.TargetJobDescription: "job description (--job or --job-text)",
	controller.TargetUploadZone:     "resume (--resume, --resume-text or --resume-text-file)",
}

// terminalView renders controller output as lines of text on errOut, so
// stdout only carries the report.
type terminalView struct {
	ctx     context.Context
	errOut  io.Writer
	printer *observability.Printer
	// animate plays the score count-up on an interactive terminal.
	animate     bool
	frameTicker func(time.Duration) controller.Ticker

	wg sync.WaitGroup
}

func newTerminalView(ctx context.Context, errOut io.Writer, animate bool) *terminalView {
	return &terminalView{
		ctx:         ctx,
		errOut:      errOut,
		printer:     observability.NewPrinter(errOut),
		animate:     animate,
		frameTicker: controller.NewTimeTicker,
	}
}

// isInteractive reports whether w is a terminal.
func isInteractive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (v *terminalView) SetCharCount(controller.Target, string) {}
func (v *terminalView) SetDragOver(bool)                       {}
func (v *terminalView) SetPanels(controller.Panels)            {}
func (v *terminalView) SetSubmitEnabled(bool)                  {}
func (v *terminalView) Focus(controller.Target)                {}
func (v *terminalView) ScrollTo(controller.Target)             {}

//nolint:errcheck // terminal output
func (v *terminalView) SetFileIndicator(label string) {
	fmt.Fprintf(v.errOut, "Resume file: %s\n", label)
}

//nolint:errcheck // terminal output
func (v *terminalView) Shake(target controller.Target) {
	label, ok := fieldLabels[target]
	if !ok {
		label = string(target)
	}
	fmt.Fprintf(v.errOut, "✗ Missing %s\n", label)
}

//nolint:errcheck // terminal output
func (v *terminalView) SetSteps(steps []rendering.Step) {
	fmt.Fprintln(v.errOut)
	v.printer.PrintSteps(steps)
}

func (v *terminalView) ShowError(message string) {
	v.printer.PrintError(message)
}

// RenderResults plays the score count-up on one line. The full report is
// printed by the command once the submission settles.
func (v *terminalView) RenderResults(report *rendering.Report) {
	if !v.animate {
		return
	}

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		ticker := v.frameTicker(anim.FrameInterval)
		defer ticker.Stop()

		anim.NewCounter(report.Score.Value).Play(v.ctx, ticker.C(), func(n int) {
			fmt.Fprintf(v.errOut, "\rScore: %3d", n) //nolint:errcheck
		})
		fmt.Fprintf(v.errOut, "  %s\n\n", report.Score.Label) //nolint:errcheck
	}()
}

// Wait blocks until the count-up has finished.
func (v *terminalView) Wait() {
	v.wg.Wait()
}
