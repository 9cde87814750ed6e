package server

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/jonathan/resume-lens/internal/anim"
	"github.com/jonathan/resume-lens/internal/client"
	"github.com/jonathan/resume-lens/internal/controller"
	"github.com/jonathan/resume-lens/internal/rendering"
	"github.com/jonathan/resume-lens/internal/submission"
	"go.uber.org/zap"
)

// pageView records controller output into a page that is rendered once the
// submission settles.
type pageView struct {
	page *rendering.Page
}

func newPageView() *pageView {
	return &pageView{page: newFormPage()}
}

// newFormPage is the initial page: form visible, nothing entered.
func newFormPage() *rendering.Page {
	return &rendering.Page{
		ShowForm:    true,
		JobCount:    submission.CharCount(""),
		ResumeCount: submission.CharCount(""),
		Steps:       controller.StepsAt(-1),
	}
}

func (v *pageView) SetCharCount(target controller.Target, label string) {
	switch target {
	case controller.TargetJobDescription:
		v.page.JobCount = label
	case controller.TargetResumeText:
		v.page.ResumeCount = label
	}
}

func (v *pageView) SetFileIndicator(label string) { v.page.FileIndicator = label }
func (v *pageView) SetDragOver(bool)              {}

func (v *pageView) Shake(target controller.Target) {
	v.page.ShakeTargets = append(v.page.ShakeTargets, string(target))
}

func (v *pageView) Focus(target controller.Target) { v.page.Focus = string(target) }

func (v *pageView) SetPanels(p controller.Panels) {
	v.page.ShowForm = p.Form
	v.page.ShowLoading = p.Loading
	v.page.ShowError = p.Error
	v.page.ShowResults = p.Results
}

func (v *pageView) SetSubmitEnabled(enabled bool)          { v.page.SubmitDisabled = !enabled }
func (v *pageView) SetSteps(steps []rendering.Step)        { v.page.Steps = steps }
func (v *pageView) ShowError(message string)               { v.page.ErrorMessage = message }
func (v *pageView) RenderResults(report *rendering.Report) { v.page.Report = report }
func (v *pageView) ScrollTo(controller.Target)             {}

// statePayload is the data of a "state" event.
type statePayload struct {
	Panels        controller.Panels `json:"panels"`
	SubmitEnabled bool              `json:"submit_enabled"`
}

// sseView streams controller output to the browser. The browser updates
// char counters, the file indicator and the drag affordance itself, so
// those calls send nothing.
type sseView struct {
	ctx         context.Context
	sse         *SSEWriter
	logger      *zap.Logger
	frameTicker func(time.Duration) controller.Ticker

	state statePayload
	wg    sync.WaitGroup
}

func newSSEView(ctx context.Context, sse *SSEWriter, logger *zap.Logger, frameTicker func(time.Duration) controller.Ticker) *sseView {
	return &sseView{
		ctx:         ctx,
		sse:         sse,
		logger:      logger,
		frameTicker: frameTicker,
		state:       statePayload{Panels: controller.Panels{Form: true}, SubmitEnabled: true},
	}
}

func (v *sseView) send(event string, data any) {
	if err := v.sse.WriteEvent(event, data); err != nil {
		v.logger.Debug("sse write failed", zap.String("event", event), zap.Error(err))
	}
}

func (v *sseView) SetCharCount(controller.Target, string) {}
func (v *sseView) SetFileIndicator(string)                {}
func (v *sseView) SetDragOver(bool)                       {}

func (v *sseView) Shake(target controller.Target) { v.send("shake", target) }
func (v *sseView) Focus(target controller.Target) { v.send("focus", target) }

func (v *sseView) SetPanels(p controller.Panels) {
	v.state.Panels = p
	v.send("state", v.state)
}

func (v *sseView) SetSubmitEnabled(enabled bool) {
	v.state.SubmitEnabled = enabled
	v.send("state", v.state)
}

func (v *sseView) SetSteps(steps []rendering.Step) { v.send("steps", steps) }
func (v *sseView) ShowError(message string)        { v.sse.WriteError(message) }
func (v *sseView) ScrollTo(target controller.Target) {
	v.send("scroll", target)
}

// RenderResults sends the results fragment with the score and bars at zero,
// then plays the count-up and fills the bars.
func (v *sseView) RenderResults(report *rendering.Report) {
	var buf bytes.Buffer
	if err := rendering.RenderResults(&buf, report, true); err != nil {
		v.logger.Error("failed to render results", zap.Error(err))
		v.sse.WriteError(client.MessageUnexpected)
		return
	}
	v.send("results", buf.String())

	bars := make(map[string]float64, len(report.Score.Dimensions))
	for _, d := range report.Score.Dimensions {
		bars[d.Key] = anim.Width(d.Value)
	}

	v.wg.Add(2)
	go func() {
		defer v.wg.Done()
		ticker := v.frameTicker(anim.FrameInterval)
		defer ticker.Stop()
		anim.NewCounter(report.Score.Value).Play(v.ctx, ticker.C(), func(n int) {
			v.send("score", n)
		})
	}()
	go func() {
		defer v.wg.Done()
		timer := time.NewTimer(anim.BarDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
			v.send("bars", bars)
		case <-v.ctx.Done():
		}
	}()
}

// Wait blocks until running animations finish.
func (v *sseView) Wait() {
	v.wg.Wait()
}
