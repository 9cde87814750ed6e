// Package controller owns the submission state machine: it turns user events
// into validation, an analysis request and view updates.
package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jonathan/resume-lens/internal/client"
	"github.com/jonathan/resume-lens/internal/logging"
	"github.com/jonathan/resume-lens/internal/metrics"
	"github.com/jonathan/resume-lens/internal/rendering"
	"github.com/jonathan/resume-lens/internal/submission"
	"github.com/jonathan/resume-lens/internal/types"
	"go.uber.org/zap"
)

// DefaultStepInterval is how long each loading step stays active.
const DefaultStepInterval = 5500 * time.Millisecond

// State is the phase of the page.
type State int32

// Page states.
const (
	StateForm State = iota
	StateLoading
	StateError
	StateResults
)

func (s State) String() string {
	switch s {
	case StateForm:
		return "form"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateResults:
		return "results"
	default:
		return "unknown"
	}
}

// Analyzer submits an input and returns the report.
type Analyzer interface {
	Analyze(ctx context.Context, in submission.Input) (*types.AnalysisResult, error)
}

// Ticker is the subset of *time.Ticker the step indicator needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps a wall-clock time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Outcome is the end of one submit attempt.
type Outcome struct {
	State      State
	Result     *types.AnalysisResult
	Report     *rendering.Report
	Message    string
	Err        error
	Validation *submission.ValidationError
}

// Options configures a Controller.
type Options struct {
	// StepInterval defaults to DefaultStepInterval.
	StepInterval time.Duration
	// NewTicker defaults to a wall-clock ticker.
	NewTicker func(time.Duration) Ticker
	Logger    *zap.Logger
	Metrics   *metrics.Recorder
	// QueueSize is the event buffer length.
	QueueSize int
}

// Controller is the single owner of page state. Events are queued with
// Dispatch and applied in order by Run.
type Controller struct {
	view     View
	analyzer Analyzer
	opts     Options
	logger   *zap.Logger

	events  chan Event
	settled chan Outcome
	state   atomic.Int32

	// Fields below are only touched by Run.
	runCtx         context.Context
	jobDescription string
	resumeText     string
	file           *submission.ResumeFile
	step           int
	ticker         Ticker
	tick           <-chan time.Time
	seq            uint64
	cancelRequest  context.CancelFunc
	requestStarted time.Time
}

// New creates a controller in the Form state.
func New(view View, analyzer Analyzer, opts *Options) *Controller {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.StepInterval <= 0 {
		o.StepInterval = DefaultStepInterval
	}
	if o.NewTicker == nil {
		o.NewTicker = NewTimeTicker
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 32
	}

	return &Controller{
		view:     view,
		analyzer: analyzer,
		opts:     o,
		logger:   logging.OrNop(o.Logger),
		events:   make(chan Event, o.QueueSize),
		settled:  make(chan Outcome, 8),
	}
}

// State returns the current state. Safe for concurrent use.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Dispatch queues ev. It blocks while the queue is full.
func (c *Controller) Dispatch(ev Event) {
	c.events <- ev
}

// Settled delivers one Outcome per submit that did not get dropped: a
// validation failure, an error or a report. Outcomes are discarded when
// nobody reads them.
func (c *Controller) Settled() <-chan Outcome {
	return c.settled
}

// Run applies queued events until ctx is done. Cancelling ctx also cancels
// an in-flight request.
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	defer c.stopTicker()
	defer c.cancelInFlight()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ev)
		case <-c.tick:
			c.advanceStep()
		}
	}
}

func (c *Controller) handle(ev Event) {
	switch e := ev.(type) {
	case EditJobDescription:
		c.jobDescription = e.Text
		c.view.SetCharCount(TargetJobDescription, submission.CharCount(e.Text))
	case EditResumeText:
		c.resumeText = e.Text
		c.view.SetCharCount(TargetResumeText, submission.CharCount(e.Text))
	case AssignFile:
		if e.Source == SourceDrop {
			c.view.SetDragOver(false)
		}
		if e.File == nil {
			return
		}
		c.file = e.File
		c.view.SetFileIndicator(submission.FileIndicator(e.File))
		c.logger.Debug("file assigned", zap.String("file", e.File.Name), zap.Int64("size", e.File.Size), zap.String("source", string(e.Source)))
	case DragOver:
		c.view.SetDragOver(true)
	case DragLeave:
		c.view.SetDragOver(false)
	case Submit:
		c.submit()
	case Reset:
		c.reset()
	case analysisDone:
		c.finish(e)
	default:
		c.logger.Warn("unknown event", zap.Any("event", ev))
	}
}

func (c *Controller) setState(s State) {
	prev := State(c.state.Swap(int32(s)))
	if prev != s {
		c.logger.Debug("state transition", zap.Stringer("from", prev), zap.Stringer("to", s))
	}
}

func (c *Controller) submit() {
	// Submit is disabled from Loading until a Reset brings the form back.
	switch st := c.State(); st {
	case StateLoading, StateResults:
		c.logger.Debug("submit ignored", zap.Stringer("state", st))
		return
	}

	in := submission.Input{
		JobDescription: c.jobDescription,
		ResumeText:     c.resumeText,
		File:           c.file,
	}.Normalized()

	if err := in.Validate(); err != nil {
		c.rejectInput(err)
		return
	}

	c.enterLoading()

	c.seq++
	seq := c.seq
	reqCtx, cancel := context.WithCancel(c.runCtx)
	c.cancelRequest = cancel
	c.requestStarted = time.Now()

	c.logger.Info("submitting analysis",
		zap.Int("job_description_chars", len([]rune(in.JobDescription))),
		zap.Int("resume_text_chars", len([]rune(in.ResumeText))),
		zap.Bool("has_file", in.File != nil))

	go func() {
		result, err := c.analyzer.Analyze(reqCtx, in)
		select {
		case c.events <- analysisDone{seq: seq, result: result, err: err}:
		case <-reqCtx.Done():
		}
	}()
}

func (c *Controller) rejectInput(err error) {
	var ve *submission.ValidationError
	if !errors.As(err, &ve) {
		c.logger.Error("unexpected validation failure", zap.Error(err))
		c.settle(Outcome{State: c.State(), Err: err, Message: client.UserMessage(err)})
		return
	}

	switch ve.Field {
	case submission.FieldJobDescription:
		c.view.Shake(TargetJobDescription)
		c.view.Focus(TargetJobDescription)
	default:
		c.view.Shake(TargetUploadZone)
	}

	c.opts.Metrics.ValidationFailure(string(ve.Field))
	c.logger.Debug("submission rejected", zap.String("field", string(ve.Field)))
	c.settle(Outcome{State: c.State(), Err: err, Message: ve.Message, Validation: ve})
}

// enterLoading is Form → Loading.
func (c *Controller) enterLoading() {
	c.setState(StateLoading)
	c.view.SetPanels(Panels{Loading: true})
	c.view.SetSubmitEnabled(false)
	c.step = 0
	c.view.SetSteps(StepsAt(0))
	c.startTicker()
}

func (c *Controller) finish(done analysisDone) {
	if done.seq != c.seq || c.State() != StateLoading {
		c.logger.Debug("stale analysis result dropped", zap.Uint64("seq", done.seq))
		return
	}
	c.stopTicker()
	c.cancelInFlight()

	duration := time.Since(c.requestStarted)

	if done.err != nil {
		c.showError(done.err, duration)
		return
	}
	if done.result == nil {
		c.showError(errors.New(client.MessageUnexpected), duration)
		return
	}

	report, err := rendering.Build(done.result)
	if err != nil {
		c.showError(err, duration)
		return
	}

	c.setState(StateResults)
	c.view.SetPanels(Panels{Results: true})
	c.view.RenderResults(report)
	c.view.ScrollTo(TargetResults)

	c.opts.Metrics.Submission(metrics.OutcomeResults)
	c.logger.Info("analysis complete",
		zap.Duration("duration", duration),
		zap.Float64("overall_score", done.result.Score.OverallScore))
	c.settle(Outcome{State: StateResults, Result: done.result, Report: report})
}

// showError is Loading → Error.
func (c *Controller) showError(err error, duration time.Duration) {
	message := client.UserMessage(err)

	c.setState(StateError)
	c.view.SetPanels(Panels{Form: true, Error: true})
	c.view.SetSubmitEnabled(true)
	c.view.ShowError(message)

	c.opts.Metrics.Submission(metrics.OutcomeError)
	c.logger.Info("analysis failed", zap.Duration("duration", duration), zap.String("message", message))
	c.settle(Outcome{State: StateError, Err: err, Message: message})
}

// reset is Results/Error → Form. Input values are kept.
func (c *Controller) reset() {
	if c.State() == StateLoading {
		c.logger.Debug("reset ignored while loading")
		return
	}

	c.stopTicker()
	c.setState(StateForm)
	c.view.SetPanels(Panels{Form: true})
	c.view.SetSubmitEnabled(true)
	c.step = 0
	c.view.SetSteps(StepsAt(-1))
	c.view.ScrollTo(TargetPage)
}

func (c *Controller) advanceStep() {
	if c.State() != StateLoading {
		c.stopTicker()
		return
	}
	if c.step >= len(LoadingSteps)-1 {
		c.stopTicker()
		return
	}

	c.step++
	c.view.SetSteps(StepsAt(c.step))
	if c.step == len(LoadingSteps)-1 {
		c.stopTicker()
	}
}

func (c *Controller) startTicker() {
	c.stopTicker()
	c.ticker = c.opts.NewTicker(c.opts.StepInterval)
	c.tick = c.ticker.C()
}

func (c *Controller) stopTicker() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	c.tick = nil
}

func (c *Controller) cancelInFlight() {
	if c.cancelRequest != nil {
		c.cancelRequest()
		c.cancelRequest = nil
	}
}

func (c *Controller) settle(o Outcome) {
	select {
	case c.settled <- o:
	default:
		c.logger.Debug("outcome dropped, no reader", zap.Stringer("state", o.State))
	}
}
