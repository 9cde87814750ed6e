package controller

import "github.com/jonathan/resume-lens/internal/rendering"

// Target names an element the view can shake, focus or scroll to.
type Target string

// View targets.
const (
	TargetJobDescription Target = "job_description"
	TargetResumeText     Target = "resume_text"
	TargetUploadZone     Target = "upload_zone"
	TargetResults        Target = "results"
	TargetPage           Target = "page"
)

// Panels is the visibility of each page section.
type Panels struct {
	Form    bool `json:"form"`
	Loading bool `json:"loading"`
	Error   bool `json:"error"`
	Results bool `json:"results"`
}

// Step statuses.
const (
	StepPending = ""
	StepActive  = "active"
	StepDone    = "done"
)

// LoadingSteps are the progress indicators shown while a request is in flight.
var LoadingSteps = []string{
	"Parsing job description",
	"Parsing resume",
	"Analyzing alignment",
	"Scoring match",
}

// View is the surface the controller drives. Methods are only called from
// the Run goroutine.
type View interface {
	SetCharCount(target Target, label string)
	SetFileIndicator(label string)
	SetDragOver(active bool)
	Shake(target Target)
	Focus(target Target)
	SetPanels(p Panels)
	SetSubmitEnabled(enabled bool)
	SetSteps(steps []rendering.Step)
	ShowError(message string)
	RenderResults(report *rendering.Report)
	ScrollTo(target Target)
}

// StepsAt returns the indicator list with every step before current done and
// current active. A negative current marks nothing.
func StepsAt(current int) []rendering.Step {
	steps := make([]rendering.Step, len(LoadingSteps))
	for i, label := range LoadingSteps {
		status := StepPending
		switch {
		case current < 0:
		case i < current:
			status = StepDone
		case i == current:
			status = StepActive
		}
		steps[i] = rendering.Step{Label: label, Status: status}
	}
	return steps
}
