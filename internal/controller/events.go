package controller

import (
	"github.com/jonathan/resume-lens/internal/submission"
	"github.com/jonathan/resume-lens/internal/types"
)

// Event is an input to the controller's queue.
type Event interface {
	event()
}

// FileSource identifies how a file was assigned.
type FileSource string

// File sources.
const (
	SourcePicker FileSource = "picker"
	SourceDrop   FileSource = "drop"
)

// EditJobDescription replaces the job description text.
type EditJobDescription struct{ Text string }

// EditResumeText replaces the pasted resume text.
type EditResumeText struct{ Text string }

// AssignFile replaces the selected resume file.
type AssignFile struct {
	File   *submission.ResumeFile
	Source FileSource
}

// DragOver marks a file hovering over the upload zone.
type DragOver struct{}

// DragLeave clears the drag affordance.
type DragLeave struct{}

// Submit validates the inputs and starts an analysis.
type Submit struct{}

// Reset returns to the form after an error or a report.
type Reset struct{}

// analysisDone carries a finished request back to the Run loop.
type analysisDone struct {
	seq    uint64
	result *types.AnalysisResult
	err    error
}

func (EditJobDescription) event() {}
func (EditResumeText) event()     {}
func (AssignFile) event()         {}
func (DragOver) event()           {}
func (DragLeave) event()          {}
func (Submit) event()             {}
func (Reset) event()              {}
func (analysisDone) event()       {}
