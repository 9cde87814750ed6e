package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jonathan/resume-lens/internal/controller"
	"github.com/jonathan/resume-lens/internal/rendering"
	"github.com/jonathan/resume-lens/internal/server/middleware"
	"github.com/jonathan/resume-lens/internal/submission"
	"go.uber.org/zap"
)

// maxFormMemory is how much of a multipart form is kept in memory before
// spilling files to disk.
const maxFormMemory = 1 << 20

// formSubmission is a parsed POST /analyze body.
type formSubmission struct {
	jobDescription string
	resumeText     string
	file           *submission.ResumeFile
}

// events replays the form as the user would have entered it.
func (f *formSubmission) events() []controller.Event {
	events := []controller.Event{
		controller.EditJobDescription{Text: f.jobDescription},
		controller.EditResumeText{Text: f.resumeText},
	}
	if f.file != nil {
		events = append(events, controller.AssignFile{File: f.file, Source: controller.SourcePicker})
	}
	return events
}

// parseSubmission reads the multipart form, enforcing the upload limit on
// the whole body.
func (s *Server) parseSubmission(w http.ResponseWriter, r *http.Request) (*formSubmission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, &ErrUploadTooLarge{Limit: s.cfg.MaxUploadBytes}
		}
		return nil, &ErrBadForm{Cause: err}
	}

	form := &formSubmission{
		jobDescription: r.FormValue(submission.FieldNameJobDescription),
		resumeText:     r.FormValue(submission.FieldNameResumeText),
	}

	file, header, err := r.FormFile(submission.FieldNameResumeFile)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return form, nil
	case err != nil:
		return nil, &ErrBadForm{Cause: err}
	}
	defer file.Close()

	// A part without a file name carries no file.
	if header.Filename == "" {
		return form, nil
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, &ErrBadForm{Cause: err}
	}
	form.file = submission.NewResumeFile(header.Filename, content)

	return form, nil
}

// runSession drives a fresh controller through one submission and returns
// its outcome. The view is no longer touched once runSession returns.
func (s *Server) runSession(ctx context.Context, view controller.View, form *formSubmission) (controller.Outcome, error) {
	return controller.RunOnce(ctx, view, s.analyzer, &controller.Options{
		StepInterval: s.cfg.StepInterval,
		NewTicker:    s.stepTicker,
		Logger:       s.logger.With(zap.String("request_id", middleware.GetRequestID(ctx))),
		Metrics:      s.metrics,
	}, form.events()...)
}

// handleIndex renders the empty form.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, newFormPage())
}

// handleAnalyze is the submit path for browsers without scripting: it runs
// the whole submission and renders the final page.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseSubmission(w, r)
	if err != nil {
		page := newFormPage()
		page.ShowError = true
		page.ErrorMessage = err.Error()
		s.renderPage(w, HTTPStatus(err), page)
		return
	}

	view := newPageView()
	outcome, err := s.runSession(r.Context(), view, form)
	if err != nil {
		s.logger.Info("client went away", zap.String("request_id", middleware.GetRequestID(r.Context())), zap.Error(err))
		return
	}

	page := view.page
	page.JobDescription = form.jobDescription
	page.ResumeText = form.resumeText

	status := http.StatusOK
	if outcome.Validation != nil {
		status = HTTPStatus(&ErrValidation{Field: string(outcome.Validation.Field), Message: outcome.Validation.Message})
	}
	s.renderPage(w, status, page)
}

// handleAnalyzeStream runs a submission and streams every view update as
// an SSE event, ending with "complete".
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseSubmission(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	view := newSSEView(ctx, sse, s.logger, s.frameTicker)
	outcome, err := s.runSession(ctx, view, form)
	view.Wait()
	if err != nil {
		s.logger.Info("stream closed by client", zap.String("request_id", requestID), zap.Error(err))
		return
	}

	sse.WriteComplete(requestID, outcome.State.String())
}

// renderPage buffers the page so a template failure can still produce a
// clean error response.
func (s *Server) renderPage(w http.ResponseWriter, status int, page *rendering.Page) {
	var buf bytes.Buffer
	if err := rendering.RenderPage(&buf, page); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("failed to write page", zap.Error(err))
	}
}
