// Package client submits resumes to the analysis server and decodes its report.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/resume-lens/internal/extract"
	"github.com/jonathan/resume-lens/internal/logging"
	"github.com/jonathan/resume-lens/internal/metrics"
	"github.com/jonathan/resume-lens/internal/schemas"
	"github.com/jonathan/resume-lens/internal/submission"
	"github.com/jonathan/resume-lens/internal/types"
	"go.uber.org/zap"
)

// DefaultEndpoint is the analysis endpoint of a locally running server.
const DefaultEndpoint = "http://localhost:5000/api/analyze"

// Options configures the client.
type Options struct {
	// Timeout bounds the whole request. Zero waits indefinitely.
	Timeout time.Duration
	// StrictSchema validates successful bodies against the response schema.
	StrictSchema bool
	// ExtractLocally converts an attached document to resume_text before upload.
	ExtractLocally bool
	Logger         *zap.Logger
	Metrics        *metrics.Recorder
	HTTPClient     *http.Client
}

// Client talks to POST /api/analyze.
type Client struct {
	endpoint   string
	httpClient *http.Client
	opts       Options
	logger     *zap.Logger
}

// New creates a client for endpoint. A nil opts uses defaults.
func New(endpoint string, opts *Options) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	var o Options
	if opts != nil {
		o = *opts
	}

	httpClient := o.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.Timeout}
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		opts:       o,
		logger:     logging.OrNop(o.Logger).With(zap.String("endpoint", endpoint)),
	}
}

// Endpoint returns the analysis URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Analyze posts the submission and returns the decoded report. Every failure
// is a *RequestError whose Message is suitable for display.
func (c *Client) Analyze(ctx context.Context, in submission.Input) (*types.AnalysisResult, error) {
	done := c.opts.Metrics.RequestStarted()

	result, err := c.analyze(ctx, in)
	if err != nil {
		done(metrics.OutcomeError)
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			c.logger.Warn(reqErr.Describe(), zap.Int("status", reqErr.StatusCode))
		}
		return nil, err
	}

	done(metrics.OutcomeResults)
	return result, nil
}

func (c *Client) analyze(ctx context.Context, in submission.Input) (*types.AnalysisResult, error) {
	if c.opts.ExtractLocally && in.File != nil {
		text, err := extract.Text(in.File.Name, in.File.Content)
		if err != nil {
			return nil, &RequestError{Message: err.Error(), Cause: err}
		}
		c.logger.Debug("extracted resume locally", zap.String("file", in.File.Name), zap.Int("chars", len(text)))
		in.ResumeText = text
		in.File = nil
	}

	body, contentType, err := in.Encode()
	if err != nil {
		return nil, &RequestError{Message: MessageUnexpected, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, &RequestError{Message: MessageUnexpected, Cause: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Message: err.Error(), Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	// The body is decoded before the status is checked so that error bodies
	// still surface their message.
	var result types.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid JSON in response: %v", err),
			Cause:      err,
		}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || !result.Success {
		message := result.Error
		if message == "" {
			message = MessageAnalysisFailed
		}
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: message}
	}

	if c.opts.StrictSchema {
		if err := schemas.ValidateAnalysisResponse(raw); err != nil {
			return nil, &RequestError{StatusCode: resp.StatusCode, Message: MessageBadFormat, Cause: err}
		}
	}

	c.logger.Info("analysis received",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.Float64("overall_score", result.Score.OverallScore))

	return &result, nil
}

// UserMessage maps any submission error to the text shown in the error panel.
func UserMessage(err error) string {
	if err == nil {
		return MessageUnexpected
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return MessageUnexpected
}
