package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/resume-lens/internal/client"
	"github.com/jonathan/resume-lens/internal/config"
	"github.com/jonathan/resume-lens/internal/controller"
	"github.com/jonathan/resume-lens/internal/metrics"
	"github.com/jonathan/resume-lens/internal/server/middleware"
	"github.com/jonathan/resume-lens/internal/submission"
	"github.com/jonathan/resume-lens/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeAnalyzer returns a canned result and records every input.
type fakeAnalyzer struct {
	mu     sync.Mutex
	inputs []submission.Input
	result *types.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, in submission.Input) (*types.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return f.result, f.err
}

func (f *fakeAnalyzer) calls() []submission.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]submission.Input(nil), f.inputs...)
}

// idleTicker never fires.
type idleTicker struct{ c chan time.Time }

func (t idleTicker) C() <-chan time.Time { return t.c }
func (idleTicker) Stop()                 {}

// closedTicker ends any animation on its first read.
type closedTicker struct{ c chan time.Time }

func (t closedTicker) C() <-chan time.Time { return t.c }
func (closedTicker) Stop()                 {}

func newIdleTicker(time.Duration) controller.Ticker {
	return idleTicker{c: make(chan time.Time)}
}

func newClosedTicker(time.Duration) controller.Ticker {
	c := make(chan time.Time)
	close(c)
	return closedTicker{c: c}
}

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		Success: true,
		Analysis: types.Analysis{
			OverallAssessment: "Solid <b>fit</b> for the role.",
			Strengths: []types.Finding{
				{Point: "Go services", Reasoning: "Five years", Confidence: types.ConfidenceHigh},
			},
		},
		Score: types.Score{
			OverallScore:           82,
			ScoreLabel:             "Strong Match",
			DimensionScores:        map[string]float64{"technical_skills_match": 88, "keyword_coverage": 61.5},
			HiringRecommendation:   "Interview",
			ConfidenceInAssessment: "High",
			TopActions:             []string{"Add Kafka to the skills section"},
		},
	}
}

type testServer struct {
	*Server
	analyzer *fakeAnalyzer
}

func newTestServer(t *testing.T, mutate func(*config.Config, *Options)) *testServer {
	t.Helper()

	analyzer := &fakeAnalyzer{result: sampleResult()}
	opts := Options{
		Config:      config.Default(),
		Analyzer:    analyzer,
		Logger:      zaptest.NewLogger(t),
		Gatherer:    prometheus.NewRegistry(),
		StepTicker:  newIdleTicker,
		FrameTicker: newClosedTicker,
	}
	if mutate != nil {
		mutate(&opts.Config, &opts)
	}

	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	return &testServer{Server: s, analyzer: analyzer}
}

// formFields builds a multipart body. A non-empty fileName adds resume_file.
func formFields(t *testing.T, jd, resumeText, fileName string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField(submission.FieldNameJobDescription, jd))
	require.NoError(t, mw.WriteField(submission.FieldNameResumeText, resumeText))
	if fileName != "" {
		fw, err := mw.CreateFormFile(submission.FieldNameResumeFile, fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (s *testServer) post(t *testing.T, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func parseHTML(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

type sseEvent struct {
	name string
	data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()

	var events []sseEvent
	for _, block := range strings.Split(body, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data += strings.TrimPrefix(line, "data: ")
			}
		}
		require.NotEmpty(t, ev.name, "block without event name: %q", block)
		events = append(events, ev)
	}
	return events
}

func eventsNamed(events []sseEvent, name string) []sseEvent {
	var out []sseEvent
	for _, ev := range events {
		if ev.name == name {
			out = append(out, ev)
		}
	}
	return out
}

func hidden(sel *goquery.Selection) bool {
	return sel.HasClass("hidden")
}

func TestNew_RequiresAnalyzer(t *testing.T) {
	_, err := New(Options{Config: config.Default()})
	assert.EqualError(t, err, "analyzer is required")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Endpoint = ""

	_, err := New(Options{Config: cfg, Analyzer: &fakeAnalyzer{}})
	assert.ErrorContains(t, err, "'endpoint' is required")
}

func TestNew_Addr(t *testing.T) {
	s := newTestServer(t, func(c *config.Config, _ *Options) { c.Port = 9123 })
	assert.Equal(t, ":9123", s.Addr())
	assert.Zero(t, s.httpServer.WriteTimeout, "streams wait on the analysis server")
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	doc := parseHTML(t, w)
	assert.False(t, hidden(doc.Find("#formSection")))
	assert.True(t, hidden(doc.Find("#loadingSection")))
	assert.True(t, hidden(doc.Find("#errorSection")))
	assert.True(t, hidden(doc.Find("#resultsSection")))
	assert.Equal(t, "0 characters", doc.Find("#jobCount").Text())
	_, disabled := doc.Find("#submitBtn").Attr("disabled")
	assert.False(t, disabled)
	assert.Equal(t, len(controller.LoadingSteps), doc.Find("#loadingSteps li.loading-step").Length())
}

func TestUnknownPath(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyze_EmptyJobDescription(t *testing.T) {
	s := newTestServer(t, nil)

	body, ct := formFields(t, "   ", "My resume", "", nil)
	w := s.post(t, "/analyze", body, ct)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, s.analyzer.calls())

	doc := parseHTML(t, w)
	jd := doc.Find("#jobDescription")
	assert.True(t, jd.HasClass("shake"))
	_, focused := jd.Attr("autofocus")
	assert.True(t, focused)
	assert.Equal(t, "My resume", doc.Find("#resumeText").Text())
	assert.Equal(t, "9 characters", doc.Find("#resumeCount").Text())
	assert.False(t, hidden(doc.Find("#formSection")))
}

func TestAnalyze_MissingResume(t *testing.T) {
	s := newTestServer(t, nil)

	body, ct := formFields(t, "Senior Go engineer", "", "", nil)
	w := s.post(t, "/analyze", body, ct)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, s.analyzer.calls())

	doc := parseHTML(t, w)
	assert.True(t, doc.Find("#uploadZone").HasClass("shake"))
	assert.False(t, doc.Find("#jobDescription").HasClass("shake"))
}

func TestAnalyze_Results(t *testing.T) {
	s := newTestServer(t, nil)

	body, ct := formFields(t, "Senior Go engineer", "Go, Kafka", "", nil)
	w := s.post(t, "/analyze", body, ct)

	require.Equal(t, http.StatusOK, w.Code)
	calls := s.analyzer.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Senior Go engineer", calls[0].JobDescription)
	assert.Equal(t, "Go, Kafka", calls[0].ResumeText)

	doc := parseHTML(t, w)
	assert.True(t, hidden(doc.Find("#formSection")))
	assert.True(t, hidden(doc.Find("#loadingSection")))
	assert.False(t, hidden(doc.Find("#resultsSection")))
	assert.Equal(t, "82", strings.TrimSpace(doc.Find("#scoreNumber").Text()))
	assert.True(t, doc.Find("#scoreBadge").HasClass("excellent"))
	assert.Equal(t, "Solid <b>fit</b> for the role.", doc.Find("#assessmentBanner").Text())
	assert.Equal(t, "1", doc.Find("#strengthsCount").Text())
	assert.Equal(t, "Senior Go engineer", doc.Find("#jobDescription").Text())
}

func TestAnalyze_RequestFailure(t *testing.T) {
	s := newTestServer(t, nil)
	s.analyzer.result = nil
	s.analyzer.err = &client.RequestError{StatusCode: http.StatusBadRequest, Message: "Resume text is too short."}

	body, ct := formFields(t, "Senior Go engineer", "Go", "", nil)
	w := s.post(t, "/analyze", body, ct)

	require.Equal(t, http.StatusOK, w.Code)

	doc := parseHTML(t, w)
	assert.False(t, hidden(doc.Find("#formSection")))
	assert.False(t, hidden(doc.Find("#errorSection")))
	assert.True(t, hidden(doc.Find("#resultsSection")))
	assert.Equal(t, "Resume text is too short.", doc.Find("#errorMessage").Text())
	_, disabled := doc.Find("#submitBtn").Attr("disabled")
	assert.False(t, disabled)
}

func TestAnalyze_FileUpload(t *testing.T) {
	s := newTestServer(t, nil)

	body, ct := formFields(t, "Senior Go engineer", "", "cv.txt", []byte("Go engineer"))
	w := s.post(t, "/analyze", body, ct)

	require.Equal(t, http.StatusOK, w.Code)
	calls := s.analyzer.calls()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].File)
	assert.Equal(t, "cv.txt", calls[0].File.Name)
	assert.Equal(t, []byte("Go engineer"), calls[0].File.Content)

	doc := parseHTML(t, w)
	assert.Equal(t, "✓ cv.txt (11 B)", doc.Find("#fileIndicator").Text())
}

func TestAnalyze_UploadTooLarge(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config, _ *Options) {
		cfg.MaxUploadBytes = 1024
	})

	body, ct := formFields(t, "Senior Go engineer", "", "cv.pdf", bytes.Repeat([]byte("x"), 4096))
	w := s.post(t, "/analyze", body, ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, s.analyzer.calls())

	doc := parseHTML(t, w)
	assert.Equal(t, "File too large. Maximum size is 1.0 KB.", doc.Find("#errorMessage").Text())
	assert.False(t, hidden(doc.Find("#errorSection")))
}

func TestAnalyze_NotMultipart(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.post(t, "/analyze", bytes.NewBufferString("job_description=x"), "application/x-www-form-urlencoded")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.analyzer.calls())
}

func TestAnalyzeStream_Results(t *testing.T) {
	s := newTestServer(t, nil)

	body, ct := formFields(t, "Senior Go engineer", "Go, Kafka", "", nil)
	w := s.post(t, "/analyze/stream", body, ct)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	events := parseSSE(t, w.Body.String())
	require.GreaterOrEqual(t, len(events), 6)

	// Entering Loading
	assert.Equal(t, "state", events[0].name)
	assert.JSONEq(t, `{"panels": {"form": false, "loading": true, "error": false, "results": false}, "submit_enabled": true}`, events[0].data)
	assert.Equal(t, "state", events[1].name)
	assert.JSONEq(t, `{"panels": {"form": false, "loading": true, "error": false, "results": false}, "submit_enabled": false}`, events[1].data)
	assert.Equal(t, "steps", events[2].name)
	assert.JSONEq(t, `[
		{"label": "Parsing job description", "status": "active"},
		{"label": "Parsing resume", "status": ""},
		{"label": "Analyzing alignment", "status": ""},
		{"label": "Scoring match", "status": ""}
	]`, events[2].data)

	results := eventsNamed(events, "results")
	require.Len(t, results, 1)
	var fragment string
	require.NoError(t, json.Unmarshal([]byte(results[0].data), &fragment))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	assert.Equal(t, "0", strings.TrimSpace(doc.Find("#scoreNumber").Text()))
	assert.NotContains(t, fragment, "<b>fit</b>")

	scores := eventsNamed(events, "score")
	require.NotEmpty(t, scores)
	assert.Equal(t, "0", scores[0].data)
	assert.Equal(t, "82", scores[len(scores)-1].data)

	bars := eventsNamed(events, "bars")
	require.Len(t, bars, 1)
	assert.JSONEq(t, `{
		"technical_skills_match": 88,
		"experience_relevance": 0,
		"keyword_coverage": 61.5,
		"achievement_quality": 0,
		"presentation_quality": 0
	}`, bars[0].data)

	scroll := eventsNamed(events, "scroll")
	require.Len(t, scroll, 1)
	assert.Equal(t, `"results"`, scroll[0].data)

	last := events[len(events)-1]
	assert.Equal(t, "complete", last.name)
	var complete map[string]string
	require.NoError(t, json.Unmarshal([]byte(last.data), &complete))
	assert.Equal(t, "results", complete["state"])
	assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), complete["request_id"])
}

func TestAnalyzeStream_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	body, ct := formFields(t, "", "My resume", "", nil)
	w := s.post(t, "/analyze/stream", body, ct)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.analyzer.calls())

	events := parseSSE(t, w.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, sseEvent{name: "shake", data: `"job_description"`}, events[0])
	assert.Equal(t, sseEvent{name: "focus", data: `"job_description"`}, events[1])
	assert.Equal(t, "complete", events[2].name)
	assert.Contains(t, events[2].data, `"state":"form"`)
}

func TestAnalyzeStream_Failure(t *testing.T) {
	s := newTestServer(t, nil)
	s.analyzer.result = &types.AnalysisResult{Success: false}
	s.analyzer.err = &client.RequestError{StatusCode: http.StatusOK, Message: client.MessageAnalysisFailed}

	body, ct := formFields(t, "Senior Go engineer", "Go", "", nil)
	w := s.post(t, "/analyze/stream", body, ct)

	events := parseSSE(t, w.Body.String())

	errs := eventsNamed(events, "error")
	require.Len(t, errs, 1)
	var message string
	require.NoError(t, json.Unmarshal([]byte(errs[0].data), &message))
	assert.Equal(t, client.MessageAnalysisFailed, message)

	assert.Empty(t, eventsNamed(events, "results"))
	assert.Contains(t, events[len(events)-1].data, `"state":"error"`)
}

func TestAnalyzeStream_UploadTooLarge(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config, _ *Options) {
		cfg.MaxUploadBytes = 2 << 20
	})

	body, ct := formFields(t, "Senior Go engineer", "", "cv.pdf", bytes.Repeat([]byte("x"), 3<<20))
	w := s.post(t, "/analyze/stream", body, ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error": "File too large. Maximum size is 2MB."}`, w.Body.String())
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config, _ *Options) {
		cfg.RateLimitPerHour = 1
		cfg.RateLimitBurst = 1
	})

	body, ct := formFields(t, "", "", "", nil)
	w := s.post(t, "/analyze", body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	body, ct = formFields(t, "", "", "", nil)
	w = s.post(t, "/analyze", body, ct)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Too many analyses. Please try again later.", resp["error"])

	// Health checks are never limited
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newTestServer(t, func(_ *config.Config, opts *Options) {
		opts.Gatherer = reg
		opts.Metrics = metrics.NewRecorder(reg)
	})

	body, ct := formFields(t, "Senior Go engineer", "Go", "", nil)
	s.post(t, "/analyze", body, ct)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	out := w.Body.String()
	assert.Contains(t, out, `resume_lens_http_requests_total{method="POST",route="POST /analyze",status="200"} 1`)
	assert.Contains(t, out, `resume_lens_submissions_total{outcome="results"} 1`)
}

// TestCORSMiddleware tests CORS headers are set
func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t, nil)

	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header Access-Control-Allow-Origin: *")
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected CORS header Access-Control-Allow-Methods")
	}
}

// TestCORSMiddleware_OPTIONS tests OPTIONS preflight request
func TestCORSMiddleware_OPTIONS(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/analyze/stream", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for OPTIONS, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Error("OPTIONS response should have empty body")
	}
	if len(s.analyzer.calls()) != 0 {
		t.Error("OPTIONS should not reach the handler")
	}
}

// TestStatusRecorder tests that the logging wrapper keeps streaming working
func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	rec.WriteHeader(http.StatusTeapot)
	rec.WriteHeader(http.StatusOK)
	rec.Flush()

	assert.Equal(t, http.StatusTeapot, rec.status)
	assert.True(t, w.Flushed)
	assert.Same(t, w, rec.Unwrap())

	_, err := NewSSEWriter(rec)
	assert.NoError(t, err)
}

// TestSSEWriter tests SSE event writing
func TestSSEWriter(t *testing.T) {
	w := httptest.NewRecorder()

	sse, err := NewSSEWriter(w)
	require.NoError(t, err)

	require.NoError(t, sse.WriteEvent("steps", []string{"a"}))
	sse.WriteError("Boom <b>")
	sse.WriteComplete("req-1", "error")

	assert.Equal(t,
		"event: steps\ndata: [\"a\"]\n\n"+
			"event: error\ndata: \"Boom \\u003cb\\u003e\"\n\n"+
			"event: complete\ndata: {\"request_id\":\"req-1\",\"state\":\"error\"}\n\n",
		w.Body.String())
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
}

func TestSSEWriter_EncodeError(t *testing.T) {
	sse, err := NewSSEWriter(httptest.NewRecorder())
	require.NoError(t, err)

	assert.ErrorContains(t, sse.WriteEvent("bad", make(chan int)), "failed to encode bad event")
}

// TestErrorResponse tests errorResponse helper
func TestErrorResponse(t *testing.T) {
	s := newTestServer(t, nil)
	w := httptest.NewRecorder()

	s.errorResponse(w, http.StatusBadRequest, "test error")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "test error"}`, w.Body.String())
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestStart_GracefulShutdown(t *testing.T) {
	port := freePort(t)
	s := newTestServer(t, func(cfg *config.Config, _ *Options) {
		cfg.Port = port
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
