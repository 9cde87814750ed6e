package rendering

import (
	"embed"
	"html/template"
	"io"
	"sync"

	"github.com/jonathan/resume-lens/internal/anim"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Step is one entry of the loading indicator.
type Step struct {
	Label  string `json:"label"`
	Status string `json:"status"`
}

// Page is everything the front-end page shows at one moment.
type Page struct {
	ShowForm    bool
	ShowLoading bool
	ShowError   bool
	ShowResults bool

	JobDescription string
	ResumeText     string
	JobCount       string
	ResumeCount    string
	FileIndicator  string
	SubmitDisabled bool

	// ShakeTargets lists the inputs flagged by the last validation failure.
	ShakeTargets []string
	Focus        string

	Steps        []Step
	ErrorMessage string
	Report       *Report

	// Animate renders the score and bars at zero so the client can play
	// the count-up.
	Animate bool
}

// Shaken reports whether target failed validation.
func (p *Page) Shaken(target string) bool {
	for _, t := range p.ShakeTargets {
		if t == target {
			return true
		}
	}
	return false
}

var (
	templatesOnce sync.Once
	templates     *template.Template
	templatesErr  error
)

func loadTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		tmpl, err := template.New("lens").Funcs(template.FuncMap{
			"width": anim.Width,
		}).ParseFS(templateFS, "templates/*.tmpl")
		if err != nil {
			templatesErr = &TemplateError{Cause: err}
			return
		}
		templates = tmpl
	})
	return templates, templatesErr
}

// RenderPage writes the complete HTML page.
func RenderPage(w io.Writer, p *Page) error {
	return execute(w, "page", p)
}

// RenderResults writes the results panel fragment for report. With animate
// set the score and bars start at zero.
func RenderResults(w io.Writer, report *Report, animate bool) error {
	if report == nil {
		return &RenderError{Part: "results panel", Reason: "no report"}
	}
	return execute(w, "results", &Page{Report: report, Animate: animate})
}

func execute(w io.Writer, name string, data *Page) error {
	tmpl, err := loadTemplates()
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		return &TemplateError{Template: name, Cause: err}
	}
	return nil
}
