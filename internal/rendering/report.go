package rendering

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/resume-lens/internal/types"
)

// Empty-state placeholders.
const (
	NoStrengths  = "No notable strengths identified."
	NoWeaknesses = "No significant weaknesses identified."
)

// Score buckets.
const (
	BucketExcellent = "excellent"
	BucketGood      = "good"
	BucketAverage   = "average"
	BucketPoor      = "poor"
)

// Bucket maps an overall score to its severity class.
func Bucket(score float64) string {
	switch {
	case score >= 75:
		return BucketExcellent
	case score >= 55:
		return BucketGood
	case score >= 35:
		return BucketAverage
	default:
		return BucketPoor
	}
}

// Section is one rendered block of the report. HTML is already escaped.
type Section struct {
	Hidden bool
	Count  int
	HTML   template.HTML
}

// DimensionBar is one row of the score breakdown.
type DimensionBar struct {
	Key     string
	Label   string
	Value   float64
	Display string
}

// ScoreView is the rendered score card.
type ScoreView struct {
	Value      float64
	Final      int
	Label      string
	Bucket     string
	Rationale  string
	Dimensions []DimensionBar
	Hiring     template.HTML
}

// Report is the fully rendered results panel.
type Report struct {
	Score               ScoreView
	Assessment          Section
	TopActions          Section
	Strengths           Section
	Weaknesses          Section
	Keywords            Section
	SkillGaps           Section
	SectionImprovements Section
	BulletOptimizations Section
}

// Build renders every section of result. The sections do not depend on each
// other.
func Build(result *types.AnalysisResult) (*Report, error) {
	if result == nil {
		return nil, &RenderError{Part: "report", Reason: "no analysis result"}
	}

	score := result.Score
	analysis := result.Analysis

	return &Report{
		Score:      buildScore(score),
		Assessment: renderAssessment(analysis.OverallAssessment),
		TopActions: renderCollection(score.TopActions, topActionItem, "", true),
		Strengths:  renderCollection(analysis.Strengths, findingItem, NoStrengths, false),
		Weaknesses: renderCollection(analysis.Weaknesses, findingItem, NoWeaknesses, false),
		Keywords:   renderCollection(analysis.MissingKeywords, keywordItem, "", true),
		SkillGaps:  renderCollection(analysis.SkillGaps, skillGapItem, "", true),
		SectionImprovements: renderCollection(
			analysis.SectionImprovements, sectionImprovementItem, "", true),
		BulletOptimizations: renderCollection(
			analysis.BulletOptimizations, bulletOptimizationItem, "", true),
	}, nil
}

// renderCollection renders items with render. An empty list is hidden when
// hideEmpty is set, otherwise it shows placeholder.
func renderCollection[T any](items []T, render func(int, T) string, placeholder string, hideEmpty bool) Section {
	if len(items) == 0 {
		if hideEmpty {
			return Section{Hidden: true}
		}
		return Section{
			HTML: template.HTML(`<div class="empty-placeholder">` + Escape(placeholder) + `</div>`),
		}
	}

	var b strings.Builder
	for i, item := range items {
		b.WriteString(render(i, item))
	}
	return Section{Count: len(items), HTML: template.HTML(b.String())}
}

func buildScore(score types.Score) ScoreView {
	dims := make([]DimensionBar, 0, len(types.Dimensions))
	for _, d := range types.Dimensions {
		v := score.DimensionValue(d.Key)
		dims = append(dims, DimensionBar{
			Key:     d.Key,
			Label:   d.Label,
			Value:   v,
			Display: FormatNumber(v),
		})
	}

	hiring := fmt.Sprintf(
		`<strong>Hiring Recommendation</strong> %s <span class="hiring-confidence"> · Confidence: %s</span>`,
		Escape(score.HiringRecommendation), Escape(score.ConfidenceInAssessment))

	return ScoreView{
		Value:      score.OverallScore,
		Final:      int(math.Round(score.OverallScore)),
		Label:      score.ScoreLabel,
		Bucket:     Bucket(score.OverallScore),
		Rationale:  score.ScoreRationale,
		Dimensions: dims,
		Hiring:     template.HTML(hiring),
	}
}

func renderAssessment(text string) Section {
	if text == "" {
		return Section{Hidden: true}
	}
	return Section{HTML: template.HTML(Escape(text))}
}

func topActionItem(i int, action string) string {
	return fmt.Sprintf(
		`<div class="top-action-item"><span class="top-action-num">%02d</span><span>%s</span></div>`,
		i+1, Escape(action))
}

func findingItem(_ int, f types.Finding) string {
	level := Escape(string(f.Confidence))
	return `<div class="diag-item">` +
		`<div class="diag-item-point">` + Escape(f.Point) + `</div>` +
		`<div class="diag-item-reasoning">` + Escape(f.Reasoning) + `</div>` +
		`<span class="confidence-chip ` + level + `">` + level + ` Confidence</span>` +
		`</div>`
}

func keywordItem(_ int, k types.MissingKeyword) string {
	importance := Escape(string(k.Importance))
	return `<div class="keyword-chip ` + importance + `" title="` + Escape(k.Reasoning) + `">` +
		`<span class="keyword-name">` + Escape(k.Keyword) + `</span>` +
		`<span class="keyword-importance">` + importance + `</span>` +
		`</div>`
}

func skillGapItem(_ int, g types.SkillGap) string {
	severity := Escape(string(g.GapSeverity))
	return `<div class="skill-gap-item">` +
		`<div class="skill-gap-left">` +
		`<div class="skill-gap-name">` + Escape(g.Skill) + `</div>` +
		`<span class="severity-chip ` + severity + `">` + severity + `</span>` +
		`</div>` +
		`<div class="skill-gap-right">` +
		`<div class="skill-gap-reasoning">` + Escape(g.Reasoning) + `</div>` +
		`<div class="skill-gap-action">` + Escape(g.SuggestedAction) + `</div>` +
		`</div>` +
		`</div>`
}

func sectionImprovementItem(_ int, s types.SectionImprovement) string {
	return `<div class="improvement-item">` +
		`<div class="improvement-section-tag">` + Escape(s.Section) + `</div>` +
		`<div class="improvement-issue">` + Escape(s.Issue) + `</div>` +
		`<div class="improvement-suggestion">` + Escape(s.Suggestion) + `</div>` +
		`<div class="improvement-reasoning">` + Escape(s.Reasoning) + `</div>` +
		`</div>`
}

func bulletOptimizationItem(_ int, b types.BulletOptimization) string {
	return `<div class="bullet-opt-item">` +
		`<div class="bullet-opt-meta">Pattern: ` + Escape(b.OriginalPattern) + ` → ` + Escape(b.ImprovedPattern) + `</div>` +
		`<div class="bullet-comparison">` +
		`<div class="bullet-before"><span class="bullet-label">Before</span>` + Escape(b.ExampleBefore) + `</div>` +
		`<div class="bullet-after"><span class="bullet-label">After</span>` + Escape(b.ExampleAfter) + `</div>` +
		`</div>` +
		`<div class="bullet-reasoning">` + Escape(b.Reasoning) + `</div>` +
		`</div>`
}

// FormatNumber prints a score without trailing zeros: 82, 7.5.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
