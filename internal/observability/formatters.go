// Package observability provides formatted terminal output for the analyze command.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-lens/internal/rendering"
	"github.com/jonathan/resume-lens/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// barWidth is the number of cells in a dimension bar
	barWidth = 20
)

// Printer handles formatted report output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, boxWidth-4) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, boxWidth-4))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads s with spaces to width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// wrap splits line into chunks of at most width runes, breaking on spaces
// where possible. Continuation lines keep the original indentation.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
	words := strings.Fields(line)

	var lines []string
	current := indent
	for _, w := range words {
		candidate := current
		if strings.TrimSpace(current) != "" {
			candidate += " "
		}
		candidate += w
		if utf8.RuneCountInString(candidate) > width && strings.TrimSpace(current) != "" {
			lines = append(lines, current)
			current = indent + "  " + w
			continue
		}
		current = candidate
	}
	lines = append(lines, current)

	// A single word longer than the box is cut.
	for i, l := range lines {
		if utf8.RuneCountInString(l) > width {
			r := []rune(l)
			lines[i] = string(r[:width-3]) + "..."
		}
	}
	return lines
}

// Bar draws a text progress bar for a 0-100 value.
func Bar(value float64) string {
	filled := int(value/100*barWidth + 0.5)
	filled = max(0, min(barWidth, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// PrintReport outputs every section of a successful analysis in display order.
func (p *Printer) PrintReport(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	p.PrintScore(&result.Score)
	p.PrintAssessment(result.Analysis.OverallAssessment)
	p.PrintTopActions(result.Score.TopActions)
	p.PrintFindings("STRENGTHS", result.Analysis.Strengths, rendering.NoStrengths)
	p.PrintFindings("WEAKNESSES", result.Analysis.Weaknesses, rendering.NoWeaknesses)
	p.PrintMissingKeywords(result.Analysis.MissingKeywords)
	p.PrintSkillGaps(result.Analysis.SkillGaps)
	p.PrintSectionImprovements(result.Analysis.SectionImprovements)
	p.PrintBulletOptimizations(result.Analysis.BulletOptimizations)
}

// PrintScore outputs the overall score, its bucket and the dimension bars.
func (p *Printer) PrintScore(score *types.Score) {
	if score == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:  %d / 100  %s [%s]\n",
		int(score.OverallScore+0.5), score.ScoreLabel, rendering.Bucket(score.OverallScore)))
	if score.ScoreRationale != "" {
		sb.WriteString(score.ScoreRationale + "\n")
	}
	sb.WriteString("\n")

	for _, d := range types.Dimensions {
		v := score.DimensionValue(d.Key)
		sb.WriteString(fmt.Sprintf("%-22s %s %s\n", d.Label, Bar(v), rendering.FormatNumber(v)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Hiring Recommendation: %s · Confidence: %s",
		score.HiringRecommendation, score.ConfidenceInAssessment))

	p.printBox("ALIGNMENT SCORE", sb.String())
}

// PrintAssessment outputs the overall assessment. Empty text prints nothing.
func (p *Printer) PrintAssessment(text string) {
	if text == "" {
		return
	}
	p.printBox("OVERALL ASSESSMENT", text)
}

// PrintTopActions outputs the numbered priority actions.
func (p *Printer) PrintTopActions(actions []string) {
	if len(actions) == 0 {
		return
	}

	lines := make([]string, len(actions))
	for i, a := range actions {
		lines[i] = fmt.Sprintf("%02d  %s", i+1, a)
	}
	p.printBox("PRIORITY ACTIONS", strings.Join(lines, "\n"))
}

// PrintFindings outputs strengths or weaknesses with a count. An empty list
// prints placeholder.
func (p *Printer) PrintFindings(title string, findings []types.Finding, placeholder string) {
	title = fmt.Sprintf("%s (%d)", title, len(findings))
	if len(findings) == 0 {
		p.printBox(title, placeholder)
		return
	}

	var sb strings.Builder
	for i, f := range findings {
		sb.WriteString(fmt.Sprintf("• %s\n", f.Point))
		sb.WriteString(fmt.Sprintf("  %s\n", f.Reasoning))
		sb.WriteString(fmt.Sprintf("  [%s Confidence]", f.Confidence))
		if i < len(findings)-1 {
			sb.WriteString("\n\n")
		}
	}
	p.printBox(title, sb.String())
}

// PrintMissingKeywords outputs each keyword with its importance.
func (p *Printer) PrintMissingKeywords(keywords []types.MissingKeyword) {
	if len(keywords) == 0 {
		return
	}

	var sb strings.Builder
	for i, k := range keywords {
		sb.WriteString(fmt.Sprintf("• %s (%s)\n", k.Keyword, k.Importance))
		sb.WriteString(fmt.Sprintf("  %s", k.Reasoning))
		if i < len(keywords)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("MISSING KEYWORDS", sb.String())
}

// PrintSkillGaps outputs each gap with severity and the suggested action.
func (p *Printer) PrintSkillGaps(gaps []types.SkillGap) {
	if len(gaps) == 0 {
		return
	}

	var sb strings.Builder
	for i, g := range gaps {
		sb.WriteString(fmt.Sprintf("• %s [%s]\n", g.Skill, g.GapSeverity))
		sb.WriteString(fmt.Sprintf("  %s\n", g.Reasoning))
		sb.WriteString(fmt.Sprintf("  → %s", g.SuggestedAction))
		if i < len(gaps)-1 {
			sb.WriteString("\n\n")
		}
	}
	p.printBox("SKILL GAPS", sb.String())
}

// PrintSectionImprovements outputs the per-section suggestions.
func (p *Printer) PrintSectionImprovements(items []types.SectionImprovement) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	for i, s := range items {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", s.Section, s.Issue))
		sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", s.Suggestion))
		sb.WriteString(fmt.Sprintf("  %s", s.Reasoning))
		if i < len(items)-1 {
			sb.WriteString("\n\n")
		}
	}
	p.printBox("SECTION IMPROVEMENTS", sb.String())
}

// PrintBulletOptimizations outputs each pattern with a before/after example.
func (p *Printer) PrintBulletOptimizations(items []types.BulletOptimization) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	for i, b := range items {
		sb.WriteString(fmt.Sprintf("Pattern: %s → %s\n", b.OriginalPattern, b.ImprovedPattern))
		sb.WriteString(fmt.Sprintf("  Before: %s\n", b.ExampleBefore))
		sb.WriteString(fmt.Sprintf("  After:  %s\n", b.ExampleAfter))
		sb.WriteString(fmt.Sprintf("  %s", b.Reasoning))
		if i < len(items)-1 {
			sb.WriteString("\n\n")
		}
	}
	p.printBox("BULLET OPTIMIZATIONS", sb.String())
}

// PrintError outputs the failure message shown in place of a report.
func (p *Printer) PrintError(message string) {
	p.printBox("❌ ANALYSIS FAILED", message)
}

// PrintSteps outputs the loading steps with their progress markers.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSteps(steps []rendering.Step) {
	for _, s := range steps {
		marker := "·"
		switch s.Status {
		case "active":
			marker = "›"
		case "done":
			marker = "✓"
		}
		fmt.Fprintf(p.out, "  %s %s\n", marker, s.Label)
	}
}
