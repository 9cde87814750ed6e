// Package types provides type definitions for the analysis report exchanged with the analysis server.
package types

// Confidence is the certainty attached to a strength or weakness.
type Confidence string

// Confidence levels reported by the analyzer.
const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// Level is the importance of a missing keyword or the severity of a skill gap.
type Level string

// Levels reported by the analyzer.
const (
	LevelLow      Level = "Low"
	LevelMedium   Level = "Medium"
	LevelHigh     Level = "High"
	LevelCritical Level = "Critical"
)

// AnalysisResult is the JSON body returned by POST /api/analyze.
type AnalysisResult struct {
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
	Analysis Analysis `json:"analysis"`
	Score    Score    `json:"score"`
}

// Score is the calibrated alignment score and its breakdown.
type Score struct {
	OverallScore           float64            `json:"overall_score"`
	ScoreLabel             string             `json:"score_label"`
	ScoreRationale         string             `json:"score_rationale,omitempty"`
	DimensionScores        map[string]float64 `json:"dimension_scores,omitempty"`
	HiringRecommendation   string             `json:"hiring_recommendation"`
	ConfidenceInAssessment string             `json:"confidence_in_assessment"`
	TopActions             []string           `json:"top_3_actions"`
}

// Analysis is the qualitative part of the report.
type Analysis struct {
	OverallAssessment   string               `json:"overall_assessment,omitempty"`
	Strengths           []Finding            `json:"strengths"`
	Weaknesses          []Finding            `json:"weaknesses"`
	MissingKeywords     []MissingKeyword     `json:"missing_keywords"`
	SkillGaps           []SkillGap           `json:"skill_gaps"`
	SectionImprovements []SectionImprovement `json:"section_improvements"`
	BulletOptimizations []BulletOptimization `json:"bullet_optimizations"`
}

// Finding is a single strength or weakness.
type Finding struct {
	Point      string     `json:"point"`
	Reasoning  string     `json:"reasoning"`
	Confidence Confidence `json:"confidence"`
}

// MissingKeyword is a job-description term absent from the resume.
type MissingKeyword struct {
	Keyword    string `json:"keyword"`
	Importance Level  `json:"importance"`
	Reasoning  string `json:"reasoning"`
}

// SkillGap is a required skill the resume does not demonstrate.
type SkillGap struct {
	Skill           string `json:"skill"`
	GapSeverity     Level  `json:"gap_severity"`
	Reasoning       string `json:"reasoning"`
	SuggestedAction string `json:"suggested_action"`
}

// SectionImprovement is a suggested change to one resume section.
type SectionImprovement struct {
	Section    string `json:"section"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
	Reasoning  string `json:"reasoning"`
}

// BulletOptimization shows how a bullet pattern should be rewritten.
type BulletOptimization struct {
	OriginalPattern string `json:"original_pattern"`
	ImprovedPattern string `json:"improved_pattern"`
	ExampleBefore   string `json:"example_before"`
	ExampleAfter    string `json:"example_after"`
	Reasoning       string `json:"reasoning"`
}

// Dimension is one axis of the score breakdown.
type Dimension struct {
	Key   string
	Label string
}

// Dimensions lists the fixed score dimensions in display order.
var Dimensions = []Dimension{
	{Key: "technical_skills_match", Label: "Technical Skills"},
	{Key: "experience_relevance", Label: "Experience Relevance"},
	{Key: "keyword_coverage", Label: "Keyword Coverage"},
	{Key: "achievement_quality", Label: "Achievement Quality"},
	{Key: "presentation_quality", Label: "Presentation Quality"},
}

// DimensionValue returns the score for key, or 0 when the server omitted it.
func (s *Score) DimensionValue(key string) float64 {
	if s.DimensionScores == nil {
		return 0
	}
	return s.DimensionScores[key]
}
