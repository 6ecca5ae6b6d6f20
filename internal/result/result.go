// Package result recovers a typed match assessment from the free-form text
// the analysis service produces.
//
// The service output is only loosely structured, so parsing is pattern based
// and never fails: anything that cannot be found falls back to a zero score
// or an empty list.
package result

import (
	"strconv"
)

// Section labels as they appear in the bold headers of the service output.
const (
	LabelStrengths       = "Strengths"
	LabelWeaknesses      = "Areas for Improvement"
	LabelRecommendations = "Recommendations"
)

// Bounds of a parsed score.
const (
	MinScore = 0
	// MaxScore caps the score; larger values in the text are clamped to it.
	MaxScore = 100
)

var (
	strengthsHeader       = headerPattern(LabelStrengths)
	weaknessesHeader      = headerPattern(LabelWeaknesses)
	recommendationsHeader = headerPattern(LabelRecommendations)
)

// AnalysisResult is the structured form of one analysis response.
type AnalysisResult struct {
	Score           int      `json:"score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// Parse extracts the score and the three sections from text.
func Parse(text string) AnalysisResult {
	return AnalysisResult{
		Score:           Score(text),
		Strengths:       listItems(sectionBody(text, strengthsHeader)),
		Weaknesses:      listItems(sectionBody(text, weaknessesHeader)),
		Recommendations: listItems(sectionBody(text, recommendationsHeader)),
	}
}

// Score returns the "Match Percentage" value found in text, clamped to
// [MinScore, MaxScore]. A missing or unparsable value yields 0.
func Score(text string) int {
	digits, ok := scorePattern.find(text)
	if !ok {
		return 0
	}

	score, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}

	return clamp(score)
}

// Section returns the list items under the bold header for label.
func Section(text, label string) []string {
	return listItems(sectionBody(text, headerPattern(label)))
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// IsEmpty reports whether nothing at all was recovered.
func (r AnalysisResult) IsEmpty() bool {
	return r.Score == 0 && len(r.Strengths) == 0 && len(r.Weaknesses) == 0 && len(r.Recommendations) == 0
}

// Rating buckets a score the same way the result view colours it.
type Rating string

const (
	RatingStrong   Rating = "strong"
	RatingModerate Rating = "moderate"
	RatingWeak     Rating = "weak"
)

// RatingFor returns the band score falls in.
func RatingFor(score int) Rating {
	switch {
	case score >= 80:
		return RatingStrong
	case score >= 60:
		return RatingModerate
	default:
		return RatingWeak
	}
}

// Rating returns the band of r.Score.
func (r AnalysisResult) Rating() Rating {
	return RatingFor(r.Score)
}
