package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spigell/resume-matcher/internal/result"
)

const (
	OutputText = "text"
	OutputJSON = "json"
	OutputRaw  = "raw"

	noResultsMessage         = "No analysis results to display."
	noStrengthsMessage       = "No strengths identified."
	noWeaknessesMessage      = "No areas for improvement identified."
	noRecommendationsMessage = "No recommendations provided."
)

type jsonReport struct {
	result.AnalysisResult
	Rating result.Rating `json:"rating"`
}

// printResult writes the outcome of one analysis in the requested format.
// raw is the unparsed service answer and is only used by OutputRaw.
func printResult(w io.Writer, format, raw string) error {
	res := result.Parse(raw)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", OutputText:
		return printText(w, res)
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonReport{AnalysisResult: res, Rating: res.Rating()})
	case OutputRaw:
		_, err := fmt.Fprintln(w, raw)
		return err
	default:
		return fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, OutputText, OutputJSON, OutputRaw)
	}
}

func printText(w io.Writer, res result.AnalysisResult) error {
	if res.IsEmpty() {
		_, err := fmt.Fprintln(w, noResultsMessage)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Match score: %d%% (%s match)\n", res.Score, res.Rating())
	writeList(&b, "Strengths", res.Strengths, noStrengthsMessage)
	writeList(&b, "Areas for Improvement", res.Weaknesses, noWeaknessesMessage)
	writeList(&b, "Recommendations", res.Recommendations, noRecommendationsMessage)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, title string, items []string, empty string) {
	fmt.Fprintf(b, "\n%s:\n", title)
	if len(items) == 0 {
		fmt.Fprintf(b, "  %s\n", empty)
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
