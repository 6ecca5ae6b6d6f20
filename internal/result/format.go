package result

import (
	"fmt"
	"strings"
)

// Format renders r in the layout the analysis service answers with, so that
// Parse(Format(r)) recovers r for items without markup of their own.
func Format(r AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Match Percentage:** %d%%\n", clamp(r.Score))
	writeSection(&b, LabelStrengths, r.Strengths)
	writeSection(&b, LabelWeaknesses, r.Weaknesses)
	writeSection(&b, LabelRecommendations, r.Recommendations)

	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, label string, items []string) {
	fmt.Fprintf(b, "\n**%s:**\n", label)
	n := 0
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		n++
		fmt.Fprintf(b, "%d. %s\n", n, item)
	}
}
