package result

import (
	"reflect"
	"strings"
	"testing"
)

func TestFormatRoundTrip(t *testing.T) {
	in := AnalysisResult{
		Score:           87,
		Strengths:       []string{"Strong Go background", "Led a team of 5"},
		Weaknesses:      []string{},
		Recommendations: []string{"Add metrics to achievements"},
	}

	text := Format(in)

	if !strings.HasPrefix(text, "**Match Percentage:** 87%") {
		t.Fatalf("unexpected header: %q", text)
	}

	got := Parse(text)
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("round trip mismatch:\n got: %#v\nwant: %#v\ntext:\n%s", got, in, text)
	}
}

func TestFormatSkipsBlankItemsAndClamps(t *testing.T) {
	text := Format(AnalysisResult{Score: 140, Strengths: []string{" ", "Go"}})

	if !strings.Contains(text, "**Match Percentage:** 100%") {
		t.Fatalf("expected clamped score, got %q", text)
	}
	if !strings.Contains(text, "**Strengths:**\n1. Go") {
		t.Fatalf("expected renumbered items, got %q", text)
	}
}
