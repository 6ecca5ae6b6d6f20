package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/result"
)

func TestMockAnalyzeIsDeterministic(t *testing.T) {
	m := NewMock(0, zap.NewNop())
	doc := analysis.NewDocument("cv.pdf", []byte("%PDF-1.4 resume"))

	first, err := m.Analyze(context.Background(), doc, "Go developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := m.Analyze(context.Background(), doc, "  Go developer\r\n\r\n\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical answers for equivalent input:\n%s\n---\n%s", first, second)
	}

	parsed := result.Parse(first)
	if parsed.Score < 60 || parsed.Score > 99 {
		t.Fatalf("score out of range: %d", parsed.Score)
	}
	if len(parsed.Strengths) != len(mockStrengths) {
		t.Fatalf("expected %d strengths, got %v", len(mockStrengths), parsed.Strengths)
	}
	if len(parsed.Weaknesses) != len(mockWeaknesses) {
		t.Fatalf("expected %d weaknesses, got %v", len(mockWeaknesses), parsed.Weaknesses)
	}
	if len(parsed.Recommendations) != len(mockRecommendations) {
		t.Fatalf("expected %d recommendations, got %v", len(mockRecommendations), parsed.Recommendations)
	}
	if parsed.Recommendations[2] != "Include any cloud platform experience (AWS, Azure, GCP)" {
		t.Fatalf("unexpected recommendation: %q", parsed.Recommendations[2])
	}
}

func TestMockScoreRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		score := mockScore([]byte{byte(i), byte(i >> 8)}, "jd")
		if score < mockMinScore || score >= mockMinScore+mockScoreSpan {
			t.Fatalf("score %d out of range for input %d", score, i)
		}
	}
}

func TestMockValidation(t *testing.T) {
	m := NewMock(0, nil)

	if _, err := m.Analyze(context.Background(), nil, "jd"); !errors.Is(err, analysis.ErrMissingResume) {
		t.Fatalf("expected missing resume, got %v", err)
	}

	doc := analysis.NewDocument("cv.pdf", []byte("%PDF-1.4"))
	for _, jd := range []string{" \n ", "\u00a0\r\n", "\t\u00a0"} {
		if _, err := m.Analyze(context.Background(), doc, jd); !errors.Is(err, analysis.ErrMissingJobDescription) {
			t.Fatalf("%q: expected missing job description, got %v", jd, err)
		}
	}
}

func TestMockHonoursContext(t *testing.T) {
	m := NewMock(time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Analyze(ctx, analysis.NewDocument("cv.pdf", []byte("%PDF-1.4")), "jd")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
