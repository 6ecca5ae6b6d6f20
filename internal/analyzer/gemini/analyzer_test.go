package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/result"
)

type stubGenerator struct {
	response   string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, prompt string) (string, error) {
	s.lastSystem = system
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

const sampleAnswer = "**Match Percentage:** 81%\n\n**Strengths:**\n1. Go\n\n**Areas for Improvement:**\n1. Kubernetes\n\n**Recommendations:**\n1. Add metrics"

func TestAnalyzerAnalyze(t *testing.T) {
	stub := &stubGenerator{response: "```markdown\n" + sampleAnswer + "\n```"}
	a := NewAnalyzer(stub, zap.NewNop(), 0)

	doc := analysis.NewDocument("cv.txt", []byte("Jane Doe\nGo engineer"))

	answer, err := a.Analyze(context.Background(), doc, "  Senior Go developer\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if answer != sampleAnswer {
		t.Fatalf("expected fences stripped, got %q", answer)
	}

	parsed := result.Parse(answer)
	if parsed.Score != 81 || len(parsed.Strengths) != 1 {
		t.Fatalf("unexpected parse: %+v", parsed)
	}

	if stub.lastSystem != systemInstruction {
		t.Fatalf("unexpected system instruction: %q", stub.lastSystem)
	}
	if !strings.Contains(stub.lastPrompt, "Jane Doe\nGo engineer") {
		t.Fatalf("expected resume text in prompt: %s", stub.lastPrompt)
	}
	if !strings.Contains(stub.lastPrompt, "\"\"\"\nSenior Go developer\n\"\"\"") {
		t.Fatalf("expected normalized job description in prompt: %s", stub.lastPrompt)
	}
	if strings.Contains(stub.lastPrompt, "{{") {
		t.Fatalf("expected all placeholders replaced: %s", stub.lastPrompt)
	}
}

func TestAnalyzerValidation(t *testing.T) {
	stub := &stubGenerator{response: sampleAnswer}
	a := NewAnalyzer(stub, zap.NewNop(), 0)

	if _, err := a.Analyze(context.Background(), nil, "jd"); !errors.Is(err, analysis.ErrMissingResume) {
		t.Fatalf("expected missing resume, got %v", err)
	}

	doc := analysis.NewDocument("cv.txt", []byte("resume"))
	if _, err := a.Analyze(context.Background(), doc, "\n\n"); !errors.Is(err, analysis.ErrMissingJobDescription) {
		t.Fatalf("expected missing job description, got %v", err)
	}

	if stub.lastPrompt != "" {
		t.Fatal("generator must not be called for invalid input")
	}
}

func TestAnalyzerPropagatesGeneratorError(t *testing.T) {
	boom := errors.New("boom")
	a := NewAnalyzer(&stubGenerator{err: boom}, zap.NewNop(), 0)

	_, err := a.Analyze(context.Background(), analysis.NewDocument("cv.txt", []byte("resume")), "jd")
	if !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

func TestAnalyzerWarnsOnUnstructuredAnswer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := NewAnalyzer(&stubGenerator{response: "I cannot help with that."}, zap.New(core), 16)

	answer, err := a.Analyze(context.Background(), analysis.NewDocument("cv.txt", []byte("resume")), "jd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "I cannot help with that." {
		t.Fatalf("unexpected answer: %q", answer)
	}

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(warnings))
	}
	fields := warnings[0].ContextMap()
	if fields[logger.FieldProvider] != "gemini" || fields[logger.FieldModel] != "stub-model" {
		t.Fatalf("expected analyzer fields, got %v", fields)
	}

	for _, entry := range logs.FilterMessage("gemini generate content request").All() {
		preview, _ := entry.ContextMap()["prompt_preview"].(string)
		if len([]rune(preview)) > 16+len("...") {
			t.Fatalf("expected truncated preview, got %q", preview)
		}
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "```\nbody\n```", want: "body"},
		{in: "```md\n**A:** 1\n```  ", want: "**A:** 1"},
		{in: "```", want: ""},
		{in: "  text with ``` inside  ", want: "text with ``` inside"},
	}

	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Fatalf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
