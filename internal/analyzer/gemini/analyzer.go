// Package gemini backs the local analysis endpoint with Google Gemini.
package gemini

import (
	"context"
	_ "embed"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/analyzer"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/normalize"
	"github.com/spigell/resume-matcher/internal/result"
	"github.com/spigell/resume-matcher/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const (
	systemInstruction = "You are an experienced technical recruiter reviewing resumes against job descriptions. " +
		"You answer in the exact markdown layout you are given."

	defaultMaxLogLength = 200
	// Longer résumés are cut to keep the prompt within budget.
	maxResumeRunes = 20000
)

type Analyzer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAnalyzer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Analyzer{
		generator: generator,
		logger:    logger.WithAnalyzer(log, analyzer.ProviderGemini, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (a *Analyzer) Name() string { return analyzer.ProviderGemini }

func (a *Analyzer) Analyze(ctx context.Context, resume *analysis.Document, jobDescription string) (string, error) {
	if resume == nil {
		return "", analysis.ErrMissingResume
	}
	jobDescription = normalize.Text(jobDescription)
	if jobDescription == "" {
		return "", analysis.ErrMissingJobDescription
	}

	resumeText, err := analyzer.ExtractText(resume)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(resumeText) > maxResumeRunes {
		a.logger.Debug("resume text truncated",
			zap.String("resume", resume.Name),
			zap.Int("resume_length", utf8.RuneCountInString(resumeText)),
		)
		resumeText = string([]rune(resumeText)[:maxResumeRunes])
	}

	prompt := buildPrompt(resumeText, jobDescription)

	a.logger.Debug("gemini generate content request",
		zap.String("resume", resume.Name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini generate content response",
		zap.String("resume", resume.Name),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	answer := stripFences(raw)
	if answer == "" {
		return "", errors.New("gemini answer is empty")
	}

	if result.Parse(answer).IsEmpty() {
		a.logger.Warn("gemini answer has no recognizable score or sections",
			zap.String("response_preview", utils.TruncateForLog(answer, a.maxLogLen)),
		)
	}

	return answer, nil
}

func buildPrompt(resumeText, jobDescription string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume:\n{{RESUME}}\n\nJob description:\n{{JOB_DESCRIPTION}}\n"
	}

	return strings.NewReplacer(
		"{{RESUME}}", resumeText,
		"{{JOB_DESCRIPTION}}", jobDescription,
	).Replace(template)
}

// stripFences removes a markdown code fence wrapped around the whole answer.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}

	raw = strings.TrimPrefix(raw, "```")
	if nl := strings.IndexByte(raw, '\n'); nl >= 0 {
		raw = raw[nl+1:]
	} else {
		raw = ""
	}
	if idx := strings.LastIndex(raw, "```"); idx != -1 {
		raw = raw[:idx]
	}

	return strings.TrimSpace(raw)
}
