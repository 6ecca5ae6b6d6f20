package analyzer

import (
	"context"
	"hash/fnv"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/normalize"
	"github.com/spigell/resume-matcher/internal/result"
	"github.com/spigell/resume-matcher/internal/utils"
)

const (
	mockMinScore  = 60
	mockScoreSpan = 40
)

var (
	mockStrengths = []string{
		"Strong technical skills in React and TypeScript",
		"Relevant work experience in frontend development",
		"Good understanding of modern development practices",
		"Experience with version control systems",
	}
	mockWeaknesses = []string{
		"Limited experience with backend technologies",
		"No mention of testing frameworks",
		"Could improve cloud deployment knowledge",
		"Missing specific project metrics and achievements",
	}
	mockRecommendations = []string{
		"Highlight specific achievements with quantifiable results",
		"Add experience with testing frameworks like Jest or Cypress",
		"Include any cloud platform experience (AWS, Azure, GCP)",
		"Emphasize teamwork and collaboration skills",
		"Consider adding relevant certifications",
	}
)

// Mock answers with canned feedback and a score between 60 and 99 derived
// from the inputs, so the same submission always gets the same answer.
type Mock struct {
	delay  time.Duration
	logger *zap.Logger
}

func NewMock(delay time.Duration, logger *zap.Logger) *Mock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mock{delay: delay, logger: logger}
}

func (m *Mock) Name() string { return ProviderMock }

func (m *Mock) Analyze(ctx context.Context, resume *analysis.Document, jobDescription string) (string, error) {
	if err := validate(resume, jobDescription); err != nil {
		return "", err
	}

	if m.delay > 0 {
		m.logger.Debug("mock analyzer delaying answer", zap.Duration("delay", m.delay))
		if err := utils.WaitFor(ctx, m.delay); err != nil {
			return "", err
		}
	}

	return result.Format(result.AnalysisResult{
		Score:           mockScore(resume.Content, normalize.Text(jobDescription)),
		Strengths:       mockStrengths,
		Weaknesses:      mockWeaknesses,
		Recommendations: mockRecommendations,
	}), nil
}

func mockScore(resume []byte, jobDescription string) int {
	h := fnv.New32a()
	_, _ = h.Write(resume)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(jobDescription))
	return mockMinScore + int(h.Sum32()%mockScoreSpan)
}
