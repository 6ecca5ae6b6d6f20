// Package analyzer holds the backends behind the local analysis endpoint.
package analyzer

import (
	"context"
	"fmt"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/normalize"
)

const (
	ProviderMock   = "mock"
	ProviderGemini = "gemini"
)

// Analyzer turns a résumé and a job description into the free-text
// assessment served as the "result" field.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, resume *analysis.Document, jobDescription string) (string, error)
}

func validate(resume *analysis.Document, jobDescription string) error {
	if resume == nil || resume.Size == 0 {
		return analysis.ErrMissingResume
	}
	if normalize.IsBlank(jobDescription) {
		return analysis.ErrMissingJobDescription
	}
	return nil
}

// UnknownProviderError is returned for a provider name no backend answers to.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown analyzer provider %q (want %s or %s)", e.Provider, ProviderMock, ProviderGemini)
}
