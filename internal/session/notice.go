package session

import (
	"errors"
	"fmt"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/utils"
)

// Severity tells the presenter how to style a notice.
type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

const noticeBodyLimit = 160

// Notice is a short user-facing message about a validation or outcome event.
type Notice struct {
	Title       string
	Description string
	Severity    Severity
}

// Notifier receives notices. Implementations must be safe for use from the
// goroutine that completes a submission.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) {
	if f != nil {
		f(n)
	}
}

func missingResumeNotice() Notice {
	return Notice{
		Title:       "Missing Resume",
		Description: "Please upload your resume file first.",
		Severity:    SeverityDestructive,
	}
}

func missingJobDescriptionNotice() Notice {
	return Notice{
		Title:       "Missing Job Description",
		Description: "Please provide a job description for analysis.",
		Severity:    SeverityDestructive,
	}
}

func successNotice() Notice {
	return Notice{
		Title:       "Analysis Complete!",
		Description: "Your resume has been analyzed successfully.",
		Severity:    SeverityDefault,
	}
}

func cancelledNotice() Notice {
	return Notice{
		Title:       "Analysis Cancelled",
		Description: "The analysis request was cancelled before it finished.",
		Severity:    SeverityDefault,
	}
}

func failureNotice(err error) Notice {
	return Notice{
		Title:       "Analysis Failed",
		Description: Describe(err),
		Severity:    SeverityDestructive,
	}
}

// Describe turns a submission error into a message fit for the user.
func Describe(err error) string {
	var analysisErr *analysis.Error
	if !errors.As(err, &analysisErr) {
		return "Something went wrong. Please try again."
	}

	switch analysisErr.Kind {
	case analysis.KindServer:
		body := utils.TruncateForLog(analysisErr.Body, noticeBodyLimit)
		if body == "" {
			return fmt.Sprintf("The analysis service reported a server error (HTTP %d).", analysisErr.StatusCode)
		}
		return fmt.Sprintf("The analysis service reported a server error (HTTP %d): %s", analysisErr.StatusCode, body)
	case analysis.KindMalformedResponse:
		return "The analysis service returned an invalid response."
	case analysis.KindTransport:
		return fmt.Sprintf("Could not reach the analysis service: %v", analysisErr.Err)
	case analysis.KindValidation:
		return fmt.Sprintf("Invalid input: %v", analysisErr.Err)
	default:
		return "Something went wrong. Please try again."
	}
}
