package analysis

import (
	"errors"
	"fmt"

	"github.com/spigell/resume-matcher/internal/utils"
)

// Kind classifies why an analysis attempt failed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation means required input was missing; nothing was sent.
	KindValidation
	// KindServer means the endpoint answered with a non-2xx status.
	KindServer
	// KindMalformedResponse means a 2xx answer did not carry a {"result": "..."} object.
	KindMalformedResponse
	// KindTransport means the request could not complete at all.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindMalformedResponse:
		return "malformed_response"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

const errorBodyLimit = 200

var (
	ErrMissingResume         = errors.New("resume file is required")
	ErrMissingJobDescription = errors.New("job description is required")
)

// Error describes a failed analysis attempt. StatusCode and Body are kept
// for diagnostics whenever the endpoint responded.
type Error struct {
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServer:
		body := utils.TruncateForLog(e.Body, errorBodyLimit)
		if body == "" {
			return fmt.Sprintf("analysis service returned status %d", e.StatusCode)
		}
		return fmt.Sprintf("analysis service returned status %d: %s", e.StatusCode, body)
	case KindMalformedResponse:
		return fmt.Sprintf("malformed analysis response: %v", e.Err)
	case KindTransport:
		return fmt.Sprintf("analysis request failed: %v", e.Err)
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var analysisErr *Error
	if errors.As(err, &analysisErr) {
		return analysisErr.Kind
	}
	return KindUnknown
}
