// Package analysis submits a résumé and a job description to the remote
// analysis endpoint and returns its raw answer.
package analysis

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/normalize"
)

const (
	userAgent = "spigell/resume-matcher"

	// Multipart field names expected by the analysis endpoint.
	FieldJobDescription = "jobDescription"
	FieldResume         = "resume"

	RequestIDHeader = "X-Request-ID"

	defaultMaxLogLength = 200
)

// Options tune a Client. Zero values keep the defaults.
type Options struct {
	// Token is sent as a bearer token when set.
	Token string
	// Timeout bounds the whole request. Zero leaves it to the context.
	Timeout      time.Duration
	UserAgent    string
	MaxLogLength int
}

type Client struct {
	logger    *zap.Logger
	endpoint  string
	token     string
	maxLogLen int

	HTTPClient *http.Client
	UserAgent  string

	// newRequestID and newForm are swapped in tests.
	newRequestID func() string
	newForm      func(doc *Document, jobDescription string) (*bytes.Buffer, string, error)
}

// New returns a client for the analysis endpoint at rawURL.
func New(log *zap.Logger, rawURL string, opts Options) (*Client, error) {
	endpoint, err := parseEndpoint(rawURL)
	if err != nil {
		return nil, err
	}

	agent := strings.TrimSpace(opts.UserAgent)
	if agent == "" {
		agent = userAgent
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Client{
		logger:    logger.WithFields(log, logger.StringFields(logger.StringField{Key: logger.FieldEndpoint, Value: endpoint})...),
		endpoint:  endpoint,
		token:     strings.TrimSpace(opts.Token),
		maxLogLen: maxLogLen,
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		UserAgent:    agent,
		newRequestID: uuid.NewString,
		newForm:      buildForm,
	}, nil
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit sends one analysis request. The job description is normalized
// before it is sent; the returned response is not interpreted.
func (c *Client) Submit(ctx context.Context, doc *Document, jobDescription string) (*RawResponse, error) {
	if doc == nil {
		return nil, &Error{Kind: KindValidation, Err: ErrMissingResume}
	}

	if normalize.IsBlank(jobDescription) {
		return nil, &Error{Kind: KindValidation, Err: ErrMissingJobDescription}
	}

	return c.postAnalysis(ctx, doc, normalize.Text(jobDescription))
}

func parseEndpoint(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("analysis endpoint is not configured")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing analysis endpoint: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("analysis endpoint must be an http(s) url, got %q", rawURL)
	}

	if u.Host == "" {
		return "", fmt.Errorf("analysis endpoint has no host: %q", rawURL)
	}

	return u.String(), nil
}
