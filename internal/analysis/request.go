package analysis

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/utils"
)

const (
	acceptEncoding = "gzip"
	octetStream    = "application/octet-stream"
)

func (c *Client) postAnalysis(ctx context.Context, doc *Document, jobDescription string) (*RawResponse, error) {
	body, contentType, err := c.newForm(doc, jobDescription)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("building analysis form: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}

	requestID := c.newRequestID()
	req = c.setHeaders(req, requestID)
	req.Header.Set("Content-Type", contentType)

	log := logger.WithFields(c.logger, zap.String(logger.FieldRequestID, requestID))
	log.Debug("submitting analysis request",
		zap.String("resume", doc.Name),
		zap.Int64("resume_size", doc.Size),
		zap.String("resume_content_type", doc.ContentType),
		zap.Int("job_description_length", utf8.RuneCountInString(jobDescription)),
	)

	resp, err := c.request(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	// The body is read whatever the status so failures keep their diagnostics.
	data, err := readBody(resp)
	if err != nil {
		return nil, &Error{Kind: KindTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	log.Debug("got analysis response",
		zap.Int("status", resp.StatusCode),
		zap.Int("response_length", len(data)),
		zap.String("response_preview", utils.TruncateForLog(string(data), c.maxLogLen)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &Error{Kind: KindServer, StatusCode: resp.StatusCode, Body: string(data)}
	}

	raw, err := DecodeResponse(data)
	if err != nil {
		return nil, &Error{Kind: KindMalformedResponse, StatusCode: resp.StatusCode, Body: string(data), Err: err}
	}

	return raw, nil
}

// buildForm writes the two multipart fields the endpoint expects.
func buildForm(doc *Document, jobDescription string) (*bytes.Buffer, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	field, err := w.CreateFormField(FieldJobDescription)
	if err != nil {
		return nil, "", err
	}

	if _, err = io.Copy(field, strings.NewReader(jobDescription)); err != nil {
		return nil, "", err
	}

	contentType := strings.TrimSpace(doc.ContentType)
	if contentType == "" {
		contentType = octetStream
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(FieldResume), escapeQuotes(doc.Name)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}

	if _, err = part.Write(doc.Content); err != nil {
		return nil, "", err
	}

	if err = w.Close(); err != nil {
		return nil, "", err
	}

	return &b, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request, requestID string) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set(RequestIDHeader, requestID)

	return req
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(reader)
}
