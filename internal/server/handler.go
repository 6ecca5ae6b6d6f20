package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/analyzer"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/normalize"
)

var errBadUpload = errors.New("cannot read uploaded resume")

type analyzeResponse struct {
	Result string `json:"result"`
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "analyzer": s.analyzer.Name()})
}

// analyze answers the multipart form the analysis client sends. Failures are
// plain-text bodies so the client can surface them verbatim.
func (s *Server) analyze(c *gin.Context) {
	log := s.logger.With(zap.String(logger.FieldRequestID, requestIDFrom(c)))
	provider := s.analyzer.Name()

	if s.cfg.Accept.MaxSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Accept.MaxSize+formOverhead)
	}

	doc, jobDescription, err := s.readForm(c)
	if err != nil {
		status := statusFor(err)
		log.Info("rejected analysis request", zap.Int("status", status), zap.Error(err))
		s.metrics.observeAnalysis(provider, outcomeInvalid, 0)
		c.String(status, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.AnalyzeTimeout)
	defer cancel()

	start := time.Now()
	answer, err := s.analyzer.Analyze(ctx, doc, jobDescription)
	took := time.Since(start)
	if err != nil {
		status := statusFor(err)
		outcome := outcomeFailure
		if status < http.StatusInternalServerError {
			outcome = outcomeInvalid
		}
		log.Warn("analysis failed",
			zap.String("resume", doc.Name),
			zap.Duration("took", took),
			zap.Int("status", status),
			zap.Error(err),
		)
		s.metrics.observeAnalysis(provider, outcome, took)
		c.String(status, fmt.Sprintf("analysis failed: %v", err))
		return
	}

	s.metrics.observeAnalysis(provider, outcomeSuccess, took)
	log.Info("analysis served",
		zap.String("resume", doc.Name),
		zap.Int64("resume_size", doc.Size),
		zap.Duration("took", took),
	)

	c.JSON(http.StatusOK, analyzeResponse{Result: answer})
}

func (s *Server) readForm(c *gin.Context) (*analysis.Document, string, error) {
	header, err := c.FormFile(analysis.FieldResume)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", fmt.Errorf("%w: request exceeds %d bytes", analysis.ErrDocumentTooLarge, tooLarge.Limit)
		}
		return nil, "", fmt.Errorf("%w: %v", analysis.ErrMissingResume, err)
	}

	jobDescription := normalize.Text(c.PostForm(analysis.FieldJobDescription))
	if jobDescription == "" {
		return nil, "", analysis.ErrMissingJobDescription
	}

	f, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", errBadUpload, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", errBadUpload, err)
	}

	doc := analysis.NewDocument(header.Filename, content)
	if err := s.cfg.Accept.Check(doc); err != nil {
		return nil, "", err
	}

	return doc, jobDescription, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrMissingResume),
		errors.Is(err, analysis.ErrMissingJobDescription),
		errors.Is(err, analysis.ErrEmptyDocument),
		errors.Is(err, errBadUpload):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, analysis.ErrUnsupportedDocument):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, analyzer.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
