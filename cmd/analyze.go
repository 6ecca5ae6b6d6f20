package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/normalize"
	"github.com/spigell/resume-matcher/internal/secrets"
	"github.com/spigell/resume-matcher/internal/session"
)

const (
	PromptRetry                = "Retry"
	PromptChangeResume         = "Choose another resume"
	PromptChangeJobDescription = "Enter another job description"
	PromptQuit                 = "Quit"

	tokenEnv = "RESUME_MATCHER_TOKEN"
)

var errExit = errors.New("exit requested")

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Submit a resume and a job description for analysis",
	Run: func(cmd *cobra.Command, _ []string) {
		runAnalyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "path to the resume file (PDF, DOC or DOCX)")
	analyzeCmd.Flags().StringP("job-description", "t", "", "job description text")
	analyzeCmd.Flags().StringP("job-description-file", "f", "", "read the job description from a file, - for stdin")
	analyzeCmd.Flags().StringP("output", "o", OutputText, "output format: text, json or raw")
	analyzeCmd.Flags().StringP("endpoint", "u", "", "analysis endpoint url")
	analyzeCmd.Flags().Bool("no-prompt", false, "never ask for missing input or retries")

	viper.BindPFlag("analysis.endpoint", analyzeCmd.Flags().Lookup("endpoint"))
}

// analyzeRun is the state one invocation of the analyze command works with.
type analyzeRun struct {
	session     *session.Session
	accept      analysis.Accept
	interactive bool
	logger      *zap.Logger

	// askResume and askJobDescription fill in missing input.
	askResume         func() error
	askJobDescription func() error
}

func runAnalyze(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Analysis == nil {
		logger.Fatal("analysis configuration is required")
	}

	logger.Debug("starting the analysis", zap.String("version", version))

	client, err := newAnalysisClient(config.Analysis, logger)
	if err != nil {
		logger.Fatal("creating the analysis client",
			zap.Error(err),
			zap.String("hint", "set RESUME_MATCHER_ENDPOINT, the --endpoint flag or analysis.endpoint in the configuration file"),
		)
	}

	accept := analysis.DefaultAccept()
	if config.Resume != nil && config.Resume.MaxSize > 0 {
		accept.MaxSize = config.Resume.MaxSize
	}

	noPrompt, _ := cmd.Flags().GetBool("no-prompt")
	run := &analyzeRun{
		session:     session.New(client, noticeLogger(logger), logger),
		accept:      accept,
		interactive: !noPrompt,
		logger:      logger,
	}
	run.askResume = run.promptResume
	run.askJobDescription = run.promptJobDescription
	defer run.session.Close()

	resumePath, _ := cmd.Flags().GetString("resume")
	if resumePath != "" {
		if err := run.selectResume(resumePath); err != nil {
			logger.Warn("resume rejected", zap.String("path", resumePath), zap.Error(err))
		}
	}

	jobDescription, err := readJobDescription(cmd, os.Stdin)
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}
	run.session.SetJobDescription(jobDescription)

	final, err := run.loop(ctx)
	if err != nil {
		if errors.Is(err, errExit) {
			logger.Info("exiting", zap.String("reason", "quit requested"))
			return
		}
		logger.Fatal("exiting", zap.Error(err))
	}

	raw := ""
	if final.Response != nil {
		raw = final.Response.Result
	}

	output, _ := cmd.Flags().GetString("output")
	if err := printResult(cmd.OutOrStdout(), output, raw); err != nil {
		logger.Fatal("printing the result", zap.Error(err))
	}
}

// loop submits until an analysis succeeds, the user quits, or a failure
// happens with prompts disabled.
func (r *analyzeRun) loop(ctx context.Context) (session.State, error) {
	for {
		if ctx.Err() != nil {
			return session.State{}, ctx.Err()
		}

		if r.interactive {
			if err := r.completeInput(); err != nil {
				return session.State{}, err
			}
		}

		task := r.session.Analyze(ctx)
		if task == nil {
			if !r.interactive {
				return session.State{}, errors.New("resume and job description are both required")
			}
			continue
		}

		// The task observes ctx itself, so waiting on it always ends.
		final, err := task.Wait(context.Background())
		if err != nil {
			return final, err
		}

		switch final.Phase {
		case session.Succeeded:
			return final, nil
		case session.Idle:
			return final, ctx.Err()
		case session.Failed:
			if !r.interactive {
				return final, fmt.Errorf("analysis failed: %w", final.Err)
			}
			if err := r.afterFailure(); err != nil {
				return final, err
			}
		}
	}
}

// completeInput asks for whatever part of the input is still missing.
func (r *analyzeRun) completeInput() error {
	in := r.session.Input()

	if in.Resume == nil {
		if err := r.askResume(); err != nil {
			return err
		}
	}

	if normalize.IsBlank(in.JobDescription) {
		if err := r.askJobDescription(); err != nil {
			return err
		}
	}

	return nil
}

func (r *analyzeRun) afterFailure() error {
	choice := promptui.Select{
		Label:  "Analysis failed. What next?",
		Items:  []string{PromptRetry, PromptChangeResume, PromptChangeJobDescription, PromptQuit},
		Stdout: os.Stderr,
	}

	_, action, err := choice.Run()
	if err != nil {
		return err
	}

	switch action {
	case PromptRetry:
		return nil
	case PromptChangeResume:
		return r.askResume()
	case PromptChangeJobDescription:
		return r.askJobDescription()
	case PromptQuit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (r *analyzeRun) promptResume() error {
	p := promptui.Prompt{
		Label:  "Path to your resume (PDF, DOC or DOCX)",
		Stdout: os.Stderr,
		Validate: func(path string) error {
			doc, err := analysis.LoadDocument(path)
			if err != nil {
				return err
			}
			return r.accept.Check(doc)
		},
	}

	path, err := p.Run()
	if err != nil {
		return err
	}

	return r.selectResume(path)
}

func (r *analyzeRun) promptJobDescription() error {
	p := promptui.Prompt{
		Label:  "Job description (text, or @path to read it from a file)",
		Stdout: os.Stderr,
		Validate: func(input string) error {
			if normalize.IsBlank(input) {
				return errors.New("job description must not be empty")
			}
			return nil
		},
	}

	input, err := p.Run()
	if err != nil {
		return err
	}

	if path, ok := strings.CutPrefix(strings.TrimSpace(input), "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading job description %q: %w", path, err)
		}
		input = string(data)
	}

	r.session.SetJobDescription(input)
	return nil
}

// selectResume loads path and keeps it only if it passes the picker rules.
func (r *analyzeRun) selectResume(path string) error {
	doc, err := analysis.LoadDocument(path)
	if err != nil {
		return err
	}

	if err := r.accept.Check(doc); err != nil {
		return err
	}

	r.logger.Info("resume selected",
		zap.String("name", doc.Name),
		zap.String("content_type", doc.ContentType),
		zap.Int64("size", doc.Size),
	)
	r.session.SelectFile(doc)
	return nil
}

func readJobDescription(cmd *cobra.Command, stdin io.Reader) (string, error) {
	text, _ := cmd.Flags().GetString("job-description")
	path, _ := cmd.Flags().GetString("job-description-file")

	if text != "" && path != "" {
		return "", errors.New("--job-description and --job-description-file are mutually exclusive")
	}

	if path == "" {
		return text, nil
	}

	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading job description from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading job description %q: %w", path, err)
	}
	return string(data), nil
}

func newAnalysisClient(cfg *AnalysisConfig, logger *zap.Logger) (*analysis.Client, error) {
	token, err := secrets.LoadOptional(secrets.Source{
		Name:  "analysis token",
		Value: cfg.Token,
		File:  cfg.TokenFile,
		Env:   tokenEnv,
	})
	if err != nil {
		return nil, err
	}

	return analysis.New(logger, cfg.Endpoint, analysis.Options{
		Token:        token,
		Timeout:      cfg.Timeout,
		UserAgent:    cfg.UserAgent,
		MaxLogLength: cfg.MaxLogLength,
	})
}

// noticeLogger shows session notices as log lines.
func noticeLogger(logger *zap.Logger) session.Notifier {
	return session.NotifierFunc(func(n session.Notice) {
		fields := []zap.Field{zap.String("details", n.Description)}
		if n.Severity == session.SeverityDestructive {
			logger.Warn(n.Title, fields...)
			return
		}
		logger.Info(n.Title, fields...)
	})
}
