package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/analyzer"
	"github.com/spigell/resume-matcher/internal/analyzer/gemini"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/secrets"
	"github.com/spigell/resume-matcher/internal/server"
)

const geminiKeyEnv = "GEMINI_API_KEY"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local analysis endpoint backed by the mock or Gemini analyzer",
	Run: func(_ *cobra.Command, _ []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on")
	serveCmd.Flags().StringP("provider", "p", "", "analyzer backend: mock or gemini")

	viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("serve.provider", serveCmd.Flags().Lookup("provider"))
}

func runServe() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Serve == nil {
		logger.Fatal("serve configuration is required")
	}

	a, err := newAnalyzer(ctx, config.Serve, logger)
	if err != nil {
		logger.Fatal("building the analyzer",
			zap.Error(err),
			zap.String("hint", "set serve.provider to mock, or configure GEMINI_API_KEY_FILE / GEMINI_API_KEY for gemini"),
		)
	}

	accept := analysis.DefaultAccept()
	if config.Resume != nil && config.Resume.MaxSize > 0 {
		accept.MaxSize = config.Resume.MaxSize
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := server.New(server.Config{
		Listen:         config.Serve.Listen,
		AnalyzeTimeout: config.Serve.AnalyzeTimeout,
		Accept:         accept,
	}, a, logger, registry)

	logger.Info("starting the analysis server",
		zap.String("version", version),
		zap.String("listen", config.Serve.Listen),
		zap.String("provider", a.Name()),
	)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("analysis server stopped", zap.Error(err))
	}
}

func newAnalyzer(ctx context.Context, cfg *ServeConfig, logger *zap.Logger) (analyzer.Analyzer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", analyzer.ProviderMock:
		return analyzer.NewMock(cfg.MockDelay, logger), nil
	case analyzer.ProviderGemini:
		return newGeminiAnalyzer(ctx, cfg.Gemini, logger)
	default:
		return nil, &analyzer.UnknownProviderError{Provider: cfg.Provider}
	}
}

func newGeminiAnalyzer(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (analyzer.Analyzer, error) {
	if cfg == nil {
		return nil, errors.New("gemini configuration is required when serve.provider is gemini")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   geminiKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set serve.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithAnalyzer(log, analyzer.ProviderGemini, cfg.Model).With(
		zap.Int("ai_retry_attempts", cfg.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewAnalyzer(generator, log, cfg.MaxLogLength), nil
}
