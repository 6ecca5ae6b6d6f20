package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/analyzer"
	"github.com/spigell/resume-matcher/internal/logger"
)

const (
	app = "resume-matcher"
)

type Config struct {
	Analysis *AnalysisConfig `mapstructure:"analysis"`
	Resume   *ResumeConfig   `mapstructure:"resume"`
	Serve    *ServeConfig    `mapstructure:"serve"`
}

type AnalysisConfig struct {
	Endpoint     string        `mapstructure:"endpoint"`
	Token        string        `mapstructure:"token"`
	TokenFile    string        `mapstructure:"token-file"`
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user-agent"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

type ResumeConfig struct {
	MaxSize int64 `mapstructure:"max-size"`
}

type ServeConfig struct {
	Listen         string        `mapstructure:"listen"`
	Provider       string        `mapstructure:"provider"`
	AnalyzeTimeout time.Duration `mapstructure:"analyze-timeout"`
	MockDelay      time.Duration `mapstructure:"mock-delay"`
	Gemini         *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher scores a resume against a job description using a remote analysis service",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"analysis.endpoint":         "RESUME_MATCHER_ENDPOINT",
		"analysis.token-file":       "RESUME_MATCHER_TOKEN_FILE",
		"serve.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("analysis.endpoint", "http://127.0.0.1:8080/analyze")
	// No local timeout: a submission stays in flight until it is cancelled.
	viper.SetDefault("analysis.timeout", 0)
	viper.SetDefault("analysis.max-log-length", 200)
	viper.SetDefault("resume.max-size", analysis.DefaultMaxSize)
	viper.SetDefault("serve.listen", "127.0.0.1:8080")
	viper.SetDefault("serve.provider", analyzer.ProviderMock)
	viper.SetDefault("serve.analyze-timeout", 2*time.Minute)
	viper.SetDefault("serve.mock-delay", 0)
	viper.SetDefault("serve.gemini.max-retries", 3)
	viper.SetDefault("serve.gemini.max-log-length", 200)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A missing .env is normal; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless it was asked for explicitly.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func newLogger() *zap.Logger {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return logger
}
