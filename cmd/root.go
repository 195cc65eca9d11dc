package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skill-screener/internal/ai/gemini"
	"github.com/spigell/skill-screener/internal/evaluator"
	"github.com/spigell/skill-screener/internal/logger"
	"github.com/spigell/skill-screener/internal/notify"
	"github.com/spigell/skill-screener/internal/recruiting"
	"github.com/spigell/skill-screener/internal/storage"
)

const (
	app = "skill-screener"
)

type Config struct {
	Database   storage.Config   `mapstructure:"database"`
	AI         AIConfig         `mapstructure:"ai"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	SkillsFile string           `mapstructure:"skills-file"`
	Jobs       recruiting.Jobs  `mapstructure:"jobs" validate:"dive"`
	Screening  evaluator.Config `mapstructure:"screening"`
}

type AIConfig struct {
	Provider string       `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key" json:"-"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	gemini.Options `mapstructure:",squash"`
}

type SMTPConfig struct {
	notify.SMTPConfig `mapstructure:",squash"`
	PasswordFile      string `mapstructure:"password-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skill-screener matches résumés against job requirements and invites qualified candidates",
	}
)

// Execute executes the root command. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	envs := map[string]string{
		"database.dsn":           "DATABASE_URL",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"smtp.password-file":     "SMTP_PASSWORD_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("database.driver", storage.DriverSQLite)
	viper.SetDefault("database.dsn", app+".db")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("screening.minimum-match-score", evaluator.DefaultMinimumMatchScore)
	viper.SetDefault("smtp.port", 587)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skill-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A .env file is optional.
	_ = godotenv.Load()

	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// Without an explicit --config the built-in defaults are enough.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if len(config.Jobs) == 0 {
		config.Jobs = recruiting.DefaultJobs()
	}

	return config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}
