package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skill-screener/internal/ai"
	"github.com/spigell/skill-screener/internal/ai/gemini"
	"github.com/spigell/skill-screener/internal/document"
	"github.com/spigell/skill-screener/internal/evaluator"
	"github.com/spigell/skill-screener/internal/logger"
	"github.com/spigell/skill-screener/internal/matching"
	"github.com/spigell/skill-screener/internal/notify"
	"github.com/spigell/skill-screener/internal/recruiting"
	"github.com/spigell/skill-screener/internal/secrets"
	"github.com/spigell/skill-screener/internal/skills"
	"github.com/spigell/skill-screener/internal/storage"
)

const (
	PromptYes               = "Yes"
	PromptNo                = "No"
	PromptReportByJobs      = "Report by jobs"
	PromptEvaluationsToFile = "Dump evaluations to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Send invitations?",
	Items: []string{PromptYes, PromptNo, PromptReportByJobs, PromptEvaluationsToFile},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract a résumé, screen the candidate and invite them to qualified jobs",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "résumé file (.txt, .md, .html)")
	runCmd.MarkFlagRequired("resume")
	addScreeningFlags(runCmd)
}

func addScreeningFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("do-not-exclude-invited", "f", false, "do not skip jobs the candidate was already invited to")
	cmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before sending invitations")
	cmd.Flags().Bool("dry-run", false, "log invitations instead of sending them")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := cmd.Context()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the skill-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	resume, _ := cmd.Flags().GetString("resume")
	text, err := document.ExtractText(resume)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	logger.Info("resume loaded", zap.String("file", resume), zap.Int("length", len([]rune(text))))

	extractor, err := newExtractor(ctx, &config.AI, logger)
	if err != nil {
		logger.Fatal("building extractor", zap.Error(err))
	}

	candidate, err := extractor.Extract(ctx, text)
	if err != nil {
		logger.Fatal("extracting candidate", zap.Error(err))
	}

	store, err := storage.Open(ctx, config.Database)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}
	defer store.Close()

	if _, err := store.SaveCandidate(ctx, candidate); err != nil {
		logger.Fatal("saving candidate", zap.Error(err))
	}

	logger.Info("candidate saved",
		zap.Int64("candidate_id", candidate.ID),
		zap.String("name", candidate.Name),
		zap.Strings("skills", candidate.Skills),
	)

	if err := screen(ctx, cmd, logger, config, store, candidate); err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
}

// screen evaluates the candidate and asks what to do with the qualified jobs.
func screen(ctx context.Context, cmd *cobra.Command, logger *zap.Logger, config *Config, store storage.Store, candidate *recruiting.Candidate) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	sender, err := newSender(&config.SMTP, dryRun, logger)
	if err != nil {
		return err
	}

	screening := config.Screening
	if ignore, _ := cmd.Flags().GetBool("do-not-exclude-invited"); ignore {
		screening.IgnoreInvited = true
	}

	ev, err := newEvaluator(logger, config.SkillsFile, screening, sender, store)
	if err != nil {
		return err
	}

	result, err := ev.Screen(ctx, candidate, config.Jobs)
	if err != nil {
		return err
	}

	if result.Qualified.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no qualified jobs"))
		return ev.Record(ctx, result)
	}

	action := PromptYes
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				return err
			}
		}

		logger.Info("current list of qualified jobs", zap.Int("count", result.Qualified.Len()))

		if err := handleAction(ctx, action, ev, logger, result); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

func handleAction(ctx context.Context, action string, ev *evaluator.Evaluator, logger *zap.Logger, result *evaluator.Result) error {
	switch action {
	case PromptYes:
		notifyErr := ev.Notify(ctx, result)
		if err := ev.Record(ctx, result); err != nil {
			return errors.Join(notifyErr, err)
		}
		if notifyErr != nil {
			return notifyErr
		}
		logger.Info("invitations sent", zap.Int("count", result.NotificationsSent))
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		if err := ev.Record(ctx, result); err != nil {
			return err
		}
		return errExit
	case PromptReportByJobs:
		pretty, _ := json.MarshalIndent(result.Evaluations.ReportByJob(), "", "  ")
		logger.Info(string(pretty), zap.Int("jobs count", result.Evaluations.Len()))
		return nil
	case PromptEvaluationsToFile:
		filename, err := result.Evaluations.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func newEvaluator(logger *zap.Logger, skillsFile string, screening evaluator.Config, sender notify.Sender, store storage.Store) (*evaluator.Evaluator, error) {
	table, err := skills.Load(skillsFile)
	if err != nil {
		return nil, err
	}

	deps := evaluator.Deps{
		Logger:  logger,
		Matcher: matching.NewMatcher(table),
		Sender:  sender,
	}
	if store != nil {
		deps.Store = store
	}

	return evaluator.New(screening, deps)
}

func newSender(cfg *SMTPConfig, dryRun bool, logger *zap.Logger) (notify.Sender, error) {
	if dryRun {
		return notify.NewDryRun(logger), nil
	}

	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp.host is not configured (use --dry-run to only log invitations)")
	}

	password, err := secrets.Optional(secrets.Source{
		Name:  "smtp password",
		Value: cfg.Password,
		Env:   "SMTP_PASSWORD",
		File:  cfg.PasswordFile,
	})
	if err != nil {
		return nil, err
	}

	smtpCfg := cfg.SMTPConfig
	smtpCfg.Password = password

	return notify.NewSMTP(smtpCfg, logger.With(zap.String("smtp_host", cfg.Host)))
}

func newExtractor(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Extractor, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	extractorLogger := logger.WithFields(log, logger.ModelFields("gemini", generator.Model())...)
	return gemini.NewExtractor(generator, extractorLogger, cfg.Gemini.Options)
}
