package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skill-screener/internal/storage"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Screen a stored candidate against the configured jobs",
	Run: func(cmd *cobra.Command, _ []string) {
		evaluate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().Int64("candidate-id", 0, "id of a previously stored candidate")
	evaluateCmd.MarkFlagRequired("candidate-id")
	addScreeningFlags(evaluateCmd)
}

func evaluate(cmd *cobra.Command) {
	ctx := cmd.Context()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	id, _ := cmd.Flags().GetInt64("candidate-id")
	if id <= 0 {
		logger.Fatal("candidate id must be positive", zap.Int64("candidate_id", id))
	}

	store, err := storage.Open(ctx, config.Database)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}
	defer store.Close()

	candidate, err := store.GetCandidate(ctx, id)
	if err != nil {
		logger.Fatal("loading candidate", zap.Int64("candidate_id", id), zap.Error(err))
	}

	logger.Info("candidate loaded",
		zap.Int64("candidate_id", candidate.ID),
		zap.String("name", candidate.Name),
		zap.Int("skills", len(candidate.Skills)),
	)

	if err := screen(ctx, cmd, logger, config, store, candidate); err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}
}
