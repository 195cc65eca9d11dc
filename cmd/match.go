package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skill-screener/internal/recruiting"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a list of skills against the configured jobs without storing or sending anything",
	RunE:  match,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringSlice("skills", nil, "comma separated candidate skills")
	matchCmd.Flags().Float64("experience", 0, "candidate experience in years")
	matchCmd.Flags().String("job", "", "only score the job with this title")
	matchCmd.MarkFlagRequired("skills")
}

func match(cmd *cobra.Command, _ []string) error {
	logger := zap.NewNop()
	if viper.GetBool("debug") {
		logger = newLogger()
	}

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	candidate := &recruiting.Candidate{Name: "ad-hoc"}
	candidate.Skills, _ = cmd.Flags().GetStringSlice("skills")
	if cmd.Flags().Changed("experience") {
		years, _ := cmd.Flags().GetFloat64("experience")
		candidate.TotalExperience = &years
	}

	jobs := config.Jobs
	if title, _ := cmd.Flags().GetString("job"); title != "" {
		job := jobs.FindByTitle(title)
		if job == nil {
			return fmt.Errorf("job %q not found, available: %v", title, jobs.Titles())
		}
		jobs = recruiting.Jobs{job}
	}

	ev, err := newEvaluator(logger, config.SkillsFile, config.Screening, nil, nil)
	if err != nil {
		return err
	}

	result, err := ev.Screen(cmd.Context(), candidate, jobs)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result.Evaluations.ReportByJob())
}
