package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/qntmpulse/pulse/internal/domain"
	"github.com/qntmpulse/pulse/internal/evaluation"
)

// draftFile is the YAML shape accepted by the score command.
type draftFile struct {
	Text    string `yaml:"text"`
	Options []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"options"`
	Criteria []struct {
		ID     string `yaml:"id"`
		Name   string `yaml:"name"`
		Weight int    `yaml:"weight"`
	} `yaml:"criteria"`
	// Scores maps option id -> criterion id -> score in [1, 5].
	Scores map[string]map[string]int `yaml:"scores"`
}

// scoredRow is one line of score command output.
type scoredRow struct {
	Rank   int     `json:"rank"`
	Option string  `json:"option"`
	Score  float64 `json:"score"`
}

// AddScoreCommand adds the score command to the root command.
func AddScoreCommand(root *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "score <draft.yaml>",
		Short: "Rank a decision draft's options by weighted score",
		Long: `Reads a decision draft from a YAML file and prints the options ranked by
their weighted mean score. Unscored option/criterion pairs are excluded
from the mean rather than counted as zero; fully unscored options sink to
the bottom. Ties keep the file's option order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := readDraftFile(args[0])
			if err != nil {
				return err
			}

			ranked := evaluation.Rank(draft)
			rows := make([]scoredRow, len(ranked))
			for i, r := range ranked {
				rows[i] = scoredRow{Rank: i + 1, Option: r.Option.Name, Score: r.Score}
			}

			if flags.Output == OutputJSON {
				out, err := json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return fmt.Errorf("render results: %w", err)
				}
				cmd.Println(string(out))
				return nil
			}

			if draft.Text != "" {
				cmd.Printf("%s\n\n", draft.Text)
			}
			for _, row := range rows {
				cmd.Printf("%d. %s (%.1f)\n", row.Rank, row.Option, row.Score)
			}
			return nil
		},
	}
	root.AddCommand(cmd)
}

// readDraftFile parses a draft YAML file into a domain draft.
func readDraftFile(path string) (domain.DecisionDraft, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-supplied path is the point
	if err != nil {
		return domain.DecisionDraft{}, fmt.Errorf("read draft file: %w", err)
	}

	var file draftFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.DecisionDraft{}, fmt.Errorf("parse draft file: %w", err)
	}

	draft := domain.DecisionDraft{
		Text:   file.Text,
		Scores: make(domain.ScoreMatrix),
	}
	for _, o := range file.Options {
		draft.Options = append(draft.Options, domain.Option{ID: o.ID, Name: o.Name})
	}
	for _, c := range file.Criteria {
		draft.Criteria = append(draft.Criteria, domain.Criterion{ID: c.ID, Name: c.Name, Weight: c.Weight})
	}
	for optID, byCriterion := range file.Scores {
		for critID, score := range byCriterion {
			draft.Scores[domain.ScoreKey(optID, critID)] = score
		}
	}
	return draft, nil
}
