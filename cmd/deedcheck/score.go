package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"deedcheck/internal/validator"
)

func scoreCmd() *cobra.Command {
	var (
		scorer string
		top    int
	)
	cmd := &cobra.Command{
		Use:   "score <county>",
		Short: "Show similarity scores of a county name against the vocabulary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, log, cfg, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = log.Sync() }()

			n := a.Normalizer
			if scorer != "" {
				n, err = validator.NewScorerRegistry().NewNormalizer(scorer, cfg.Validation.MatchThreshold)
				if err != nil {
					return err
				}
			}

			scores := n.Scores(args[0], a.Reference.Counties())
			sort.SliceStable(scores, func(i, j int) bool {
				if scores[i].Score != scores[j].Score {
					return scores[i].Score > scores[j].Score
				}
				return scores[i].Canonical < scores[j].Canonical
			})
			if top > 0 && len(scores) > top {
				scores = scores[:top]
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "COUNTY\tSCORE\tACCEPTED\n")
			for _, s := range scores {
				fmt.Fprintf(tw, "%s\t%.1f\t%v\n", s.Canonical, s.Score, s.Score >= n.Threshold())
			}
			fmt.Fprintf(tw, "\nscorer=%s threshold=%.1f\n", n.Scorer().Name(), n.Threshold())
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&scorer, "scorer", "", "similarity scorer (default from config)")
	cmd.Flags().IntVar(&top, "top", 10, "show only the best N candidates (0 for all)")
	return cmd
}
