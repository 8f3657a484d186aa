package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/continu8/backoffice/internal/domain"
	"github.com/continu8/backoffice/internal/leadscore"
)

func newScoreCmd() *cobra.Command {
	var revenue, budget, authority, timeline, timeframe string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a set of intake answers without storing a lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := leadscore.Evaluate(leadscore.Answers{
				AnnualRevenue:     domain.RevenueRange(revenue),
				MonthlyBudget:     domain.BudgetRange(budget),
				DecisionAuthority: domain.DecisionAuthority(authority),
				Timeline:          domain.Timeline(timeline),
				DecisionTimeframe: domain.DecisionTimeframe(timeframe),
			})

			out := cmd.OutOrStdout()
			b := result.Breakdown
			fmt.Fprintf(out, "score: %d/%d\n", result.Score, leadscore.MaxScore)
			fmt.Fprintf(out, "  revenue %d, budget %d, authority %d, timeline %d, decision %d\n",
				b.Revenue, b.Budget, b.Authority, b.Timeline, b.Decision)
			fmt.Fprintf(out, "tier: %s\n", result.Tier)
			fmt.Fprintf(out, "meets ideal criteria: %t\n", result.MeetsIdealCriteria)
			if result.QualificationNotes != "" {
				fmt.Fprintf(out, "notes: %s\n", result.QualificationNotes)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&revenue, "revenue", "", "annual revenue bucket, e.g. 25m_50m")
	flags.StringVar(&budget, "budget", "", "monthly budget bucket, e.g. 60k_100k")
	flags.StringVar(&authority, "authority", "", "decision authority, e.g. final_decision_maker")
	flags.StringVar(&timeline, "timeline", "", "project timeline, e.g. urgent_1_month")
	flags.StringVar(&timeframe, "timeframe", "", "decision timeframe, e.g. within_month")
	return cmd
}
