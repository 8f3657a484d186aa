package leadscore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continu8/backoffice/internal/domain"
)

var (
	allRevenue = []domain.RevenueRange{
		domain.RevenueUnder5M, domain.Revenue5MTo10M, domain.Revenue10MTo25M, domain.Revenue25MTo50M,
		domain.Revenue50MTo100M, domain.Revenue100MTo200M, domain.RevenueOver200M,
	}
	allBudget = []domain.BudgetRange{
		domain.BudgetUnder30K, domain.Budget30KTo60K, domain.Budget60KTo100K,
		domain.Budget100KTo150K, domain.BudgetOver150K, domain.BudgetNotSure,
	}
	allAuthority = []domain.DecisionAuthority{
		domain.AuthorityFinalDecisionMaker, domain.AuthorityKeyInfluencer,
		domain.AuthorityPartOfCommittee, domain.AuthorityGatheringInfo,
	}
	allTimeline = []domain.Timeline{
		domain.TimelineUrgent, domain.TimelineSoon, domain.TimelinePlanning, domain.TimelineExploring,
	}
	allDecision = []domain.DecisionTimeframe{
		domain.DecisionReadyNow, domain.DecisionWithinMonth,
		domain.DecisionWithinQuarter, domain.DecisionJustExploring,
	}
)

func TestEvaluate_HotLeadMeetsCriteria(t *testing.T) {
	result := Evaluate(Answers{
		AnnualRevenue:     domain.Revenue100MTo200M,
		MonthlyBudget:     domain.Budget60KTo100K,
		DecisionAuthority: domain.AuthorityFinalDecisionMaker,
		Timeline:          domain.TimelineUrgent,
		DecisionTimeframe: domain.DecisionReadyNow,
	})

	assert.Equal(t, Breakdown{Revenue: 40, Budget: 25, Authority: 15, Timeline: 10, Decision: 5}, result.Breakdown)
	assert.Equal(t, 95, result.Score)
	assert.Equal(t, domain.LeadTierHot, result.Tier)
	assert.True(t, result.MeetsIdealCriteria)
	assert.Empty(t, result.QualificationNotes)
}

func TestEvaluate_SmallProspectFailsBothFloors(t *testing.T) {
	result := Evaluate(Answers{
		AnnualRevenue:     domain.RevenueUnder5M,
		MonthlyBudget:     domain.BudgetUnder30K,
		DecisionAuthority: domain.AuthorityFinalDecisionMaker,
		Timeline:          domain.TimelineUrgent,
		DecisionTimeframe: domain.DecisionReadyNow,
	})

	assert.Equal(t, 30, result.Score)
	assert.Equal(t, domain.LeadTierCold, result.Tier)
	assert.False(t, result.MeetsIdealCriteria)
	assert.Equal(t, "Revenue below R10m; Budget below R60k/month", result.QualificationNotes)
}

func TestScore_UnknownBucketsScoreZero(t *testing.T) {
	b := Score(Answers{
		AnnualRevenue:     "a_lot",
		MonthlyBudget:     "",
		DecisionAuthority: "ceo",
		Timeline:          "yesterday",
		DecisionTimeframe: "soonish",
	})
	assert.Equal(t, Breakdown{}, b)

	mixed := Score(Answers{AnnualRevenue: domain.RevenueOver200M, MonthlyBudget: "mystery"})
	assert.Equal(t, 40, mixed.Total())
}

func TestScore_AlwaysWithinRangeAndDeterministic(t *testing.T) {
	maxSeen := 0
	for _, rev := range allRevenue {
		for _, bud := range allBudget {
			for _, auth := range allAuthority {
				for _, tl := range allTimeline {
					for _, dec := range allDecision {
						a := Answers{rev, bud, auth, tl, dec}
						first := Evaluate(a)
						second := Evaluate(a)
						require.Equal(t, first, second)
						require.GreaterOrEqual(t, first.Score, 0)
						require.LessOrEqual(t, first.Score, MaxScore)
						if first.Score > maxSeen {
							maxSeen = first.Score
						}
					}
				}
			}
		}
	}
	assert.Equal(t, MaxScore, maxSeen)
}

func TestTierFor_Boundaries(t *testing.T) {
	cases := []struct {
		score int
		want  domain.LeadTier
	}{
		{100, domain.LeadTierHot},
		{80, domain.LeadTierHot},
		{79, domain.LeadTierWarm},
		{60, domain.LeadTierWarm},
		{59, domain.LeadTierQualified},
		{40, domain.LeadTierQualified},
		{39, domain.LeadTierCold},
		{0, domain.LeadTierCold},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierFor(tc.score), "score %d", tc.score)
	}
}

func TestIdealCriteria_TruthTable(t *testing.T) {
	for _, rev := range allRevenue {
		for _, bud := range allBudget {
			lowRevenue := rev == domain.RevenueUnder5M || rev == domain.Revenue5MTo10M
			lowBudget := bud == domain.BudgetUnder30K || bud == domain.Budget30KTo60K

			meets, notes := IdealCriteria(rev, bud)

			assert.Equal(t, !(lowRevenue || lowBudget), meets, "%s/%s", rev, bud)
			assert.Equal(t, lowRevenue, containsNote(notes, noteRevenueShortfall), "%s/%s", rev, bud)
			assert.Equal(t, lowBudget, containsNote(notes, noteBudgetShortfall), "%s/%s", rev, bud)
			if meets {
				assert.Empty(t, notes)
			}
		}
	}
}

func containsNote(notes, note string) bool {
	for _, part := range strings.Split(notes, "; ") {
		if part == note {
			return true
		}
	}
	return false
}
