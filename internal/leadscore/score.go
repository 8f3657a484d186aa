// Package leadscore qualifies prospects from their intake-form answers.
package leadscore

import (
	"strings"

	"github.com/continu8/backoffice/internal/domain"
)

// MaxScore is the sum of every factor's maximum.
const MaxScore = 100

// Answers are the intake answers that contribute to the score. Values are
// kept as plain strings so an unrecognised bucket scores zero instead of
// failing.
type Answers struct {
	AnnualRevenue     domain.RevenueRange
	MonthlyBudget     domain.BudgetRange
	DecisionAuthority domain.DecisionAuthority
	Timeline          domain.Timeline
	DecisionTimeframe domain.DecisionTimeframe
}

// Breakdown lists the points contributed by each factor.
type Breakdown struct {
	Revenue   int
	Budget    int
	Authority int
	Timeline  int
	Decision  int
}

// Total sums the factor points.
func (b Breakdown) Total() int {
	return b.Revenue + b.Budget + b.Authority + b.Timeline + b.Decision
}

// Result is the full qualification outcome for one set of answers.
type Result struct {
	Score              int
	Breakdown          Breakdown
	Tier               domain.LeadTier
	MeetsIdealCriteria bool
	// QualificationNotes is empty when the lead meets the criteria.
	QualificationNotes string
}

var revenuePoints = map[domain.RevenueRange]int{
	domain.RevenueUnder5M:    0,
	domain.Revenue5MTo10M:    10,
	domain.Revenue10MTo25M:   20,
	domain.Revenue25MTo50M:   30,
	domain.Revenue50MTo100M:  35,
	domain.Revenue100MTo200M: 40,
	domain.RevenueOver200M:   40,
}

var budgetPoints = map[domain.BudgetRange]int{
	domain.BudgetUnder30K:   0,
	domain.Budget30KTo60K:   10,
	domain.Budget60KTo100K:  25,
	domain.Budget100KTo150K: 30,
	domain.BudgetOver150K:   30,
	domain.BudgetNotSure:    15,
}

var authorityPoints = map[domain.DecisionAuthority]int{
	domain.AuthorityFinalDecisionMaker: 15,
	domain.AuthorityKeyInfluencer:      10,
	domain.AuthorityPartOfCommittee:    5,
	domain.AuthorityGatheringInfo:      0,
}

var timelinePoints = map[domain.Timeline]int{
	domain.TimelineUrgent:    10,
	domain.TimelineSoon:      8,
	domain.TimelinePlanning:  5,
	domain.TimelineExploring: 2,
}

var decisionPoints = map[domain.DecisionTimeframe]int{
	domain.DecisionReadyNow:      5,
	domain.DecisionWithinMonth:   4,
	domain.DecisionWithinQuarter: 2,
	domain.DecisionJustExploring: 0,
}

// Score computes the per-factor breakdown. Missing map keys read as zero.
func Score(a Answers) Breakdown {
	return Breakdown{
		Revenue:   revenuePoints[a.AnnualRevenue],
		Budget:    budgetPoints[a.MonthlyBudget],
		Authority: authorityPoints[a.DecisionAuthority],
		Timeline:  timelinePoints[a.Timeline],
		Decision:  decisionPoints[a.DecisionTimeframe],
	}
}

// TierFor buckets a score.
func TierFor(score int) domain.LeadTier {
	switch {
	case score >= 80:
		return domain.LeadTierHot
	case score >= 60:
		return domain.LeadTierWarm
	case score >= 40:
		return domain.LeadTierQualified
	default:
		return domain.LeadTierCold
	}
}

const (
	noteRevenueShortfall = "Revenue below R10m"
	noteBudgetShortfall  = "Budget below R60k/month"
)

// RevenueBelowFloor reports whether revenue is under the R10m floor.
func RevenueBelowFloor(r domain.RevenueRange) bool {
	return r == domain.RevenueUnder5M || r == domain.Revenue5MTo10M
}

// BudgetBelowFloor reports whether budget is under the R60k/month floor.
func BudgetBelowFloor(b domain.BudgetRange) bool {
	return b == domain.BudgetUnder30K || b == domain.Budget30KTo60K
}

// IdealCriteria checks the revenue and budget floors and explains any miss.
func IdealCriteria(revenue domain.RevenueRange, budget domain.BudgetRange) (bool, string) {
	var notes []string
	if RevenueBelowFloor(revenue) {
		notes = append(notes, noteRevenueShortfall)
	}
	if BudgetBelowFloor(budget) {
		notes = append(notes, noteBudgetShortfall)
	}
	return len(notes) == 0, strings.Join(notes, "; ")
}

// Evaluate runs the whole qualification for a set of answers.
func Evaluate(a Answers) Result {
	breakdown := Score(a)
	total := breakdown.Total()
	meets, notes := IdealCriteria(a.AnnualRevenue, a.MonthlyBudget)
	return Result{
		Score:              total,
		Breakdown:          breakdown,
		Tier:               TierFor(total),
		MeetsIdealCriteria: meets,
		QualificationNotes: notes,
	}
}
