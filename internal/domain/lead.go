package domain

import "time"

// LeadStatus is the sales pipeline stage of a lead.
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusProposal    LeadStatus = "proposal"
	LeadStatusNegotiation LeadStatus = "negotiation"
	LeadStatusWon         LeadStatus = "won"
	LeadStatusLost        LeadStatus = "lost"
	LeadStatusConverted   LeadStatus = "converted"
)

// LeadStatuses lists every pipeline status in funnel order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusProposal,
	LeadStatusNegotiation,
	LeadStatusWon,
	LeadStatusLost,
	LeadStatusConverted,
}

// Valid reports whether s is a known pipeline status.
func (s LeadStatus) Valid() bool {
	for _, candidate := range LeadStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// LeadTier is the score-derived qualification bucket. It is display metadata
// and independent of LeadStatus.
type LeadTier string

const (
	LeadTierHot       LeadTier = "hot"
	LeadTierWarm      LeadTier = "warm"
	LeadTierQualified LeadTier = "qualified"
	LeadTierCold      LeadTier = "cold"
)

// RevenueRange buckets annual revenue.
type RevenueRange string

const (
	RevenueUnder5M    RevenueRange = "under_5m"
	Revenue5MTo10M    RevenueRange = "5m_10m"
	Revenue10MTo25M   RevenueRange = "10m_25m"
	Revenue25MTo50M   RevenueRange = "25m_50m"
	Revenue50MTo100M  RevenueRange = "50m_100m"
	Revenue100MTo200M RevenueRange = "100m_200m"
	RevenueOver200M   RevenueRange = "over_200m"
)

// BudgetRange buckets monthly budget.
type BudgetRange string

const (
	BudgetUnder30K   BudgetRange = "under_30k"
	Budget30KTo60K   BudgetRange = "30k_60k"
	Budget60KTo100K  BudgetRange = "60k_100k"
	Budget100KTo150K BudgetRange = "100k_150k"
	BudgetOver150K   BudgetRange = "over_150k"
	BudgetNotSure    BudgetRange = "not_sure"
)

// DecisionAuthority describes the contact's buying power.
type DecisionAuthority string

const (
	AuthorityFinalDecisionMaker DecisionAuthority = "final_decision_maker"
	AuthorityKeyInfluencer      DecisionAuthority = "key_influencer"
	AuthorityPartOfCommittee    DecisionAuthority = "part_of_committee"
	AuthorityGatheringInfo      DecisionAuthority = "gathering_info"
)

// Timeline is the desired implementation horizon.
type Timeline string

const (
	TimelineUrgent    Timeline = "urgent_1_month"
	TimelineSoon      Timeline = "soon_1_3_months"
	TimelinePlanning  Timeline = "planning_3_6_months"
	TimelineExploring Timeline = "exploring_6_plus_months"
)

// DecisionTimeframe is how soon the lead expects to decide.
type DecisionTimeframe string

const (
	DecisionReadyNow      DecisionTimeframe = "ready_now"
	DecisionWithinMonth   DecisionTimeframe = "within_month"
	DecisionWithinQuarter DecisionTimeframe = "within_quarter"
	DecisionJustExploring DecisionTimeframe = "just_exploring"
)

const (
	LeadSourceWebsiteBooking = "website_booking"
	LeadSourceDirect         = "direct"
)

// StatusTimestamps holds one slot per pipeline status entered after creation.
type StatusTimestamps struct {
	ContactedAt   *time.Time
	QualifiedAt   *time.Time
	ProposalAt    *time.Time
	NegotiationAt *time.Time
	WonAt         *time.Time
	LostAt        *time.Time
	ConvertedAt   *time.Time
}

// slot returns the field recording entry into status, or nil for statuses
// without one (new is covered by Lead.CreatedAt).
func (t *StatusTimestamps) slot(status LeadStatus) **time.Time {
	switch status {
	case LeadStatusContacted:
		return &t.ContactedAt
	case LeadStatusQualified:
		return &t.QualifiedAt
	case LeadStatusProposal:
		return &t.ProposalAt
	case LeadStatusNegotiation:
		return &t.NegotiationAt
	case LeadStatusWon:
		return &t.WonAt
	case LeadStatusLost:
		return &t.LostAt
	case LeadStatusConverted:
		return &t.ConvertedAt
	default:
		return nil
	}
}

// Stamp records entry into status at the given time. It reports false when
// the status has no timestamp slot.
func (t *StatusTimestamps) Stamp(status LeadStatus, at time.Time) bool {
	field := t.slot(status)
	if field == nil {
		return false
	}
	stamped := at
	*field = &stamped
	return true
}

// At returns the recorded entry time for status.
func (t *StatusTimestamps) At(status LeadStatus) *time.Time {
	field := t.slot(status)
	if field == nil {
		return nil
	}
	return *field
}

// Lead is a sales prospect captured by the intake form or entered by staff.
type Lead struct {
	ID string

	FirstName   string
	LastName    string
	ContactName string
	Email       string
	Phone       *string
	JobTitle    *string

	CompanyName   string
	Website       *string
	Industry      *string
	AnnualRevenue *RevenueRange
	EmployeeCount *string

	PrimaryChallenge  *string
	OtherChallenge    *string
	PainPoints        *string
	DesiredOutcomes   *string
	Timeline          *Timeline
	MonthlyBudget     *BudgetRange
	DecisionAuthority *DecisionAuthority
	DecisionTimeframe *DecisionTimeframe
	CurrentSolutions  *string

	Source             string
	AssignedTo         *string
	LeadScore          int
	Tier               *LeadTier
	Status             LeadStatus
	MeetsIdealCriteria bool
	QualificationNotes *string

	StatusTimestamps
	CreatedAt time.Time
	UpdatedAt time.Time
}
