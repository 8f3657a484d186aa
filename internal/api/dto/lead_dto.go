package dto

import (
	"time"

	"github.com/continu8/backoffice/internal/domain"
)

// IntakeRequest is the public strategy-call booking form.
type IntakeRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2"`
	LastName  string `json:"last_name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=10"`
	JobTitle  string `json:"job_title" validate:"required,min=2"`

	CompanyName   string              `json:"company_name" validate:"required,min=2"`
	Website       string              `json:"website" validate:"omitempty,url"`
	Industry      string              `json:"industry" validate:"required,min=2"`
	AnnualRevenue domain.RevenueRange `json:"annual_revenue" validate:"required,oneof=under_5m 5m_10m 10m_25m 25m_50m 50m_100m 100m_200m over_200m"`
	EmployeeCount string              `json:"employee_count" validate:"required,oneof=under_10 10_20 20_50 50_100 100_200 over_200"`

	PrimaryChallenge string          `json:"primary_challenge" validate:"required,oneof=manual_work disconnected_systems scaling_issues security_concerns poor_data_visibility other"`
	OtherChallenge   string          `json:"other_challenge"`
	PainPoints       string          `json:"pain_points" validate:"required,min=20"`
	DesiredOutcomes  string          `json:"desired_outcomes" validate:"required,min=20"`
	Timeline         domain.Timeline `json:"timeline" validate:"required,oneof=urgent_1_month soon_1_3_months planning_3_6_months exploring_6_plus_months"`

	MonthlyBudget     domain.BudgetRange       `json:"monthly_budget" validate:"required,oneof=under_30k 30k_60k 60k_100k 100k_150k over_150k not_sure"`
	DecisionAuthority domain.DecisionAuthority `json:"decision_authority" validate:"required,oneof=final_decision_maker key_influencer part_of_committee gathering_info"`
	DecisionTimeframe domain.DecisionTimeframe `json:"decision_timeframe" validate:"required,oneof=ready_now within_month within_quarter just_exploring"`
	CurrentSolutions  string                   `json:"current_solutions"`

	PreferredDate   string `json:"preferred_date" validate:"omitempty,datetime=2006-01-02"`
	PreferredTime   string `json:"preferred_time" validate:"omitempty,datetime=15:04"`
	Timezone        string `json:"timezone" validate:"omitempty,timezone"`
	AdditionalNotes string `json:"additional_notes"`
}

// IntakeResponse reports the qualification outcome of a submission.
type IntakeResponse struct {
	LeadID             string          `json:"lead_id"`
	Score              int             `json:"score"`
	Tier               domain.LeadTier `json:"tier"`
	MeetsIdealCriteria bool            `json:"meets_ideal_criteria"`
	BookingID          *string         `json:"booking_id,omitempty"`
}

// CreateLeadRequest is the staff manual lead form.
type CreateLeadRequest struct {
	CompanyName       string                    `json:"company_name" validate:"required,min=2"`
	ContactName       string                    `json:"contact_name" validate:"required,min=2"`
	ContactEmail      string                    `json:"contact_email" validate:"required,email"`
	ContactPhone      *string                   `json:"contact_phone" validate:"omitempty,min=10"`
	AnnualRevenue     *domain.RevenueRange      `json:"annual_revenue" validate:"omitempty,oneof=under_5m 5m_10m 10m_25m 25m_50m 50m_100m 100m_200m over_200m"`
	EmployeeCount     *string                   `json:"employee_count" validate:"omitempty,oneof=under_10 10_20 20_50 50_100 100_200 over_200"`
	PrimaryChallenge  *string                   `json:"primary_challenge" validate:"omitempty,oneof=manual_work disconnected_systems scaling_issues security_concerns poor_data_visibility other"`
	MonthlyBudget     *domain.BudgetRange       `json:"monthly_budget" validate:"omitempty,oneof=under_30k 30k_60k 60k_100k 100k_150k over_150k not_sure"`
	DecisionAuthority *domain.DecisionAuthority `json:"decision_authority" validate:"omitempty,oneof=final_decision_maker key_influencer part_of_committee gathering_info"`
	Source            string                    `json:"source" validate:"omitempty,max=50"`
}

// UpdateLeadStatusRequest payload. converted is only reachable through the
// convert endpoint.
type UpdateLeadStatusRequest struct {
	Status domain.LeadStatus `json:"status" validate:"required,oneof=new contacted qualified proposal negotiation won lost"`
}

// AssignLeadRequest payload.
type AssignLeadRequest struct {
	AssignedTo string `json:"assigned_to" validate:"required,uuid"`
}

// CreateActivityRequest payload.
type CreateActivityRequest struct {
	Type        domain.ActivityType `json:"type" validate:"required,min=2,max=50"`
	Title       string              `json:"title" validate:"required,min=1,max=200"`
	Description *string             `json:"description"`
}

// LeadListQuery captures pipeline filters.
type LeadListQuery struct {
	Status     string `query:"status" validate:"omitempty,oneof=all new contacted qualified proposal negotiation won lost converted"`
	AssignedTo string `query:"assigned_to" validate:"omitempty,uuid"`
	Search     string `query:"search" validate:"omitempty,max=100"`
	Page       int    `query:"page" validate:"omitempty,min=1"`
	PageSize   int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// LeadResponse is the staff view of a lead.
type LeadResponse struct {
	ID                 string                    `json:"id"`
	FirstName          string                    `json:"first_name"`
	LastName           string                    `json:"last_name"`
	ContactName        string                    `json:"contact_name"`
	Email              string                    `json:"email"`
	Phone              *string                   `json:"phone"`
	JobTitle           *string                   `json:"job_title"`
	CompanyName        string                    `json:"company_name"`
	Website            *string                   `json:"website"`
	Industry           *string                   `json:"industry"`
	AnnualRevenue      *domain.RevenueRange      `json:"annual_revenue"`
	EmployeeCount      *string                   `json:"employee_count"`
	PrimaryChallenge   *string                   `json:"primary_challenge"`
	OtherChallenge     *string                   `json:"other_challenge"`
	PainPoints         *string                   `json:"pain_points"`
	DesiredOutcomes    *string                   `json:"desired_outcomes"`
	Timeline           *domain.Timeline          `json:"timeline"`
	MonthlyBudget      *domain.BudgetRange       `json:"monthly_budget"`
	DecisionAuthority  *domain.DecisionAuthority `json:"decision_authority"`
	DecisionTimeframe  *domain.DecisionTimeframe `json:"decision_timeframe"`
	CurrentSolutions   *string                   `json:"current_solutions"`
	Source             string                    `json:"source"`
	AssignedTo         *string                   `json:"assigned_to"`
	LeadScore          int                       `json:"lead_score"`
	Tier               *domain.LeadTier          `json:"tier"`
	Status             domain.LeadStatus         `json:"status"`
	MeetsIdealCriteria bool                      `json:"meets_ideal_criteria"`
	QualificationNotes *string                   `json:"qualification_notes"`
	ContactedAt        *time.Time                `json:"contacted_at"`
	QualifiedAt        *time.Time                `json:"qualified_at"`
	ProposalAt         *time.Time                `json:"proposal_at"`
	NegotiationAt      *time.Time                `json:"negotiation_at"`
	WonAt              *time.Time                `json:"won_at"`
	LostAt             *time.Time                `json:"lost_at"`
	ConvertedAt        *time.Time                `json:"converted_at"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// LeadDetailResponse adds the activity timeline.
type LeadDetailResponse struct {
	LeadResponse
	Activities []ActivityResponse `json:"activities"`
}

// ActivityResponse is a timeline entry.
type ActivityResponse struct {
	ID          string              `json:"id"`
	Type        domain.ActivityType `json:"type"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	LeadID      *string             `json:"lead_id"`
	ClientID    *string             `json:"client_id"`
	TicketID    *string             `json:"ticket_id"`
	UserID      *string             `json:"user_id"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// ConvertLeadResponse returns the new client.
type ConvertLeadResponse struct {
	ClientID string `json:"client_id"`
}
