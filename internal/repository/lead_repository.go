package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/continu8/backoffice/internal/domain"
)

// LeadFilter captures pipeline list parameters.
type LeadFilter struct {
	Status     *domain.LeadStatus
	AssignedTo *string
	Search     *string
	Limit      int
	Offset     int
}

// LeadRepository persists sales leads.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]domain.Lead, error)
	UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, at time.Time) error
	Assign(ctx context.Context, id string, assignee *string) error
	Delete(ctx context.Context, id string) error
}

// statusTimestampColumns is the closed set of columns a status change may
// stamp. Column names never come from input.
var statusTimestampColumns = map[domain.LeadStatus]string{
	domain.LeadStatusContacted:   "contacted_at",
	domain.LeadStatusQualified:   "qualified_at",
	domain.LeadStatusProposal:    "proposal_at",
	domain.LeadStatusNegotiation: "negotiation_at",
	domain.LeadStatusWon:         "won_at",
	domain.LeadStatusLost:        "lost_at",
	domain.LeadStatusConverted:   "converted_at",
}

type leadRepository struct {
	db DBTX
}

// NewLeadRepository builds repository.
func NewLeadRepository(db DBTX) LeadRepository {
	return &leadRepository{db: db}
}

const leadColumns = `id, first_name, last_name, contact_name, email, phone, job_title,
               company_name, website, industry, annual_revenue, employee_count,
               primary_challenge, other_challenge, pain_points, desired_outcomes, timeline,
               monthly_budget, decision_authority, decision_timeframe, current_solutions,
               source, assigned_to, lead_score, tier, status, meets_ideal_criteria, qualification_notes,
               contacted_at, qualified_at, proposal_at, negotiation_at, won_at, lost_at, converted_at,
               created_at, updated_at`

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	const query = `
        INSERT INTO leads (first_name, last_name, contact_name, email, phone, job_title,
            company_name, website, industry, annual_revenue, employee_count,
            primary_challenge, other_challenge, pain_points, desired_outcomes, timeline,
            monthly_budget, decision_authority, decision_timeframe, current_solutions,
            source, assigned_to, lead_score, tier, status, meets_ideal_criteria, qualification_notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		lead.FirstName,
		lead.LastName,
		lead.ContactName,
		lead.Email,
		lead.Phone,
		lead.JobTitle,
		lead.CompanyName,
		lead.Website,
		lead.Industry,
		lead.AnnualRevenue,
		lead.EmployeeCount,
		lead.PrimaryChallenge,
		lead.OtherChallenge,
		lead.PainPoints,
		lead.DesiredOutcomes,
		lead.Timeline,
		lead.MonthlyBudget,
		lead.DecisionAuthority,
		lead.DecisionTimeframe,
		lead.CurrentSolutions,
		lead.Source,
		lead.AssignedTo,
		lead.LeadScore,
		lead.Tier,
		lead.Status,
		lead.MeetsIdealCriteria,
		lead.QualificationNotes,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
}

func (r *leadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	return scanLead(r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id=$1`, id))
}

// GetForUpdate reads a lead and row-locks it until the surrounding
// transaction ends. Only meaningful on a tx-bound repository.
func (r *leadRepository) GetForUpdate(ctx context.Context, id string) (*domain.Lead, error) {
	return scanLead(r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id=$1 FOR UPDATE`, id))
}

func (r *leadRepository) List(ctx context.Context, filter LeadFilter) ([]domain.Lead, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Search))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(first_name) LIKE %[1]s OR LOWER(last_name) LIKE %[1]s OR LOWER(email) LIKE %[1]s OR LOWER(company_name) LIKE %[1]s)", placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		leadColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *lead)
	}
	return result, rows.Err()
}

// UpdateStatus sets the status and, when the status has one, stamps its
// entry-time column. A converted lead is never rewritten and reports
// pgx.ErrNoRows.
func (r *leadRepository) UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, at time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("unknown lead status %q", status)
	}
	var (
		query string
		args  []any
	)
	if column, ok := statusTimestampColumns[status]; ok {
		query = fmt.Sprintf(`UPDATE leads SET status=$1, %s=$2, updated_at=NOW() WHERE id=$3 AND status <> 'converted'`, column)
		args = []any{status, at, id}
	} else {
		query = `UPDATE leads SET status=$1, updated_at=NOW() WHERE id=$2 AND status <> 'converted'`
		args = []any{status, id}
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(tag)
}

func (r *leadRepository) Assign(ctx context.Context, id string, assignee *string) error {
	tag, err := r.db.Exec(ctx, `UPDATE leads SET assigned_to=$1, updated_at=NOW() WHERE id=$2`, assignee, id)
	if err != nil {
		return err
	}
	return requireAffected(tag)
}

func (r *leadRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM leads WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireAffected(tag)
}

func scanLead(row pgx.Row) (*domain.Lead, error) {
	var lead domain.Lead
	if err := row.Scan(
		&lead.ID,
		&lead.FirstName,
		&lead.LastName,
		&lead.ContactName,
		&lead.Email,
		&lead.Phone,
		&lead.JobTitle,
		&lead.CompanyName,
		&lead.Website,
		&lead.Industry,
		&lead.AnnualRevenue,
		&lead.EmployeeCount,
		&lead.PrimaryChallenge,
		&lead.OtherChallenge,
		&lead.PainPoints,
		&lead.DesiredOutcomes,
		&lead.Timeline,
		&lead.MonthlyBudget,
		&lead.DecisionAuthority,
		&lead.DecisionTimeframe,
		&lead.CurrentSolutions,
		&lead.Source,
		&lead.AssignedTo,
		&lead.LeadScore,
		&lead.Tier,
		&lead.Status,
		&lead.MeetsIdealCriteria,
		&lead.QualificationNotes,
		&lead.ContactedAt,
		&lead.QualifiedAt,
		&lead.ProposalAt,
		&lead.NegotiationAt,
		&lead.WonAt,
		&lead.LostAt,
		&lead.ConvertedAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}
