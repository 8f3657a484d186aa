package repository

import (
	"context"

	"github.com/continu8/backoffice/internal/domain"
)

// ClientRepository persists customer companies.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
}

type clientRepository struct {
	db DBTX
}

// NewClientRepository builds repository.
func NewClientRepository(db DBTX) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (company_name, website, industry, employee_count, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		client.CompanyName,
		client.Website,
		client.Industry,
		client.EmployeeCount,
		client.Status,
	).Scan(&client.ID, &client.CreatedAt)
}

// ContactRepository persists people attached to clients.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	GetByProfileID(ctx context.Context, profileID string) (*domain.Contact, error)
}

type contactRepository struct {
	db DBTX
}

// NewContactRepository builds repository.
func NewContactRepository(db DBTX) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (client_id, profile_id, first_name, last_name, email, phone, job_title, is_primary)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		contact.ClientID,
		contact.ProfileID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		contact.JobTitle,
		contact.IsPrimary,
	).Scan(&contact.ID, &contact.CreatedAt)
}

func (r *contactRepository) GetByProfileID(ctx context.Context, profileID string) (*domain.Contact, error) {
	const query = `
        SELECT id, client_id, profile_id, first_name, last_name, email, phone, job_title, is_primary, created_at
        FROM contacts WHERE profile_id=$1
        ORDER BY is_primary DESC, created_at ASC
        LIMIT 1`
	var contact domain.Contact
	if err := r.db.QueryRow(ctx, query, profileID).Scan(
		&contact.ID,
		&contact.ClientID,
		&contact.ProfileID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.Phone,
		&contact.JobTitle,
		&contact.IsPrimary,
		&contact.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &contact, nil
}
