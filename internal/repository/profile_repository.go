package repository

import (
	"context"

	"github.com/continu8/backoffice/internal/domain"
)

// ProfileRepository reads identity-provider user records.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

type profileRepository struct {
	db DBTX
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	const query = `SELECT id, full_name, email, role FROM profiles WHERE id=$1`
	var profile domain.Profile
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.Email,
		&profile.Role,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
