package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/LeMizoo/bygagoos-api/internal/model"
)

// SettingsRepo reads and writes the single-row company profile.
type SettingsRepo struct{ DB *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{DB: db} }

// GetProfile returns the company profile. The row is seeded by the schema,
// so a missing row is reported as ErrNotFound rather than synthesized.
func (r *SettingsRepo) GetProfile(ctx context.Context) (model.CompanyProfile, error) {
	var p model.CompanyProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,address,phone,email,updated_at FROM company_profile LIMIT 1").
		Scan(&p.ID, &p.Name, &p.Address, &p.Phone, &p.Email, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CompanyProfile{}, ErrNotFound
	}
	return p, err
}

// UpdateProfile rewrites the company profile fields.
func (r *SettingsRepo) UpdateProfile(ctx context.Context, name, address, phone, email string) error {
	// ON DUPLICATE KEY keeps this idempotent on a fresh database.
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO company_profile (id, name, address, phone, email) VALUES (1,?,?,?,?) "+
			"ON DUPLICATE KEY UPDATE name=VALUES(name), address=VALUES(address), phone=VALUES(phone), email=VALUES(email)",
		name, address, phone, email)
	return err
}
