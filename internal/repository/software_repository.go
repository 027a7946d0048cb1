package repository

import (
	"context"
	"database/sql"

	"github.com/licensedesk/revenue-api/internal/model"
)

// SoftwareRepo reads the software catalog. The catalog is reference data:
// the API exposes no write operations for it, rows are loaded by
// migrations or the seed tool.
type SoftwareRepo struct{ DB *sql.DB }

// NewSoftwareRepo returns a SoftwareRepo bound to the given database.
func NewSoftwareRepo(db *sql.DB) *SoftwareRepo { return &SoftwareRepo{DB: db} }

const softwareColumns = `id, name, description, current_version, category, upfront_price_grosz`

// GetByID fetches one catalog entry. ErrNotFound when absent.
func (r *SoftwareRepo) GetByID(ctx context.Context, id uint64) (model.Software, error) {
	var s model.Software
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+softwareColumns+` FROM software WHERE id=?`, id).
		Scan(&s.ID, &s.Name, &s.Description, &s.CurrentVersion, &s.Category, &s.UpfrontPriceGrosz)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}

// Exists reports whether a catalog entry with the given ID exists.
func (r *SoftwareRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM software WHERE id=?`, id).Scan(&n)
	return n > 0, err
}

// List returns the whole catalog ordered by id.
func (r *SoftwareRepo) List(ctx context.Context) ([]model.Software, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+softwareColumns+` FROM software ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Software
	for rows.Next() {
		var s model.Software
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CurrentVersion,
			&s.Category, &s.UpfrontPriceGrosz); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
