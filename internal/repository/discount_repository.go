package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/licensedesk/revenue-api/internal/model"
)

// DiscountRepo reads and creates promotional discounts.
type DiscountRepo struct{ DB *sql.DB }

// NewDiscountRepo returns a DiscountRepo bound to the given database.
func NewDiscountRepo(db *sql.DB) *DiscountRepo { return &DiscountRepo{DB: db} }

const discountColumns = `id, name, percentage, start_date, end_date, software_id`

func collectDiscounts(rows *sql.Rows) ([]model.Discount, error) {
	defer rows.Close()
	var out []model.Discount
	for rows.Next() {
		var d model.Discount
		var softwareID sql.NullInt64
		if err := rows.Scan(&d.ID, &d.Name, &d.Percentage, &d.StartDate,
			&d.EndDate, &softwareID); err != nil {
			return nil, err
		}
		if softwareID.Valid {
			id := uint64(softwareID.Int64)
			d.SoftwareID = &id
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ActiveAt returns discounts whose inclusive window contains the instant,
// ordered by percentage descending then id ascending. The ordering fixes
// the tie-break: among equal percentages the lowest id wins.
func (r *DiscountRepo) ActiveAt(ctx context.Context, now time.Time) ([]model.Discount, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+discountColumns+` FROM discounts
		 WHERE start_date <= ? AND end_date >= ?
		 ORDER BY percentage DESC, id ASC`, now, now)
	if err != nil {
		return nil, err
	}
	return collectDiscounts(rows)
}

// List returns every discount ordered by id.
func (r *DiscountRepo) List(ctx context.Context) ([]model.Discount, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+discountColumns+` FROM discounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectDiscounts(rows)
}

// Create inserts a discount and returns its ID.
func (r *DiscountRepo) Create(ctx context.Context, d *model.Discount) (uint64, error) {
	var softwareID any
	if d.SoftwareID != nil {
		softwareID = *d.SoftwareID
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO discounts (name, percentage, start_date, end_date, software_id)
		 VALUES (?,?,?,?,?)`,
		d.Name, d.Percentage, d.StartDate, d.EndDate, softwareID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}
