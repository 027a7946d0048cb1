package repository

import (
	"context"
	"database/sql"
)

// RevenueRepo runs the aggregation queries behind the revenue figures.
// Both queries take an optional software filter; a nil filter aggregates
// across the whole catalog.
type RevenueRepo struct{ DB *sql.DB }

// NewRevenueRepo returns a RevenueRepo bound to the given database.
func NewRevenueRepo(db *sql.DB) *RevenueRepo { return &RevenueRepo{DB: db} }

// RecognizedGrosz sums non-refunded payments on signed, non-cancelled
// contracts, optionally restricted to one software product.
func (r *RevenueRepo) RecognizedGrosz(ctx context.Context, softwareID *uint64) (int64, error) {
	query := `SELECT COALESCE(SUM(p.amount_grosz), 0)
	          FROM payments p
	          JOIN contracts c ON c.id = p.contract_id
	          WHERE p.is_refunded=0 AND c.is_signed=1`
	args := []any{}
	if softwareID != nil {
		query += ` AND c.software_id=?`
		args = append(args, *softwareID)
	}
	var sum int64
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&sum)
	return sum, err
}

// OpenContractPricesGrosz sums the face value of unsigned, non-cancelled
// contracts, optionally restricted to one software product. Together with
// RecognizedGrosz this yields the predicted revenue.
func (r *RevenueRepo) OpenContractPricesGrosz(ctx context.Context, softwareID *uint64) (int64, error) {
	query := `SELECT COALESCE(SUM(price_grosz), 0)
	          FROM contracts
	          WHERE is_signed=0 AND is_cancelled=0`
	args := []any{}
	if softwareID != nil {
		query += ` AND software_id=?`
		args = append(args, *softwareID)
	}
	var sum int64
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&sum)
	return sum, err
}
