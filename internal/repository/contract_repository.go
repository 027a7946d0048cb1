package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/licensedesk/revenue-api/internal/model"
)

// ContractRepo provides persistence for contracts and their payments.
// Contracts and payments are append-mostly: rows are never hard-deleted,
// the lifecycle flags (is_signed, is_cancelled, is_refunded) only ever flip
// from 0 to 1. Multi-row mutations expose Tx variants; the contract service
// owns the surrounding transaction.
type ContractRepo struct{ DB *sql.DB }

// NewContractRepo returns a ContractRepo bound to the given database.
func NewContractRepo(db *sql.DB) *ContractRepo { return &ContractRepo{DB: db} }

const contractColumns = `id, client_id, software_id, start_date, end_date, price_grosz,
	software_version, support_years, is_signed, is_cancelled, created_at`

func scanContract(row interface{ Scan(...any) error }) (model.Contract, error) {
	var c model.Contract
	err := row.Scan(&c.ID, &c.ClientID, &c.SoftwareID, &c.StartDate, &c.EndDate,
		&c.PriceGrosz, &c.SoftwareVersion, &c.SupportYears,
		&c.IsSigned, &c.IsCancelled, &c.CreatedAt)
	return c, err
}

// Create inserts a new open contract and returns its ID.
func (r *ContractRepo) Create(ctx context.Context, c *model.Contract) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO contracts (client_id, software_id, start_date, end_date, price_grosz, software_version, support_years)
		 VALUES (?,?,?,?,?,?,?)`,
		c.ClientID, c.SoftwareID, c.StartDate, c.EndDate, c.PriceGrosz,
		c.SoftwareVersion, c.SupportYears)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// GetByID fetches a contract with its payments loaded. ErrNotFound when the
// contract does not exist.
func (r *ContractRepo) GetByID(ctx context.Context, id uint64) (model.Contract, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id=?`, id)
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	c.Payments, err = r.paymentsFor(ctx, c.ID)
	return c, err
}

// GetByIDTx is GetByID inside a transaction with a row lock, used by the
// payment path so concurrent payments against one contract serialize on
// the contract row.
func (r *ContractRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Contract, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id=? FOR UPDATE`, id)
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE contract_id=? ORDER BY id`, id)
	if err != nil {
		return c, err
	}
	c.Payments, err = collectPayments(rows)
	return c, err
}

// ListByClient returns all contracts of a client, payments included,
// newest first.
func (r *ContractRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.Contract, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE client_id=? ORDER BY id DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Payments, err = r.paymentsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// HasActiveForSoftware reports whether the client already holds a signed,
// non-cancelled contract for the software. Used to reject duplicate
// contracts at creation time.
func (r *ContractRepo) HasActiveForSoftware(ctx context.Context, clientID, softwareID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contracts
		 WHERE client_id=? AND software_id=? AND is_signed=1 AND is_cancelled=0`,
		clientID, softwareID).Scan(&n)
	return n > 0, err
}

// HasSignedContract reports whether the client has at least one signed
// contract, which makes them a returning client for pricing.
func (r *ContractRepo) HasSignedContract(ctx context.Context, clientID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contracts WHERE client_id=? AND is_signed=1`, clientID).Scan(&n)
	return n > 0, err
}

// ExpiredOpenIDsTx returns, inside the sweep transaction, the ids of
// contracts that are unsigned, not cancelled and past their end date at the
// given instant. Rows are locked so a concurrent sweep cannot cancel them
// twice.
func (r *ContractRepo) ExpiredOpenIDsTx(ctx context.Context, tx *sql.Tx, now time.Time) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM contracts
		 WHERE is_signed=0 AND is_cancelled=0 AND end_date < ? FOR UPDATE`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertPaymentTx appends a payment row inside the given transaction and
// populates the generated ID.
func (r *ContractRepo) InsertPaymentTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (contract_id, amount_grosz, payment_date) VALUES (?,?,?)`,
		p.ContractID, p.AmountGrosz, p.PaymentDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// MarkSignedTx flips the signed flag inside the given transaction.
func (r *ContractRepo) MarkSignedTx(ctx context.Context, tx *sql.Tx, contractID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE contracts SET is_signed=1 WHERE id=?`, contractID)
	return err
}

// CancelWithRefundsTx cancels one contract and refunds every non-refunded
// payment under it, all inside the given transaction. The caller commits
// once per sweep so the whole batch is atomic.
func (r *ContractRepo) CancelWithRefundsTx(ctx context.Context, tx *sql.Tx, contractID uint64, now time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE contracts SET is_cancelled=1 WHERE id=?`, contractID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE payments SET is_refunded=1, refund_date=? WHERE contract_id=? AND is_refunded=0`,
		now, contractID)
	return err
}

const paymentColumns = `id, contract_id, amount_grosz, payment_date, is_refunded, refund_date`

func collectPayments(rows *sql.Rows) ([]model.Payment, error) {
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		var p model.Payment
		var refund sql.NullTime
		if err := rows.Scan(&p.ID, &p.ContractID, &p.AmountGrosz, &p.PaymentDate,
			&p.IsRefunded, &refund); err != nil {
			return nil, err
		}
		if refund.Valid {
			t := refund.Time
			p.RefundDate = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ContractRepo) paymentsFor(ctx context.Context, contractID uint64) ([]model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE contract_id=? ORDER BY id`, contractID)
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}
