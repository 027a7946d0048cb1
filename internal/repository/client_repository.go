package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/licensedesk/revenue-api/internal/model"
)

// ClientRepo provides CRUD operations for the clients table. Both client
// variants live in one table discriminated by client_type; variant-specific
// columns are nullable and scanned into empty strings for the other
// variant. Soft-deleted rows are excluded everywhere except GetByIDAnyState.
type ClientRepo struct{ DB *sql.DB }

// NewClientRepo returns a ClientRepo bound to the given database.
func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{DB: db} }

const clientColumns = `id, client_type, address, email, phone_number, is_deleted, created_at,
	first_name, last_name, pesel, company_name, krs`

func scanClient(row interface{ Scan(...any) error }) (model.Client, error) {
	var c model.Client
	var firstName, lastName, pesel, companyName, krs sql.NullString
	err := row.Scan(&c.ID, &c.Type, &c.Address, &c.Email, &c.PhoneNumber,
		&c.IsDeleted, &c.CreatedAt,
		&firstName, &lastName, &pesel, &companyName, &krs)
	if err != nil {
		return c, err
	}
	c.FirstName = firstName.String
	c.LastName = lastName.String
	c.PESEL = pesel.String
	c.CompanyName = companyName.String
	c.KRS = krs.String
	return c, nil
}

// CreateIndividual inserts an individual client and returns its ID.
// ErrDuplicateIdentity is returned when a non-deleted individual with the
// same PESEL already exists.
func (r *ClientRepo) CreateIndividual(ctx context.Context, c *model.Client) (uint64, error) {
	exists, err := r.IndividualExists(ctx, c.PESEL)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateIdentity
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO clients (client_type, address, email, phone_number, first_name, last_name, pesel)
		 VALUES (?,?,?,?,?,?,?)`,
		model.ClientIndividual, c.Address, c.Email, c.PhoneNumber,
		c.FirstName, c.LastName, c.PESEL)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrDuplicateIdentity
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// CreateCompany inserts a company client and returns its ID.
// ErrDuplicateIdentity is returned when a non-deleted company with the same
// KRS already exists.
func (r *ClientRepo) CreateCompany(ctx context.Context, c *model.Client) (uint64, error) {
	exists, err := r.CompanyExists(ctx, c.KRS)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateIdentity
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO clients (client_type, address, email, phone_number, company_name, krs)
		 VALUES (?,?,?,?,?,?)`,
		model.ClientCompany, c.Address, c.Email, c.PhoneNumber,
		c.CompanyName, c.KRS)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrDuplicateIdentity
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}

// IndividualExists reports whether a non-deleted individual client with the
// given PESEL exists.
func (r *ClientRepo) IndividualExists(ctx context.Context, pesel string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients WHERE client_type=? AND pesel=? AND is_deleted=0`,
		model.ClientIndividual, pesel).Scan(&n)
	return n > 0, err
}

// CompanyExists reports whether a non-deleted company client with the given
// KRS exists.
func (r *ClientRepo) CompanyExists(ctx context.Context, krs string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients WHERE client_type=? AND krs=? AND is_deleted=0`,
		model.ClientCompany, krs).Scan(&n)
	return n > 0, err
}

// Exists reports whether a non-deleted client with the given ID exists.
func (r *ClientRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients WHERE id=? AND is_deleted=0`, id).Scan(&n)
	return n > 0, err
}

// GetByID fetches a non-deleted client by id. ErrNotFound is returned for
// missing or soft-deleted rows.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (model.Client, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id=? AND is_deleted=0`, id)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

// GetByIDAnyState fetches a client by id regardless of the soft-delete
// flag. Used for historical contract joins.
func (r *ClientRepo) GetByIDAnyState(ctx context.Context, id uint64) (model.Client, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id=?`, id)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

// ListActive returns all non-deleted clients ordered by id.
func (r *ClientRepo) ListActive(ctx context.Context) ([]model.Client, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE is_deleted=0 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateIndividual overwrites the mutable fields of an individual client.
// The PESEL is immutable. ErrNotFound is returned for missing or deleted
// rows, ErrWrongClientType when the row is a company.
func (r *ClientRepo) UpdateIndividual(ctx context.Context, id uint64, c *model.Client) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Type != model.ClientIndividual {
		return ErrWrongClientType
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE clients SET first_name=?, last_name=?, address=?, email=?, phone_number=?
		 WHERE id=? AND is_deleted=0`,
		c.FirstName, c.LastName, c.Address, c.Email, c.PhoneNumber, id)
	return err
}

// UpdateCompany overwrites the mutable fields of a company client. The KRS
// is immutable.
func (r *ClientRepo) UpdateCompany(ctx context.Context, id uint64, c *model.Client) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Type != model.ClientCompany {
		return ErrWrongClientType
	}
	_, err = r.DB.ExecContext(ctx,
		`UPDATE clients SET company_name=?, address=?, email=?, phone_number=?
		 WHERE id=? AND is_deleted=0`,
		c.CompanyName, c.Address, c.Email, c.PhoneNumber, id)
	return err
}

// SoftDeleteIndividualTx scrubs the PII of an individual client and sets
// the deleted flag inside the given transaction. Company clients cannot be
// deleted. The row itself is kept so contract history stays joinable.
func (r *ClientRepo) SoftDeleteIndividualTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	var clientType model.ClientType
	err := tx.QueryRowContext(ctx,
		`SELECT client_type FROM clients WHERE id=? AND is_deleted=0 FOR UPDATE`, id).
		Scan(&clientType)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if clientType != model.ClientIndividual {
		return ErrWrongClientType
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE clients SET is_deleted=1, first_name=?, last_name=?, address=?, email=?, phone_number=?, pesel=?
		 WHERE id=?`,
		model.ScrubbedText, model.ScrubbedText, model.ScrubbedText,
		model.ScrubbedEmail, model.ScrubbedPhone, model.ScrubbedPESEL, id)
	return err
}
