package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/licensedesk/revenue-api/internal/model"
	"github.com/licensedesk/revenue-api/internal/utils"
)

// EmployeeRepo provides lookups for back-office employee accounts. The
// basic-auth middleware hits GetByLogin on every authenticated request.
type EmployeeRepo struct{ DB *sql.DB }

// NewEmployeeRepo returns an EmployeeRepo bound to the given database.
func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{DB: db} }

const employeeColumns = `id, login, password_hash, role, first_name, last_name, created_at`

// GetByLogin fetches an employee by login. ErrNotFound when absent.
func (r *EmployeeRepo) GetByLogin(ctx context.Context, login string) (model.Employee, error) {
	var e model.Employee
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE login=? LIMIT 1`, login).
		Scan(&e.ID, &e.Login, &e.PasswordHash, &e.Role, &e.FirstName, &e.LastName, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	return e, err
}

// Create hashes the password and inserts a new employee, returning its ID.
// ErrLoginExists when the login is taken.
func (r *EmployeeRepo) Create(ctx context.Context, login, password, role, firstName, lastName string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO employees (login, password_hash, role, first_name, last_name) VALUES (?,?,?,?,?)`,
		login, hash, role, firstName, lastName)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrLoginExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}
