package model

import "time"

// Employee roles recognised by the access gate. Admin-only endpoints reject
// standard users; every other protected endpoint accepts both.
const (
	RoleStandard = "STANDARD_USER"
	RoleAdmin    = "ADMIN"
)

// Employee is a back-office user account authenticated over HTTP Basic.
//
// Fields:
//  ID           – primary key identifier.
//  Login        – unique login name.
//  PasswordHash – bcrypt hash of the password.
//  Role         – RoleStandard or RoleAdmin.
//  FirstName    – given name.
//  LastName     – family name.
//  CreatedAt    – creation timestamp.
type Employee struct {
	ID           uint64    // employees.id
	Login        string    // employees.login
	PasswordHash string    // employees.password_hash
	Role         string    // employees.role
	FirstName    string    // employees.first_name
	LastName     string    // employees.last_name
	CreatedAt    time.Time // employees.created_at
}
