// Package repository implements the persistence layer over MySQL. Each
// aggregate gets its own repository struct bound to *sql.DB; mutations that
// touch more than one row expose Tx variants and leave commit/rollback to
// the calling service. The sentinel errors below let higher layers map
// failure modes to HTTP statuses without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist (or, for
// clients, exists only as a soft-deleted row). Handlers translate it into
// an HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrDuplicateIdentity is returned when creating a client whose PESEL or
// KRS is already held by a non-deleted client. Handlers translate it into
// an HTTP 409.
var ErrDuplicateIdentity = errors.New("client identity already exists")

// ErrLoginExists is returned when creating an employee with a login that is
// already taken.
var ErrLoginExists = errors.New("login already exists")

// ErrWrongClientType is returned when an update or delete targets a client
// of the other concrete variant, e.g. a company update against an
// individual row.
var ErrWrongClientType = errors.New("client is of a different type")
