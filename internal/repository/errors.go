// Package repository holds the hand-written SQL data access layer.  The
// sentinel values below let handlers map failures to status codes:
// ErrNotFound -> 404, ErrForbidden -> 403, ErrConflict -> 409.
package repository

import (
	"database/sql"
	"errors"
	"strings"
)

// ErrNotFound is returned when the row does not exist or belongs to another
// user.  Ownership failures are reported as not found so ids cannot be
// probed.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own and the resource id was already disclosed.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be applied because of the
// row's current state, e.g. activating an order that is no longer pending.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by UserRepo.Create for a duplicate email.
var ErrEmailExists = errors.New("email already exists")

// isDuplicate matches MySQL error 1062 and SQLite's unique violation.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint failed")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
