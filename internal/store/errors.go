package store

import "errors"

// Sentinel errors. Services translate these into domain errors with
// user-facing messages.
var (
	ErrBookNotFound   = errors.New("book not found")
	ErrBookExists     = errors.New("book already exists")
	ErrMemberNotFound = errors.New("member not found")
	ErrLoanNotFound   = errors.New("loan not found")
	ErrLoanExists     = errors.New("book already has an active loan")
)
