package account

import "errors"

var (
	ErrNotFound    = errors.New("account not found")
	ErrCodeExists  = errors.New("account code already exists")
	ErrParentCycle = errors.New("parent account would create a cycle")
	ErrInUse       = errors.New("account is referenced by posted transactions")
)

// ValidationError reports a rejected field on create or update.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}
