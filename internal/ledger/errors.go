package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("transaction not found")
	ErrNotDraft  = errors.New("only draft transactions can be posted")
	ErrImmutable = errors.New("only draft transactions can be modified")
)

// ValidationError describes a single rejected input. Entry is the index of
// the offending entry, or -1 when the problem is with the transaction as a
// whole.
type ValidationError struct {
	Entry  int
	Reason string
}

func (e ValidationError) Error() string {
	if e.Entry < 0 {
		return e.Reason
	}

	return fmt.Sprintf("entry %d: %s", e.Entry, e.Reason)
}

// ValidationErrors aggregates every violation found in one pass so callers
// can report them all at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}

	return strings.Join(msgs, "; ")
}

// UnknownAccountError reports an entry referencing an account that does not
// exist in the registry. Posting aborts atomically when it occurs.
type UnknownAccountError struct {
	AccountID uuid.UUID
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("unknown account %s", e.AccountID)
}
