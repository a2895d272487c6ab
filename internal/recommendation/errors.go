package recommendation

import (
	"github.com/myrjola/gymcrm/internal/errors"
)

// ErrNotFound is returned when the user to analyse does not exist.
var ErrNotFound = errors.NewSentinel("user not found")

// Error reports a failure to fetch the data an analysis depends on. No partial result accompanies it.
type Error struct {
	// Op is the failed operation, e.g. "generate workout recommendations".
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "recommendation: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
