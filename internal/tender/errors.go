package tender

import (
	"errors"
	"fmt"
)

// Failure categories returned by the engine. Call sites attach the offending
// id and invariant via lib.WrapError so the caller can render an actionable
// message.
var (
	ErrValidation          = errors.New("validation error")
	ErrDuplicateCommitment = errors.New("commitment hash already registered")
	ErrAuthorization       = errors.New("authorization error")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrBudgetExceeded      = errors.New("budget exceeded")
	ErrIneligibleBidder    = errors.New("bidder has an outstanding quality report")
	ErrNotFound            = errors.New("not found")
)

// TransitionError names the offending transition for invalid-state failures.
func TransitionError(entity, id string, from fmt.Stringer, op string) error {
	return fmt.Errorf("%w: %s %s: cannot %s while %s", ErrInvalidState, entity, id, op, from)
}
