package academic

import (
	"errors"
	"fmt"

	"github.com/stemsi/siakad-backend/internal/model"
)

// ErrInvalidTransition is returned when a review would move a record along
// an edge the workflow does not have.
var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionPolicy selects how strict a workflow is about repeated reviews.
type TransitionPolicy int

const (
	// Strict allows only pending -> approved|rejected.
	Strict TransitionPolicy = iota
	// AllowRevise additionally lets a reviewer re-apply the same final status,
	// used to correct a score or comment after the fact.
	AllowRevise
)

// CheckTransition validates a review from current to next.
func CheckTransition(current, next model.Status, policy TransitionPolicy) error {
	if !next.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
	}
	if current == model.StatusPending {
		return nil
	}
	if policy == AllowRevise && current == next {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
}
