package plans

import "errors"

var (
	// ErrNotFound means the plan id does not resolve to a catalog entry.
	ErrNotFound = errors.New("plans: plan not found")
	// ErrExists means a plan with the requested id already exists.
	ErrExists = errors.New("plans: plan id already exists")
	// ErrInUse means subscriptions still reference the plan.
	ErrInUse = errors.New("plans: plan has subscriptions and cannot be deleted")
)

// ValidationError carries the field-level problems of a rejected save.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "plans: invalid plan"
	}
	return "plans: invalid plan: " + e.Problems[0]
}
