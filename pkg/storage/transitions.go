package storage

import "context"

// Entity names the table a transition applies to.
type Entity string

const (
	EntityReferral Entity = "referral"
	EntityPayout   Entity = "payout"
)

// Transition is a conditional update of a single record. Attribute names in
// Set, Remove, Add and Match are the stored (dynamodbav) names.
type Transition struct {
	Entity Entity
	ID     string

	// From is the status the record must currently have. Empty skips the check.
	From string
	// To is the new status. Empty keeps the current status.
	To string

	Set    map[string]interface{}
	Remove []string
	Add    map[string]int64
	// Match lists extra attribute values that must hold for the update to apply.
	Match map[string]interface{}
}

// TransitionStore applies standalone transitions, e.g. claiming a payout.
type TransitionStore interface {
	// ApplyTransition returns ErrConditionFailed if the record is not in the
	// expected state and ErrNotFound if it does not exist.
	ApplyTransition(ctx context.Context, t Transition) error
}
