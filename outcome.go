package spayd

// OutcomeState tells apart the three ways a single field can resolve.
type OutcomeState uint8

const (
	// Absent means the key was missing or empty. The field's own default
	// policy applies and no error is produced.
	Absent OutcomeState = iota
	// Present means the value was found and passed its rule.
	Present
	// Invalid means the value was found but failed its rule.
	Invalid
)

func (s OutcomeState) String() string {
	switch s {
	case Absent:
		return "absent"
	case Present:
		return "present"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Outcome is the result of resolving one field. Exactly one of the
// value or the reason is meaningful, depending on State.
type Outcome[T any] struct {
	state  OutcomeState
	value  T
	reason error
}

func OutcomeAbsent[T any]() Outcome[T] {
	return Outcome[T]{state: Absent}
}

func OutcomePresent[T any](value T) Outcome[T] {
	return Outcome[T]{state: Present, value: value}
}

// OutcomeInvalid builds an Invalid outcome. A nil reason is replaced by
// ErrInvalidField so that an Invalid outcome always carries an error.
func OutcomeInvalid[T any](reason error) Outcome[T] {
	if reason == nil {
		reason = ErrInvalidField
	}
	return Outcome[T]{state: Invalid, reason: reason}
}

func (o Outcome[T]) State() OutcomeState {
	return o.state
}

// Value returns the parsed value and whether the outcome is Present.
func (o Outcome[T]) Value() (T, bool) {
	return o.value, o.state == Present
}

// Err returns the reason of an Invalid outcome, nil otherwise.
func (o Outcome[T]) Err() error {
	if o.state != Invalid {
		return nil
	}
	return o.reason
}

// Or returns the value when Present and def otherwise.
func (o Outcome[T]) Or(def T) T {
	if o.state == Present {
		return o.value
	}
	return def
}
