package interpret

import (
	"errors"
	"fmt"

	"negotiation-gateway/internal/models"
)

var (
	ErrMalformedEntity = errors.New("MALFORMED_ENTITY")
	ErrNilCommand      = errors.New("PRECONDITION_VIOLATION: cannot normalize a nil command")
)

// EntityError reports one entity that could not contribute to the
// interpretation. The rest of the message is still interpreted.
type EntityError struct {
	Index  int
	Entity string
	Value  string
	Err    error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s: entity %d (%s=%q): %v", ErrMalformedEntity, e.Index, e.Entity, e.Value, e.Err)
}

func (e *EntityError) Unwrap() []error {
	return []error{ErrMalformedEntity, e.Err}
}

func newEntityError(index int, e models.EntityMention, err error) *EntityError {
	return &EntityError{Index: index, Entity: e.Entity, Value: e.Value, Err: err}
}
