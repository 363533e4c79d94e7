// Package apperr defines the error taxonomy shared by every store and the
// synchronization layer: NotFound, NotAllowed, and InvalidInput.
//
// Errors are raised by the store that detects the condition and propagate
// unmodified to the HTTP boundary; nothing catches, retries, or converts
// them in between.
package apperr

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a referenced entity is absent.
type NotFoundError struct {
	// Resource is the entity kind (e.g., "group", "event", "calendar").
	Resource string

	// ID identifies the missing entity. For per-user resources this is
	// the user ID.
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NotFound builds a NotFoundError for the given resource kind and id.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// NotAllowedError reports an authorization or ownership violation. It
// carries the offending actor and the resource so callers can build
// messages without re-fetching anything.
type NotAllowedError struct {
	// Actor is the user who attempted the operation.
	Actor string

	// Resource is the entity kind.
	Resource string

	// ID identifies the entity the actor was denied on.
	ID string

	// Relation names the relation the actor lacks (e.g., "creator",
	// "member").
	Relation string
}

func (e *NotAllowedError) Error() string {
	return fmt.Sprintf("user %s is not %s of %s %s", e.Actor, e.Relation, e.Resource, e.ID)
}

// NotAllowed builds a NotAllowedError.
func NotAllowed(actor, resource, id, relation string) error {
	return &NotAllowedError{Actor: actor, Resource: resource, ID: id, Relation: relation}
}

// IsNotAllowed reports whether err is (or wraps) a NotAllowedError.
func IsNotAllowed(err error) bool {
	var na *NotAllowedError
	return errors.As(err, &na)
}

// InvalidInputError reports malformed input detected at a boundary, such as
// unparseable date text.
type InvalidInputError struct {
	// Field is the offending input field.
	Field string

	// Reason describes what was wrong.
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidInput builds an InvalidInputError.
func InvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var ii *InvalidInputError
	return errors.As(err, &ii)
}
