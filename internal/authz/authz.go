// Package authz is the single authorization capability used by the
// synchronization layer. Every gated route asks the same question,
// Check(actor, resource, relation), instead of each call site hand-rolling
// its own ownership lookup.
package authz

import (
	"context"
	"fmt"

	"github.com/huddleapp/backend/internal/apperr"
	"github.com/huddleapp/backend/internal/storage"
)

// Relation names a required relationship between an actor and a resource.
type Relation string

const (
	// RelationGroupMember requires the actor to be in the group's member set.
	RelationGroupMember Relation = "member"

	// RelationEventCreator requires the actor to have created the event.
	RelationEventCreator Relation = "creator"
)

// Resource identifies the entity a check runs against.
type Resource struct {
	// Kind is "group" or "event".
	Kind string

	// ID is the entity's primary identity. Lookups key on this and
	// nothing else.
	ID string
}

// Group builds a group resource reference.
func Group(id string) Resource { return Resource{Kind: "group", ID: id} }

// Event builds an event resource reference.
func Event(id string) Resource { return Resource{Kind: "event", ID: id} }

// Checker evaluates relations against the store.
type Checker struct {
	store storage.Store
}

// NewChecker creates a Checker backed by the given store.
func NewChecker(store storage.Store) *Checker {
	return &Checker{store: store}
}

// Check returns nil when the relation holds, a NotFoundError when the
// resource is absent, and a NotAllowedError (carrying the actor and
// resource identities) when the resource exists but the relation does not
// hold. Any other error is a storage failure.
func (c *Checker) Check(ctx context.Context, actor string, resource Resource, relation Relation) error {
	switch {
	case resource.Kind == "group" && relation == RelationGroupMember:
		group, err := c.store.GetGroup(ctx, resource.ID)
		if err != nil {
			return err
		}
		if !group.HasMember(actor) {
			return apperr.NotAllowed(actor, resource.Kind, resource.ID, string(relation))
		}
		return nil

	case resource.Kind == "event" && relation == RelationEventCreator:
		event, err := c.store.GetEvent(ctx, resource.ID)
		if err != nil {
			return err
		}
		if event.CreatorID != actor {
			return apperr.NotAllowed(actor, resource.Kind, resource.ID, string(relation))
		}
		return nil

	default:
		return fmt.Errorf("unsupported check: %s %s on %s", relation, resource.Kind, resource.ID)
	}
}
