// Package policy holds the visibility and ownership decisions shared by every
// resource service. The functions are pure: callers check before mutating.
package policy

import "go.mongodb.org/mongo-driver/bson/primitive"

// CanView reports whether the actor may read a resource. The owner always may;
// everyone else only when the resource is published.
func CanView(owner, actor primitive.ObjectID, published bool) bool {
	if owner == actor {
		return true
	}
	return published
}

// CanMutate reports whether the actor may modify or delete a resource.
// Only the owner may.
func CanMutate(owner, actor primitive.ObjectID) bool {
	return owner == actor
}

// CanMutateViaParent is the comment-mutation rule: the actor must own the
// child and the parent video must be visible to the actor. A false result maps
// to Unauthorized; a missing parent is NotFound and is the caller's concern.
func CanMutateViaParent(childOwner, parentOwner primitive.ObjectID, parentPublished bool, actor primitive.ObjectID) bool {
	if !CanMutate(childOwner, actor) {
		return false
	}
	return CanView(parentOwner, actor, parentPublished)
}
