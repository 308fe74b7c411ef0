package policy

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanView(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	t.Run("OwnerSeesUnpublished", func(t *testing.T) {
		if !CanView(owner, owner, false) {
			t.Error("owner should see own unpublished resource")
		}
	})

	t.Run("StrangerSeesPublishedOnly", func(t *testing.T) {
		if CanView(owner, stranger, false) {
			t.Error("stranger should not see unpublished resource")
		}
		if !CanView(owner, stranger, true) {
			t.Error("stranger should see published resource")
		}
	})
}

func TestCanMutate(t *testing.T) {
	owner := primitive.NewObjectID()

	if !CanMutate(owner, owner) {
		t.Error("owner should be allowed to mutate")
	}

	// Any non-owner actor must be rejected, published or not.
	for i := 0; i < 10; i++ {
		other := primitive.NewObjectID()
		if other == owner {
			continue
		}
		if CanMutate(owner, other) {
			t.Fatalf("non-owner %s allowed to mutate resource of %s", other.Hex(), owner.Hex())
		}
	}
}

func TestCanMutateViaParent(t *testing.T) {
	commentOwner := primitive.NewObjectID()
	videoOwner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	t.Run("OwnerWithPublishedParent", func(t *testing.T) {
		if !CanMutateViaParent(commentOwner, videoOwner, true, commentOwner) {
			t.Error("comment owner should mutate when parent is published")
		}
	})

	t.Run("OwnerWithHiddenParent", func(t *testing.T) {
		if CanMutateViaParent(commentOwner, videoOwner, false, commentOwner) {
			t.Error("comment owner should not mutate when parent became invisible")
		}
	})

	t.Run("ParentOwnerCommentingOnOwnHiddenVideo", func(t *testing.T) {
		if !CanMutateViaParent(videoOwner, videoOwner, false, videoOwner) {
			t.Error("video owner mutating own comment on own unpublished video should pass")
		}
	})

	t.Run("StrangerNeverPasses", func(t *testing.T) {
		if CanMutateViaParent(commentOwner, videoOwner, true, stranger) {
			t.Error("non-owner of the comment must be rejected")
		}
	})
}
