package utils

import (
	"VidTube.com/pkg/errno"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID converts a store-native id string into an ObjectID. A missing or
// malformed id is a parameter error and must be rejected before any store call.
func ParseID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NilObjectID, errno.ParamErr.WithMessage("id is required")
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errno.ParamErr.WithMessage("invalid id: " + id)
	}
	return oid, nil
}
