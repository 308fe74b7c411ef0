// Package storage is the entity store client: document CRUD plus aggregation
// pipeline execution against named collections. Services depend on the Client
// interface only; the process wires the mongo implementation at startup.
package storage

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"context"
)

// Document is a raw store document.
type Document = bson.M

type Client interface {
	// FindByID returns nil, nil when no document has the id.
	FindByID(ctx context.Context, collection string, id primitive.ObjectID) (Document, error)
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, collection string, filter bson.M) (Document, error)
	Find(ctx context.Context, collection string, filter bson.M) ([]Document, error)
	// Create inserts the fields and returns the stored document, _id included.
	Create(ctx context.Context, collection string, fields Document) (Document, error)
	// UpdateByID applies the update and returns the post-image, or nil, nil
	// when the document is absent.
	UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, update bson.M) (Document, error)
	UpdateMany(ctx context.Context, collection string, filter, update bson.M) (int64, error)
	// DeleteByID returns the deleted document, or nil, nil when absent.
	DeleteByID(ctx context.Context, collection string, id primitive.ObjectID) (Document, error)
	DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error)
	// Aggregate runs the pipeline stages in order.
	Aggregate(ctx context.Context, collection string, stages []bson.D) ([]Document, error)
}

var defaultClient Client

// Store returns the process-wide client set by Init (or SetClient in tests).
func Store() Client {
	return defaultClient
}

func SetClient(c Client) {
	defaultClient = c
}

// Decode maps a raw document onto a typed model via a bson round trip.
func Decode(doc Document, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return errors.WithMessage(err, "failed to marshal document")
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return errors.WithMessage(err, "failed to decode document")
	}
	return nil
}
