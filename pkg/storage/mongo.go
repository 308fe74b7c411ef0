package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"VidTube.com/pkg/constants"
)

// MongoClient implements Client against a MongoDB database.
type MongoClient struct {
	db *mongo.Database
}

// Init connects, pings, ensures indexes and installs the process-wide client.
func Init(uri, database string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return errors.WithMessage(err, "failed to connect to mongodb")
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return errors.WithMessage(err, "failed to ping mongodb")
	}

	mc := &MongoClient{db: cli.Database(database)}
	if err := mc.EnsureIndexes(ctx); err != nil {
		return err
	}
	SetClient(mc)
	logrus.Infof("connected to mongodb database %s", database)
	return nil
}

// EnsureIndexes creates the indexes the services rely on: a text index for
// video search and partial unique indexes enforcing at most one like per
// (actor, target). The uniqueness lives in the store so that concurrent
// toggles cannot insert duplicates even if the service-level lock is skipped.
func (m *MongoClient) EnsureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(constants.VideoCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}},
	})
	if err != nil {
		return errors.WithMessage(err, "failed to create video text index")
	}

	for _, target := range []string{"video", "comment", "tweet"} {
		_, err := m.db.Collection(constants.LikeCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: target, Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{target: bson.M{"$exists": true}}),
		})
		if err != nil {
			return errors.WithMessagef(err, "failed to create like index on %s", target)
		}
	}

	_, err = m.db.Collection(constants.SubscriptionCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.WithMessage(err, "failed to create subscription index")
}

func (m *MongoClient) FindByID(ctx context.Context, collection string, id primitive.ObjectID) (Document, error) {
	return m.FindOne(ctx, collection, bson.M{"_id": id})
}

func (m *MongoClient) FindOne(ctx context.Context, collection string, filter bson.M) (Document, error) {
	var doc Document
	err := m.db.Collection(collection).FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "FindOne on %s failed", collection)
	}
	return doc, nil
}

func (m *MongoClient) Find(ctx context.Context, collection string, filter bson.M) ([]Document, error) {
	cur, err := m.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "Find on %s failed", collection)
	}
	defer cur.Close(ctx)
	docs := make([]Document, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "Find on %s failed to decode", collection)
	}
	return docs, nil
}

func (m *MongoClient) Create(ctx context.Context, collection string, fields Document) (Document, error) {
	res, err := m.db.Collection(collection).InsertOne(ctx, fields)
	if err != nil {
		return nil, errors.Wrapf(err, "Create on %s failed", collection)
	}
	stored := Document{}
	for k, v := range fields {
		stored[k] = v
	}
	stored["_id"] = res.InsertedID
	return stored, nil
}

func (m *MongoClient) UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, update bson.M) (Document, error) {
	after := options.After
	var doc Document
	err := m.db.Collection(collection).FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(after)).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "UpdateByID on %s failed", collection)
	}
	return doc, nil
}

func (m *MongoClient) UpdateMany(ctx context.Context, collection string, filter, update bson.M) (int64, error) {
	res, err := m.db.Collection(collection).UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, errors.Wrapf(err, "UpdateMany on %s failed", collection)
	}
	return res.ModifiedCount, nil
}

func (m *MongoClient) DeleteByID(ctx context.Context, collection string, id primitive.ObjectID) (Document, error) {
	var doc Document
	err := m.db.Collection(collection).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "DeleteByID on %s failed", collection)
	}
	return doc, nil
}

func (m *MongoClient) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	res, err := m.db.Collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "DeleteOne on %s failed", collection)
	}
	return res.DeletedCount, nil
}

func (m *MongoClient) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	res, err := m.db.Collection(collection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "DeleteMany on %s failed", collection)
	}
	return res.DeletedCount, nil
}

func (m *MongoClient) Aggregate(ctx context.Context, collection string, stages []bson.D) ([]Document, error) {
	pipeline := make(mongo.Pipeline, 0, len(stages))
	for _, s := range stages {
		pipeline = append(pipeline, s)
	}
	cur, err := m.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrapf(err, "Aggregate on %s failed", collection)
	}
	defer cur.Close(ctx)
	docs := make([]Document, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "Aggregate on %s failed to decode", collection)
	}
	return docs, nil
}
