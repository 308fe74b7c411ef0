package storage

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AggregateCall records one pipeline execution against the memory client.
type AggregateCall struct {
	Collection string
	Stages     []bson.D
}

// MemoryClient is an in-memory Client used by the service tests and for
// running the API without a mongod. Find/Create/Update/Delete implement the
// store contract over equality filters (array fields match by containment,
// mirroring the store's semantics); Aggregate returns seeded results and
// records the pipeline it was asked to run.
type MemoryClient struct {
	mu          sync.RWMutex
	collections map[string][]Document

	aggregateSeed  map[string][][]Document
	AggregateCalls []AggregateCall
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		collections:   make(map[string][]Document),
		aggregateSeed: make(map[string][][]Document),
	}
}

// SeedAggregate queues a result set for the next Aggregate call on collection.
func (m *MemoryClient) SeedAggregate(collection string, docs []Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aggregateSeed[collection] = append(m.aggregateSeed[collection], docs)
}

// Count returns the number of documents matching the filter.
func (m *MemoryClient) Count(collection string, filter bson.M) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			n++
		}
	}
	return n
}

func clone(doc Document) Document {
	out := Document{}
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func equal(a, b interface{}) bool {
	if ida, ok := a.(primitive.ObjectID); ok {
		if idb, ok := b.(primitive.ObjectID); ok {
			return ida == idb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func contains(arr primitive.A, v interface{}) bool {
	for _, el := range arr {
		if equal(el, v) {
			return true
		}
	}
	return false
}

func asArray(v interface{}) (primitive.A, bool) {
	switch t := v.(type) {
	case primitive.A:
		return t, true
	case []interface{}:
		return primitive.A(t), true
	case []primitive.ObjectID:
		arr := make(primitive.A, 0, len(t))
		for _, id := range t {
			arr = append(arr, id)
		}
		return arr, true
	}
	return nil, false
}

func matches(doc Document, filter bson.M) bool {
	for key, want := range filter {
		if key == "$or" {
			anyMatch := false
			for _, sub := range orBranches(want) {
				if matches(doc, sub) {
					anyMatch = true
					break
				}
			}
			if !anyMatch {
				return false
			}
			continue
		}

		have, present := doc[key]
		if cond, ok := want.(bson.M); ok {
			if exists, ok := cond["$exists"]; ok {
				if exists.(bool) != present {
					return false
				}
				continue
			}
		}
		if !present {
			return false
		}
		// Equality against an array field means containment.
		if arr, ok := asArray(have); ok {
			if !contains(arr, want) {
				return false
			}
			continue
		}
		if !equal(have, want) {
			return false
		}
	}
	return true
}

func orBranches(v interface{}) []bson.M {
	switch t := v.(type) {
	case []bson.M:
		return t
	case bson.A:
		out := make([]bson.M, 0, len(t))
		for _, el := range t {
			if m, ok := el.(bson.M); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func applyUpdate(doc Document, update bson.M) {
	for op, fields := range update {
		spec, ok := fields.(bson.M)
		if !ok {
			continue
		}
		switch op {
		case "$set":
			for k, v := range spec {
				doc[k] = v
			}
		case "$push":
			for k, v := range spec {
				arr, _ := asArray(doc[k])
				doc[k] = append(arr, v)
			}
		case "$pull":
			for k, v := range spec {
				arr, _ := asArray(doc[k])
				kept := make(primitive.A, 0, len(arr))
				for _, el := range arr {
					if !equal(el, v) {
						kept = append(kept, el)
					}
				}
				doc[k] = kept
			}
		}
	}
}

func (m *MemoryClient) FindByID(ctx context.Context, collection string, id primitive.ObjectID) (Document, error) {
	return m.FindOne(ctx, collection, bson.M{"_id": id})
}

func (m *MemoryClient) FindOne(ctx context.Context, collection string, filter bson.M) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			return clone(doc), nil
		}
	}
	return nil, nil
}

func (m *MemoryClient) Find(ctx context.Context, collection string, filter bson.M) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Document, 0)
	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			out = append(out, clone(doc))
		}
	}
	return out, nil
}

func (m *MemoryClient) Create(ctx context.Context, collection string, fields Document) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := clone(fields)
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID()
	}
	m.collections[collection] = append(m.collections[collection], doc)
	return clone(doc), nil
}

func (m *MemoryClient) UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, update bson.M) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.collections[collection] {
		if equal(doc["_id"], id) {
			applyUpdate(doc, update)
			return clone(doc), nil
		}
	}
	return nil, nil
}

func (m *MemoryClient) UpdateMany(ctx context.Context, collection string, filter, update bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			applyUpdate(doc, update)
			n++
		}
	}
	return n, nil
}

func (m *MemoryClient) DeleteByID(ctx context.Context, collection string, id primitive.ObjectID) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[collection]
	for i, doc := range docs {
		if equal(doc["_id"], id) {
			m.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return clone(doc), nil
		}
	}
	return nil, nil
}

func (m *MemoryClient) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := m.collections[collection]
	for i, doc := range docs {
		if matches(doc, filter) {
			m.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *MemoryClient) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]Document, 0)
	var n int64
	for _, doc := range m.collections[collection] {
		if matches(doc, filter) {
			n++
			continue
		}
		kept = append(kept, doc)
	}
	m.collections[collection] = kept
	return n, nil
}

func (m *MemoryClient) Aggregate(ctx context.Context, collection string, stages []bson.D) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AggregateCalls = append(m.AggregateCalls, AggregateCall{Collection: collection, Stages: stages})
	queue := m.aggregateSeed[collection]
	if len(queue) == 0 {
		return []Document{}, nil
	}
	m.aggregateSeed[collection] = queue[1:]
	return queue[0], nil
}
