// Package mongostore implements the document store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"foreverhome/internal/store"
)

// Store is a MongoDB database handle. It owns the client and disconnects it on Close.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// New wraps a connected client, scoping collections to database.
func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// Collection returns the named collection.
func (s *Store) Collection(name string) store.Collection {
	return &collection{coll: s.db.Collection(name)}
}

// Ping runs the admin ping command.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type collection struct {
	coll *mongo.Collection
}

func (c *collection) InsertOne(ctx context.Context, doc store.Document) (*store.InsertResult, error) {
	res, err := c.coll.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return nil, err
	}
	return &store.InsertResult{Acknowledged: true, InsertedID: idString(res.InsertedID)}, nil
}

func (c *collection) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	f, ok := toBSON(filter)
	if !ok {
		return nil, nil
	}
	var out bson.M
	if err := c.coll.FindOne(ctx, f).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return normalize(out), nil
}

func (c *collection) Find(ctx context.Context, filter store.Filter) ([]store.Document, error) {
	docs := make([]store.Document, 0)
	f, ok := toBSON(filter)
	if !ok {
		return docs, nil
	}
	cursor, err := c.coll.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	var out []bson.M
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	for _, m := range out {
		docs = append(docs, normalize(m))
	}
	return docs, nil
}

func (c *collection) UpdateOne(ctx context.Context, filter store.Filter, patch store.Document) (*store.UpdateResult, error) {
	f, ok := toBSON(filter)
	if !ok {
		return &store.UpdateResult{Acknowledged: true}, nil
	}
	set := bson.M{}
	for k, v := range patch {
		if k != store.IDField {
			set[k] = v
		}
	}
	res, err := c.coll.UpdateOne(ctx, f, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	out := &store.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if res.UpsertedID != nil {
		id := idString(res.UpsertedID)
		out.UpsertedID = &id
	}
	return out, nil
}

// toBSON converts a filter, turning the hex _id into an ObjectID. It reports
// false when the filter can match nothing, such as a malformed identifier.
func toBSON(filter store.Filter) (bson.M, bool) {
	out := bson.M{}
	for k, v := range filter {
		if k != store.IDField {
			out[k] = v
			continue
		}
		switch id := v.(type) {
		case primitive.ObjectID:
			out[k] = id
		case string:
			oid, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				return nil, false
			}
			out[k] = oid
		default:
			return nil, false
		}
	}
	return out, true
}

// normalize exposes the identifier as a hex string.
func normalize(m bson.M) store.Document {
	doc := store.Document(m)
	if id, ok := doc[store.IDField]; ok {
		doc[store.IDField] = idString(id)
	}
	return doc
}

func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
