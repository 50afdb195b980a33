package store

import "context"

// IDField is the filter and document key holding a record's generated identifier.
const IDField = "_id"

// Document is a schemaless record as stored in a collection.
type Document map[string]any

// Filter selects documents by exact equality on every key.
type Filter map[string]any

// ByID returns a filter matching the document with the given identifier.
func ByID(id string) Filter {
	return Filter{IDField: id}
}

// ByField returns a filter matching documents whose field equals value.
func ByField(field string, value any) Filter {
	return Filter{field: value}
}

// InsertResult describes a completed insert.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult describes a completed single-document update.
type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

// Collection is a named set of documents. Every call is atomic on its own;
// nothing spans calls.
type Collection interface {
	InsertOne(ctx context.Context, doc Document) (*InsertResult, error)
	// FindOne returns (nil, nil) when nothing matches.
	FindOne(ctx context.Context, filter Filter) (Document, error)
	Find(ctx context.Context, filter Filter) ([]Document, error)
	// UpdateOne sets the fields of patch on the first matching document.
	UpdateOne(ctx context.Context, filter Filter, patch Document) (*UpdateResult, error)
}

// Store is an open handle to a document database.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
