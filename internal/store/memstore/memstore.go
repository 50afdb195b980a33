// Package memstore is an in-process document store used by tests and local runs.
package memstore

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"foreverhome/internal/store"
)

// Store keeps collections in memory, in insertion order.
type Store struct {
	mu          sync.Mutex
	collections map[string][]store.Document
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{collections: map[string][]store.Document{}}
}

// Collection returns the named collection, creating it on first write.
func (s *Store) Collection(name string) store.Collection {
	return &collection{store: s, name: name}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

// Len reports how many documents the named collection holds.
func (s *Store) Len(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[name])
}

type collection struct {
	store *Store
	name  string
}

func (c *collection) InsertOne(ctx context.Context, doc store.Document) (*store.InsertResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := clone(doc)
	id := uuid.NewString()
	stored[store.IDField] = id

	c.store.mu.Lock()
	c.store.collections[c.name] = append(c.store.collections[c.name], stored)
	c.store.mu.Unlock()

	return &store.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (c *collection) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	for _, doc := range c.store.collections[c.name] {
		if matches(doc, filter) {
			return clone(doc), nil
		}
	}
	return nil, nil
}

func (c *collection) Find(ctx context.Context, filter store.Filter) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	out := make([]store.Document, 0)
	for _, doc := range c.store.collections[c.name] {
		if matches(doc, filter) {
			out = append(out, clone(doc))
		}
	}
	return out, nil
}

func (c *collection) UpdateOne(ctx context.Context, filter store.Filter, patch store.Document) (*store.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	res := &store.UpdateResult{Acknowledged: true}
	for _, doc := range c.store.collections[c.name] {
		if !matches(doc, filter) {
			continue
		}
		res.MatchedCount = 1
		for k, v := range patch {
			if k == store.IDField {
				continue
			}
			if old, ok := doc[k]; !ok || !reflect.DeepEqual(old, v) {
				doc[k] = cloneValue(v)
				res.ModifiedCount = 1
			}
		}
		return res, nil
	}
	return res, nil
}

func matches(doc store.Document, filter store.Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func clone(doc store.Document) store.Document {
	out := make(store.Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(clone(t))
	case store.Document:
		return clone(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
