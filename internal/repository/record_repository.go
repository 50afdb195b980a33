package repository

import (
	"context"

	apperrors "foreverhome/internal/errors"
	"foreverhome/internal/model"
	"foreverhome/internal/store"
)

// RecordRepository defines persistence operations shared by the pet,
// adoption request and donation campaign collections.
type RecordRepository interface {
	Create(ctx context.Context, doc store.Document) (*store.InsertResult, error)
	List(ctx context.Context) ([]store.Document, error)
	ListByEmail(ctx context.Context, email string) ([]store.Document, error)
	// FindByID returns (nil, nil) when the identifier matches nothing.
	FindByID(ctx context.Context, id string) (store.Document, error)
	Patch(ctx context.Context, id string, fields store.Document) (*store.UpdateResult, error)
}

type recordRepository struct {
	name string
	coll store.Collection
}

// NewRecordRepository builds a repository over the named collection of s.
func NewRecordRepository(s store.Store, collection string) RecordRepository {
	return &recordRepository{name: collection, coll: s.Collection(collection)}
}

func (r *recordRepository) Create(ctx context.Context, doc store.Document) (*store.InsertResult, error) {
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, apperrors.NewStoreError("insertOne", r.name, nil, err)
	}
	return res, nil
}

func (r *recordRepository) List(ctx context.Context) ([]store.Document, error) {
	docs, err := r.coll.Find(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("find", r.name, nil, err)
	}
	return docs, nil
}

func (r *recordRepository) ListByEmail(ctx context.Context, email string) ([]store.Document, error) {
	filter := store.ByField(model.FieldEmail, email)
	docs, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStoreError("find", r.name, filter, err)
	}
	return docs, nil
}

func (r *recordRepository) FindByID(ctx context.Context, id string) (store.Document, error) {
	filter := store.ByID(id)
	doc, err := r.coll.FindOne(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStoreError("findOne", r.name, filter, err)
	}
	return doc, nil
}

func (r *recordRepository) Patch(ctx context.Context, id string, fields store.Document) (*store.UpdateResult, error) {
	filter := store.ByID(id)
	res, err := r.coll.UpdateOne(ctx, filter, fields)
	if err != nil {
		return nil, apperrors.NewStoreError("updateOne", r.name, filter, err)
	}
	return res, nil
}
