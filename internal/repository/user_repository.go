package repository

import (
	"context"

	apperrors "foreverhome/internal/errors"
	"foreverhome/internal/model"
	"foreverhome/internal/store"
)

// UserRepository defines persistence operations on user records.
type UserRepository interface {
	Create(ctx context.Context, doc store.Document) (*store.InsertResult, error)
	// FindByEmail returns (nil, nil) when no user has that email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]store.Document, error)
}

type userRepository struct {
	coll store.Collection
}

// NewUserRepository builds a repository over the users collection of s.
func NewUserRepository(s store.Store) UserRepository {
	return &userRepository{coll: s.Collection(model.CollectionUsers)}
}

func (r *userRepository) Create(ctx context.Context, doc store.Document) (*store.InsertResult, error) {
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, apperrors.NewStoreError("insertOne", model.CollectionUsers, nil, err)
	}
	return res, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	filter := store.ByField(model.FieldEmail, email)
	doc, err := r.coll.FindOne(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStoreError("findOne", model.CollectionUsers, filter, err)
	}
	return model.UserFromDocument(doc), nil
}

func (r *userRepository) List(ctx context.Context) ([]store.Document, error) {
	docs, err := r.coll.Find(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("find", model.CollectionUsers, nil, err)
	}
	return docs, nil
}
