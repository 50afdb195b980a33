package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"foreverhome/internal/model"
	"foreverhome/internal/store"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, doc store.Document) (*store.InsertResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.InsertResult), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]store.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Document), args.Error(1)
}

// MockRecordRepository is a mock implementation of RecordRepository.
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, doc store.Document) (*store.InsertResult, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.InsertResult), args.Error(1)
}

func (m *MockRecordRepository) List(ctx context.Context) ([]store.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Document), args.Error(1)
}

func (m *MockRecordRepository) ListByEmail(ctx context.Context, email string) ([]store.Document, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Document), args.Error(1)
}

func (m *MockRecordRepository) FindByID(ctx context.Context, id string) (store.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(store.Document), args.Error(1)
}

func (m *MockRecordRepository) Patch(ctx context.Context, id string, fields store.Document) (*store.UpdateResult, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.UpdateResult), args.Error(1)
}
