package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "foreverhome/internal/errors"
	"foreverhome/internal/model"
	"foreverhome/internal/repository"
	"foreverhome/internal/store"
)

// RegisterResult reports the outcome of a registration. Insert is nil when the
// email was already registered.
type RegisterResult struct {
	Created bool
	Insert  *store.InsertResult
}

// UserService exposes user operations.
type UserService interface {
	Register(ctx context.Context, profile store.Document) (*RegisterResult, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]store.Document, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService over repo.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Register stores a new user unless one with the same email exists, in which
// case it succeeds without writing. New users always start as members; a role
// in the submitted profile is ignored.
func (s *userService) Register(ctx context.Context, profile store.Document) (*RegisterResult, error) {
	email, _ := profile[model.FieldEmail].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrInvalidBody)
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &RegisterResult{Created: false}, nil
	}

	doc := make(store.Document, len(profile)+1)
	for k, v := range profile {
		if k == store.IDField {
			continue
		}
		doc[k] = v
	}
	doc[model.FieldEmail] = email
	doc[model.FieldRole] = model.RoleMember.String()

	res, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{Created: true, Insert: res}, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *userService) List(ctx context.Context) ([]store.Document, error) {
	return s.repo.List(ctx)
}
