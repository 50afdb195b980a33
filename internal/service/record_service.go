package service

import (
	"context"
	"fmt"

	apperrors "foreverhome/internal/errors"
	"foreverhome/internal/model"
	"foreverhome/internal/repository"
	"foreverhome/internal/store"
)

// RecordService exposes the pass-through operations shared by pets, adoption
// requests and donation campaigns.
type RecordService interface {
	Create(ctx context.Context, doc store.Document) (*store.InsertResult, error)
	List(ctx context.Context) ([]store.Document, error)
	ListByEmail(ctx context.Context, email string) ([]store.Document, error)
	Get(ctx context.Context, id string) (store.Document, error)
	Patch(ctx context.Context, id string, fields store.Document) (*store.UpdateResult, error)
}

// CampaignService adds the admin pause toggle to the record operations.
type CampaignService interface {
	RecordService
	SetPaused(ctx context.Context, id string, paused bool) (*store.UpdateResult, error)
}

type recordService struct {
	repo repository.RecordRepository
}

// NewRecordService builds a RecordService over repo.
func NewRecordService(repo repository.RecordRepository) RecordService {
	return &recordService{repo: repo}
}

// NewCampaignService builds a CampaignService over repo.
func NewCampaignService(repo repository.RecordRepository) CampaignService {
	return &campaignService{recordService{repo: repo}}
}

func (s *recordService) Create(ctx context.Context, doc store.Document) (*store.InsertResult, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: document is empty", apperrors.ErrInvalidBody)
	}
	return s.repo.Create(ctx, without(doc, store.IDField))
}

func (s *recordService) List(ctx context.Context) ([]store.Document, error) {
	return s.repo.List(ctx)
}

func (s *recordService) ListByEmail(ctx context.Context, email string) ([]store.Document, error) {
	return s.repo.ListByEmail(ctx, email)
}

func (s *recordService) Get(ctx context.Context, id string) (store.Document, error) {
	return s.repo.FindByID(ctx, id)
}

// Patch sets the given fields on one record. The identifier cannot be patched.
func (s *recordService) Patch(ctx context.Context, id string, fields store.Document) (*store.UpdateResult, error) {
	return s.patch(ctx, id, without(fields, store.IDField))
}

func (s *recordService) patch(ctx context.Context, id string, patch store.Document) (*store.UpdateResult, error) {
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: patch is empty", apperrors.ErrInvalidBody)
	}
	return s.repo.Patch(ctx, id, patch)
}

type campaignService struct {
	recordService
}

// Patch edits a campaign. The paused flag is only changed through SetPaused,
// so it is dropped from general edits.
func (s *campaignService) Patch(ctx context.Context, id string, fields store.Document) (*store.UpdateResult, error) {
	return s.patch(ctx, id, without(fields, store.IDField, model.FieldIsPaused))
}

func (s *campaignService) SetPaused(ctx context.Context, id string, paused bool) (*store.UpdateResult, error) {
	return s.repo.Patch(ctx, id, store.Document{model.FieldIsPaused: paused})
}

// without copies doc minus the given keys.
func without(doc store.Document, keys ...string) store.Document {
	out := make(store.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
