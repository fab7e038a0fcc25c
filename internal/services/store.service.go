package services

import (
	"context"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/tenant"
)

// StoreService serves the profile of the store bound to the request context.
type StoreService struct {
	stores StoreRepository
	hasher PasswordHasher
}

func NewStoreService(stores StoreRepository, hasher PasswordHasher) *StoreService {
	return &StoreService{
		stores: stores,
		hasher: hasher,
	}
}

func (s *StoreService) Profile(ctx context.Context) (*model.Store, error) {
	id, err := tenant.StoreID(ctx)
	if err != nil {
		return nil, err
	}
	return s.stores.GetByID(ctx, id)
}

func (s *StoreService) UpdateProfile(ctx context.Context, req model.StoreUpdateRequest) (*model.Store, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	store, err := s.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.Email != nil {
		store.Email = req.Email
	}
	if req.Address != nil {
		store.Address = req.Address
	}
	if req.GstNumber != nil {
		store.GstNumber = req.GstNumber
	}
	return s.stores.Update(ctx, store)
}

func (s *StoreService) ChangePassword(ctx context.Context, req model.PasswordChangeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	store, err := s.Profile(ctx)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(store.PasswordHash, req.CurrentPassword) {
		return model.UnauthorizedError("current password is incorrect")
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.stores.UpdatePassword(ctx, store.ID, hash)
}
