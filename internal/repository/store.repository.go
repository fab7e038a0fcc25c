package repository

import (
	"context"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// StoreRepository is the only repository that is not tenant scoped: a store is the tenant.
type StoreRepository struct {
	*pg.DB
}

func NewStoreRepository(db *pg.DB) *StoreRepository {
	return &StoreRepository{
		db,
	}
}

func (r *StoreRepository) Create(ctx context.Context, s *model.Store) (*model.Store, error) {
	entity := toStoreEntity(s)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, model.ConflictError("phone number is already registered")
		}
		return nil, errors.Wrap(err, "create store")
	}
	return toStoreModel(entity), nil
}

func (r *StoreRepository) GetByID(ctx context.Context, id int64) (*model.Store, error) {
	var entity StoreEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("store not found")
		}
		return nil, errors.Wrap(err, "get store")
	}
	return toStoreModel(&entity), nil
}

func (r *StoreRepository) GetByPhone(ctx context.Context, phone string) (*model.Store, error) {
	var entity StoreEntity
	err := r.Read(ctx).Where("phone = ?", phone).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("store not found")
		}
		return nil, errors.Wrap(err, "get store by phone")
	}
	return toStoreModel(&entity), nil
}

// Update writes the profile fields of s.
func (r *StoreRepository) Update(ctx context.Context, s *model.Store) (*model.Store, error) {
	res := r.Write(ctx).Model(&StoreEntity{}).Where("id = ?", s.ID).Updates(map[string]any{
		"name":       s.Name,
		"email":      s.Email,
		"address":    s.Address,
		"gst_number": s.GstNumber,
	})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update store")
	}
	if res.RowsAffected == 0 {
		return nil, model.NotFoundError("store not found")
	}
	return r.GetByID(ctx, s.ID)
}

func (r *StoreRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res := r.Write(ctx).Model(&StoreEntity{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update store password")
	}
	if res.RowsAffected == 0 {
		return model.NotFoundError("store not found")
	}
	return nil
}
