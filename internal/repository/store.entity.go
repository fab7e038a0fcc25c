package repository

import (
	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/pkg/pg"
)

type StoreEntity struct {
	pg.Model
	Name         string  `db:"name"          gorm:"column:name;not null"`
	Phone        string  `db:"phone"         gorm:"column:phone;not null;uniqueIndex:ux_store_phone"`
	PasswordHash string  `db:"password_hash" gorm:"column:password_hash;not null"`
	Email        *string `db:"email"         gorm:"column:email"`
	Address      *string `db:"address"       gorm:"column:address"`
	GstNumber    *string `db:"gst_number"    gorm:"column:gst_number"`
}

func (StoreEntity) TableName() string {
	return "store"
}

func toStoreEntity(m *model.Store) *StoreEntity {
	if m == nil {
		return nil
	}
	return &StoreEntity{
		Model:        pg.Model{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Name:         m.Name,
		Phone:        m.Phone,
		PasswordHash: m.PasswordHash,
		Email:        m.Email,
		Address:      m.Address,
		GstNumber:    m.GstNumber,
	}
}

func toStoreModel(e *StoreEntity) *model.Store {
	if e == nil {
		return nil
	}
	return &model.Store{
		ID:           e.ID,
		Name:         e.Name,
		Phone:        e.Phone,
		PasswordHash: e.PasswordHash,
		Email:        e.Email,
		Address:      e.Address,
		GstNumber:    e.GstNumber,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
