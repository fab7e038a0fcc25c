package repository

import (
	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/shopspring/decimal"
)

type CustomerEntity struct {
	pg.Model
	StoreID    int64           `db:"store_id"    gorm:"column:store_id;not null;uniqueIndex:ux_customer_store_phone,priority:1"`
	Name       string          `db:"name"        gorm:"column:name;not null"`
	Phone      string          `db:"phone"       gorm:"column:phone;not null;uniqueIndex:ux_customer_store_phone,priority:2"`
	Email      *string         `db:"email"       gorm:"column:email"`
	Address    *string         `db:"address"     gorm:"column:address"`
	TotalSpent decimal.Decimal `db:"total_spent" gorm:"column:total_spent;type:numeric(14,2);not null;default:0"`
}

func (CustomerEntity) TableName() string {
	return "customer"
}

func toCustomerEntity(m *model.Customer) *CustomerEntity {
	if m == nil {
		return nil
	}
	return &CustomerEntity{
		Model:      pg.Model{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		StoreID:    m.StoreID,
		Name:       m.Name,
		Phone:      m.Phone,
		Email:      m.Email,
		Address:    m.Address,
		TotalSpent: m.TotalSpent,
	}
}

func toCustomerModel(e *CustomerEntity) *model.Customer {
	if e == nil {
		return nil
	}
	return &model.Customer{
		ID:         e.ID,
		StoreID:    e.StoreID,
		Name:       e.Name,
		Phone:      e.Phone,
		Email:      e.Email,
		Address:    e.Address,
		TotalSpent: e.TotalSpent.Round(2),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toCustomerModels(entities []*CustomerEntity) []*model.Customer {
	models := make([]*model.Customer, len(entities))
	for i, e := range entities {
		models[i] = toCustomerModel(e)
	}
	return models
}
