package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID         int64           `json:"id"`
	StoreID    int64           `json:"storeId"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Email      *string         `json:"email,omitempty"`
	Address    *string         `json:"address,omitempty"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type CustomerCreateRequest struct {
	Name    string  `json:"name"    validate:"required,max=255"`
	Phone   string  `json:"phone"   validate:"required,min=7,max=20"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Address *string `json:"address" validate:"omitempty,max=1000"`
}

func (r *CustomerCreateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	return ValidateStruct(r)
}

// CustomerUpdateRequest carries the fields to change; nil fields keep their value.
type CustomerUpdateRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=1,max=255"`
	Phone   *string `json:"phone"   validate:"omitempty,min=7,max=20"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Address *string `json:"address" validate:"omitempty,max=1000"`
}

func (r *CustomerUpdateRequest) Validate() error {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Phone != nil {
		v := strings.TrimSpace(*r.Phone)
		r.Phone = &v
	}
	return ValidateStruct(r)
}

// CustomerFilter controls List queries.
type CustomerFilter struct {
	Search string // prefix of name or phone
	Limit  int
	Offset int
}
