package model

import (
	"strings"
	"time"
)

// Store is the tenant. Every customer, transaction and invoice belongs to exactly one store.
type Store struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Email        *string   `json:"email,omitempty"`
	Address      *string   `json:"address,omitempty"`
	GstNumber    *string   `json:"gstNumber,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	Name      string  `json:"name"      validate:"required,max=255"`
	Phone     string  `json:"phone"     validate:"required,min=7,max=20"`
	Password  string  `json:"password"  validate:"required,min=6,max=72"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Address   *string `json:"address"   validate:"omitempty,max=1000"`
	GstNumber *string `json:"gstNumber" validate:"omitempty,max=32"`
}

func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	return ValidateStruct(r)
}

type LoginRequest struct {
	Phone    string `json:"phone"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Phone = strings.TrimSpace(r.Phone)
	return ValidateStruct(r)
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Store *Store `json:"store"`
	Token string `json:"token"`
}

// StoreUpdateRequest carries the profile fields to change; nil fields keep their value.
type StoreUpdateRequest struct {
	Name      *string `json:"name"      validate:"omitempty,min=1,max=255"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Address   *string `json:"address"   validate:"omitempty,max=1000"`
	GstNumber *string `json:"gstNumber" validate:"omitempty,max=32"`
}

func (r *StoreUpdateRequest) Validate() error {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
	}
	return ValidateStruct(r)
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,max=72"`
}

func (r *PasswordChangeRequest) Validate() error {
	return ValidateStruct(r)
}
