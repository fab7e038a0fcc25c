package services

import (
	"context"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/pkg/errors"
)

// errBadCredentials is shared by the unknown phone and wrong password cases so a caller cannot
// tell which registered phones exist.
const errBadCredentials = "invalid phone or password"

type StoreRepository interface {
	Create(ctx context.Context, s *model.Store) (*model.Store, error)
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	GetByPhone(ctx context.Context, phone string) (*model.Store, error)
	Update(ctx context.Context, s *model.Store) (*model.Store, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type TokenIssuer interface {
	Issue(storeID int64) (string, error)
}

type AuthService struct {
	stores StoreRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewAuthService(stores StoreRepository, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		stores: stores,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.Create(ctx, &model.Store{
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: hash,
		Email:        req.Email,
		Address:      req.Address,
		GstNumber:    req.GstNumber,
	})
	if err != nil {
		return nil, err
	}
	return s.issue(store)
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	store, err := s.stores.GetByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.UnauthorizedError(errBadCredentials)
		}
		return nil, err
	}
	if !s.hasher.Verify(store.PasswordHash, req.Password) {
		return nil, model.UnauthorizedError(errBadCredentials)
	}
	return s.issue(store)
}

func (s *AuthService) issue(store *model.Store) (*model.AuthResult, error) {
	token, err := s.tokens.Issue(store.ID)
	if err != nil {
		return nil, errors.Wrap(err, "issue token")
	}
	return &model.AuthResult{Store: store, Token: token}, nil
}
