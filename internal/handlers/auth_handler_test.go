package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/valyala/fasthttp"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResult), args.Error(1)
}

type MockStoreService struct {
	mock.Mock
}

func (m *MockStoreService) Profile(ctx context.Context) (*model.Store, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Store), args.Error(1)
}

func (m *MockStoreService) UpdateProfile(ctx context.Context, req model.StoreUpdateRequest) (*model.Store, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Store), args.Error(1)
}

func (m *MockStoreService) ChangePassword(ctx context.Context, req model.PasswordChangeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("registered", func(t *testing.T) {
		authSvc := new(MockAuthService)
		handler := NewAuthHandler(authSvc, new(MockStoreService))
		authSvc.On("Register", mock.Anything, mock.MatchedBy(func(req model.RegisterRequest) bool {
			return req.Phone == "9000000001" && req.Password == "secret1"
		})).Return(&model.AuthResult{
			Store: &model.Store{ID: 1, Name: "Corner Shop", Phone: "9000000001", PasswordHash: "$2a$hash"},
			Token: "tok",
		}, nil)

		ctx := setupTestContext("POST", "/api/auth/register", jsonBody(t, map[string]string{
			"name": "Corner Shop", "phone": "9000000001", "password": "secret1",
		}))
		handler.Register(ctx)

		assert.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
		var res model.AuthResult
		decodeData(t, ctx, &res)
		assert.Equal(t, "tok", res.Token)
		assert.NotContains(t, string(ctx.Response.Body()), "$2a$hash")
	})

	t.Run("phone taken", func(t *testing.T) {
		authSvc := new(MockAuthService)
		handler := NewAuthHandler(authSvc, new(MockStoreService))
		authSvc.On("Register", mock.Anything, mock.Anything).Return(nil, model.ConflictError("a store with this phone already exists"))

		ctx := setupTestContext("POST", "/api/auth/register", []byte(`{"name":"x","phone":"9000000001","password":"secret1"}`))
		handler.Register(ctx)

		assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		authSvc := new(MockAuthService)
		handler := NewAuthHandler(authSvc, new(MockStoreService))
		authSvc.On("Login", mock.Anything, model.LoginRequest{Phone: "9000000001", Password: "nope"}).
			Return(nil, model.UnauthorizedError("invalid phone or password"))

		ctx := setupTestContext("POST", "/api/auth/login", []byte(`{"phone":"9000000001","password":"nope"}`))
		handler.Login(ctx)

		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		assert.Equal(t, "invalid phone or password", decodeResponse(t, ctx).Message)
	})

	t.Run("empty body", func(t *testing.T) {
		authSvc := new(MockAuthService)
		handler := NewAuthHandler(authSvc, new(MockStoreService))

		ctx := setupTestContext("POST", "/api/auth/login", nil)
		handler.Login(ctx)

		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
		authSvc.AssertNotCalled(t, "Login")
	})
}

func TestAuthHandler_Profile(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		storeSvc := new(MockStoreService)
		handler := NewAuthHandler(new(MockAuthService), storeSvc)
		storeSvc.On("Profile", inStore()).Return(&model.Store{ID: testStoreID, Name: "Corner Shop"}, nil)

		ctx := authedContext("GET", "/api/store/profile", nil)
		handler.GetProfile(ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		var s model.Store
		decodeData(t, ctx, &s)
		assert.Equal(t, testStoreID, s.ID)
	})

	t.Run("update", func(t *testing.T) {
		storeSvc := new(MockStoreService)
		handler := NewAuthHandler(new(MockAuthService), storeSvc)
		storeSvc.On("UpdateProfile", inStore(), mock.MatchedBy(func(req model.StoreUpdateRequest) bool {
			return req.GstNumber != nil && *req.GstNumber == "27AAAAA0000A1Z5" && req.Name == nil
		})).Return(&model.Store{ID: testStoreID}, nil)

		ctx := authedContext("PUT", "/api/store/profile", []byte(`{"gstNumber":"27AAAAA0000A1Z5"}`))
		handler.UpdateProfile(ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		storeSvc.AssertExpectations(t)
	})

	t.Run("wrong current password", func(t *testing.T) {
		storeSvc := new(MockStoreService)
		handler := NewAuthHandler(new(MockAuthService), storeSvc)
		storeSvc.On("ChangePassword", inStore(), model.PasswordChangeRequest{CurrentPassword: "old", NewPassword: "newpass"}).
			Return(model.UnauthorizedError("current password is incorrect"))

		ctx := authedContext("PUT", "/api/store/password", []byte(`{"currentPassword":"old","newPassword":"newpass"}`))
		handler.ChangePassword(ctx)

		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	})

	t.Run("password changed", func(t *testing.T) {
		storeSvc := new(MockStoreService)
		handler := NewAuthHandler(new(MockAuthService), storeSvc)
		storeSvc.On("ChangePassword", mock.Anything, mock.Anything).Return(nil)

		ctx := authedContext("PUT", "/api/store/password", []byte(`{"currentPassword":"old","newPassword":"newpass"}`))
		handler.ChangePassword(ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Equal(t, "password updated", decodeResponse(t, ctx).Message)
	})
}

type stubHealth struct {
	err error
}

func (s stubHealth) Check(context.Context) error { return s.err }

func TestHealthHandler_GetHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		handler := NewHealthHandler(stubHealth{})
		ctx := setupTestContext("GET", "/api/health", nil)
		handler.GetHealth(ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		var res healthResponse
		decodeData(t, ctx, &res)
		assert.Equal(t, "ok", res.Status)
	})

	t.Run("database down", func(t *testing.T) {
		handler := NewHealthHandler(stubHealth{err: errors.New("database: connection refused")})
		ctx := setupTestContext("GET", "/api/health", nil)
		handler.GetHealth(ctx)

		assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
		assert.False(t, decodeResponse(t, ctx).Success)
	})
}
