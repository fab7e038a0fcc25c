package handlers

import (
	"context"

	"github.com/nimasrn/bookkeeper/internal/model"
	xhttp "github.com/nimasrn/bookkeeper/pkg/http"
)

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResult, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResult, error)
}

type StoreService interface {
	Profile(ctx context.Context) (*model.Store, error)
	UpdateProfile(ctx context.Context, req model.StoreUpdateRequest) (*model.Store, error)
	ChangePassword(ctx context.Context, req model.PasswordChangeRequest) error
}

type AuthHandler struct {
	responder
	auth   AuthService
	stores StoreService
}

// RegisterAuthRoutes mounts the public auth endpoints and the guarded store profile.
func RegisterAuthRoutes(e *xhttp.Group, h *AuthHandler, guard xhttp.MiddlewareFunc) {
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.GET("/store/profile", guard(h.GetProfile))
	e.PUT("/store/profile", guard(h.UpdateProfile))
	e.PUT("/store/password", guard(h.ChangePassword))
}

func NewAuthHandler(authService AuthService, storeService StoreService, opts ...Option) *AuthHandler {
	return &AuthHandler{
		responder: newResponder(opts),
		auth:      authService,
		stores:    storeService,
	}
}

func (h *AuthHandler) Register(ctx *xhttp.RequestCtx) {
	var req model.RegisterRequest
	if err := readJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	res, err := h.auth.Register(ctx, req)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusCreated, res)
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req model.LoginRequest
	if err := readJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	res, err := h.auth.Login(ctx, req)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, res)
}

func (h *AuthHandler) GetProfile(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	store, err := h.stores.Profile(c)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, store)
}

func (h *AuthHandler) UpdateProfile(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	var req model.StoreUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	store, err := h.stores.UpdateProfile(c, req)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, store)
}

func (h *AuthHandler) ChangePassword(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	var req model.PasswordChangeRequest
	if err := readJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	if err := h.stores.ChangePassword(c, req); err != nil {
		h.writeError(ctx, err)
		return
	}
	writeMessage(ctx, xhttp.StatusOK, "password updated")
}
