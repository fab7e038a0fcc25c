package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/nimasrn/bookkeeper/internal/auth"
	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/tenant"
	xhttp "github.com/nimasrn/bookkeeper/pkg/http"
	"github.com/nimasrn/bookkeeper/pkg/logger"
)

const internalErrorMessage = "internal server error"

// responder is embedded by the resource handlers and carries how errors are rendered.
type responder struct {
	exposeInternal bool
}

type Option func(*responder)

// WithInternalErrors makes 500 responses carry the underlying error text. Only for dev.
func WithInternalErrors(expose bool) Option {
	return func(r *responder) {
		r.exposeInternal = expose
	}
}

func newResponder(opts []Option) responder {
	var r responder
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

type envelope struct {
	Success bool               `json:"success"`
	Data    any                `json:"data,omitempty"`
	Message string             `json:"message,omitempty"`
	Errors  []model.FieldError `json:"errors,omitempty"`
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return model.NewValidationError("body", "is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return model.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("[handlers] encode response", "error", err, "request_id", xhttp.RequestID(ctx))
		status = xhttp.StatusInternalServerError
		b = []byte(`{"success":false,"message":"` + internalErrorMessage + `"}`)
	}
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeData(ctx *xhttp.RequestCtx, status int, data any) {
	writeJSON(ctx, status, envelope{Success: true, Data: data})
}

func writeMessage(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, envelope{Success: true, Message: msg})
}

func writeError(ctx *xhttp.RequestCtx, err error) {
	responder{}.writeError(ctx, err)
}

// writeError maps the domain error kinds to status codes. Anything unclassified is a 500 and
// is logged with the request id.
func (r responder) writeError(ctx *xhttp.RequestCtx, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(ctx, xhttp.StatusBadRequest, envelope{Message: "validation failed", Errors: verr.Fields})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(ctx, xhttp.StatusNotFound, envelope{Message: err.Error()})
	case errors.Is(err, model.ErrInvalidState):
		writeJSON(ctx, xhttp.StatusBadRequest, envelope{Message: err.Error()})
	case errors.Is(err, model.ErrConflict):
		writeJSON(ctx, xhttp.StatusConflict, envelope{Message: err.Error()})
	case errors.Is(err, model.ErrUnauthorized), errors.Is(err, tenant.ErrNoTenant):
		writeJSON(ctx, xhttp.StatusUnauthorized, envelope{Message: err.Error()})
	default:
		logger.Error("[handlers] request failed",
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"request_id", xhttp.RequestID(ctx),
			"error", err)
		msg := internalErrorMessage
		if r.exposeInternal {
			msg = err.Error()
		}
		writeJSON(ctx, xhttp.StatusInternalServerError, envelope{Message: msg})
	}
}

// storeContext binds the authenticated store to the request context.
func storeContext(ctx *xhttp.RequestCtx) (context.Context, bool) {
	storeID, ok := auth.StoreID(ctx)
	if !ok {
		writeError(ctx, model.UnauthorizedError("missing store"))
		return nil, false
	}
	return tenant.WithStore(ctx, storeID), true
}

// pathID reads a positive integer route parameter.
func pathID(ctx *xhttp.RequestCtx, name string) (int64, bool) {
	raw, _ := ctx.UserValue(name).(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(ctx, model.NewValidationError(name, "must be a positive integer"))
		return 0, false
	}
	return id, true
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

// queryInt64 parses an optional integer query argument; absent yields nil.
func queryInt64(ctx *xhttp.RequestCtx, key string, verr *model.ValidationError) *int64 {
	v := query(ctx, key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		verr.Add(key, "must be an integer")
		return nil
	}
	return &n
}

func queryInt(ctx *xhttp.RequestCtx, key string, verr *model.ValidationError) int {
	v := query(ctx, key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		verr.Add(key, "must be an integer")
		return 0
	}
	return n
}
