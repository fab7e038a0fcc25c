package auth

import (
	"encoding/json"
	"strings"

	xhttp "github.com/nimasrn/bookkeeper/pkg/http"
)

// StoreKey is the user value under which the authenticated store id is stored.
const StoreKey = "store_id"

type TokenParser interface {
	Parse(raw string) (int64, error)
}

// Middleware rejects requests without a valid bearer token and records the store id for
// the handlers.
func Middleware(tokens TokenParser) xhttp.MiddlewareFunc {
	return func(next xhttp.RequestHandler) xhttp.RequestHandler {
		return func(ctx *xhttp.RequestCtx) {
			header := string(ctx.Request.Header.Peek("Authorization"))
			if header == "" {
				unauthorized(ctx, "missing authorization")
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(ctx, "invalid authorization")
				return
			}
			storeID, err := tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				unauthorized(ctx, "invalid or expired token")
				return
			}
			ctx.SetUserValue(StoreKey, storeID)
			next(ctx)
		}
	}
}

// StoreID returns the store recorded by Middleware.
func StoreID(ctx *xhttp.RequestCtx) (int64, bool) {
	id, ok := ctx.UserValue(StoreKey).(int64)
	return id, ok && id > 0
}

func unauthorized(ctx *xhttp.RequestCtx, msg string) {
	b, _ := json.Marshal(map[string]any{"success": false, "message": msg})
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.Header.Set("WWW-Authenticate", "Bearer")
	ctx.Response.SetStatusCode(xhttp.StatusUnauthorized)
	ctx.Response.SetBodyRaw(b)
}
