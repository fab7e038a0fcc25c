package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nimasrn/bookkeeper/internal/auth"
	"github.com/nimasrn/bookkeeper/internal/tenant"
	xhttp "github.com/nimasrn/bookkeeper/pkg/http"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

const testStoreID int64 = 7

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

// authedContext is setupTestContext for a request that already passed the auth middleware.
func authedContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := setupTestContext(method, path, body)
	ctx.SetUserValue(auth.StoreKey, testStoreID)
	return ctx
}

func withID(ctx *xhttp.RequestCtx, id string) *xhttp.RequestCtx {
	ctx.SetUserValue("id", id)
	return ctx
}

func jsonBody(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func decodeResponse(t *testing.T, ctx *xhttp.RequestCtx) testResponse {
	t.Helper()
	var res testResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &res))
	return res
}

func decodeData(t *testing.T, ctx *xhttp.RequestCtx, dst any) {
	t.Helper()
	res := decodeResponse(t, ctx)
	require.True(t, res.Success, "response: %s", ctx.Response.Body())
	require.NoError(t, json.Unmarshal(res.Data, dst))
}

// inStore matches a context bound to the test store.
func inStore() any {
	return mock.MatchedBy(func(ctx context.Context) bool {
		id, err := tenant.StoreID(ctx)
		return err == nil && id == testStoreID
	})
}
