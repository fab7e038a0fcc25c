package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/bookkeeper/internal/auth"
	"github.com/nimasrn/bookkeeper/internal/events"
	"github.com/nimasrn/bookkeeper/internal/handlers"
	"github.com/nimasrn/bookkeeper/internal/processor"
	"github.com/nimasrn/bookkeeper/internal/queue"
	"github.com/nimasrn/bookkeeper/internal/repository"
	"github.com/nimasrn/bookkeeper/internal/services"
	xhttp "github.com/nimasrn/bookkeeper/pkg/http"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/nimasrn/bookkeeper/pkg/redis"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"golang.org/x/crypto/bcrypt"
)

func SetupTestDB(t *testing.T) *pg.DB {
	return repository.OpenSQLite(t)
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)

	// adapters are cached by connection name
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	adapter, err := redis.NewRedisAdapter(connName, "", &redis.Options{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Client().Close() })

	return mr, adapter
}

func TestQueueConfig() queue.QueueConfig {
	return queue.QueueConfig{
		Name:              "test:ledger:events",
		ConsumerGroup:     "test-ledger",
		ConsumerName:      "test",
		MaxRetries:        3,
		VisibilityTimeout: time.Second,
		PollInterval:      20 * time.Millisecond,
		BatchSize:         10,
	}
}

// API is the full HTTP stack wired against sqlite and miniredis, served over an in-memory
// listener.
type API struct {
	DB      *pg.DB
	Redis   *miniredis.Miniredis
	Adapter redis.RedisAdapter
	Queue   *queue.Queue

	engine *xhttp.Engine
	ln     *fasthttputil.InmemoryListener
	client *fasthttp.Client
}

func StartAPI(t *testing.T) *API {
	t.Helper()
	db := SetupTestDB(t)
	mr, adapter := SetupTestRedis(t)

	q, err := queue.NewQueue(adapter, TestQueueConfig())
	require.NoError(t, err)
	t.Cleanup(func() { q.Stop(time.Second) })

	publisher := events.NewQueuePublisher(q)
	cache := services.NewRedisSummaryCache(adapter, time.Minute)

	storeRepo := repository.NewStoreRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	tokens := auth.NewTokenIssuer("e2e-secret", time.Hour)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	e := xhttp.NewServer(xhttp.DefaultServerOption)
	e.Use(xhttp.RecoverMiddleware)
	e.Use(xhttp.RequestIDMiddleware)
	e.Use(xhttp.TimeoutMiddleware(5 * time.Second))

	guard := auth.Middleware(tokens)
	g := e.Router.Group("/api")
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(services.NewHealthService(db, adapter)))
	handlers.RegisterAuthRoutes(g, handlers.NewAuthHandler(
		services.NewAuthService(storeRepo, hasher, tokens),
		services.NewStoreService(storeRepo, hasher),
	), guard)
	handlers.RegisterCustomerRoutes(g, handlers.NewCustomerHandler(services.NewCustomerService(customerRepo)), guard)
	handlers.RegisterTransactionRoutes(g, handlers.NewTransactionHandler(
		services.NewTransactionService(transactionRepo, customerRepo, publisher),
	), guard)
	handlers.RegisterInvoiceRoutes(g, handlers.NewInvoiceHandler(
		services.NewInvoiceService(db, invoiceRepo, customerRepo, transactionRepo, publisher, cache, 5),
	), guard)
	require.NoError(t, e.DoRouting())

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = e.Server.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		e.Shutdown(ctx)
	})

	return &API{
		DB:      db,
		Redis:   mr,
		Adapter: adapter,
		Queue:   q,
		engine:  e,
		ln:      ln,
		client: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
	}
}

// StartProcessor runs the ledger event processor against the API's database and queue.
func (a *API) StartProcessor(t *testing.T) *processor.ProcessorService {
	t.Helper()
	customerRepo := repository.NewCustomerRepository(a.DB)
	transactionRepo := repository.NewTransactionRepository(a.DB)

	service := processor.NewProcessorService(a.Adapter, processor.Config{
		Queue:     TestQueueConfig(),
		Consumers: 1,
		Workers:   2,
	})
	service.RegisterProcessor(processor.NewLedgerEventProcessor(
		customerRepo, transactionRepo,
		processor.NewIdempotencyService(a.Adapter, processor.DefaultIdempotencyConfig()),
	))
	require.NoError(t, service.Start())
	t.Cleanup(service.Stop)
	return service
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Response struct {
	Status  int             `json:"-"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []FieldError    `json:"errors"`
}

// Decode unmarshals the envelope's data into v.
func (r *Response) Decode(t *testing.T, v any) {
	t.Helper()
	require.NotEmpty(t, r.Data, "response has no data: %s", r.Message)
	require.NoError(t, json.Unmarshal(r.Data, v))
}

// Do sends a JSON request, authenticated when token is set.
func (a *API) Do(t *testing.T, method, path, token string, body any) *Response {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI("http://bookkeeper.test" + path)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req.Header.SetContentType("application/json")
		req.SetBody(raw)
	}

	require.NoError(t, a.client.DoTimeout(req, resp, 5*time.Second))

	out := &Response{Status: resp.StatusCode()}
	if len(resp.Body()) > 0 {
		require.NoError(t, json.Unmarshal(resp.Body(), out), "body: %s", resp.Body())
	}
	return out
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func Ptr[T any](v T) *T {
	return &v
}
