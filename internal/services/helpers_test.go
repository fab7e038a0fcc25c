package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/bookkeeper/internal/events"
	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/repository"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/nimasrn/bookkeeper/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type invoiceFixture struct {
	db           *pg.DB
	ctx          context.Context
	store        *model.Store
	invoices     *repository.InvoiceRepository
	customers    *repository.CustomerRepository
	transactions *repository.TransactionRepository
	publisher    *recordingPublisher
	svc          *InvoiceService
}

func newInvoiceFixture(t *testing.T, cache SummaryCache) *invoiceFixture {
	t.Helper()
	db := repository.OpenSQLite(t)
	ctx, store := repository.SeedStore(t, db, "1111111")
	f := &invoiceFixture{
		db:           db,
		ctx:          ctx,
		store:        store,
		invoices:     repository.NewInvoiceRepository(db),
		customers:    repository.NewCustomerRepository(db),
		transactions: repository.NewTransactionRepository(db),
		publisher:    &recordingPublisher{},
	}
	if cache == nil {
		cache = NopSummaryCache{}
	}
	f.svc = NewInvoiceService(db, f.invoices, f.customers, f.transactions, f.publisher, cache, 3)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }
	seq := 0
	f.svc.suffix = func() int {
		seq++
		return seq
	}
	return f
}

func (f *invoiceFixture) countRows(t *testing.T, entity any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Read(context.Background()).Model(entity).Count(&n).Error)
	return n
}

func (f *invoiceFixture) settlementCount(t *testing.T, invoiceID int64) int64 {
	t.Helper()
	var n int64
	err := f.db.Read(context.Background()).Model(&repository.TransactionEntity{}).Where("invoice_id = ?", invoiceID).Count(&n).Error
	require.NoError(t, err)
	return n
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redis.NewFromClient(client, "test:")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func widgetRequest(customerID *int64) model.InvoiceCreateRequest {
	return model.InvoiceCreateRequest{
		CustomerID:     customerID,
		BillingAddress: "12 Market Road",
		Items: []model.InvoiceItemInput{
			{Name: "Widget", Quantity: 2, UnitPrice: dec("100")},
		},
		TaxRate:  decPtr("18"),
		Discount: decPtr("10"),
	}
}

func statusPtr(s model.InvoiceStatus) *model.InvoiceStatus {
	return &s
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}
