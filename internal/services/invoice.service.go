package services

import (
	"context"
	"time"

	"github.com/nimasrn/bookkeeper/internal/events"
	"github.com/nimasrn/bookkeeper/internal/ledger"
	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/repository"
	"github.com/nimasrn/bookkeeper/internal/tenant"
	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/nimasrn/bookkeeper/pkg/prom"
	"github.com/pkg/errors"
)

const DefaultInvoiceNumberAttempts = 5

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *model.Invoice) (*model.Invoice, error)
	CreateItems(ctx context.Context, invoiceID int64, items []*model.InvoiceItem) ([]*model.InvoiceItem, error)
	Get(ctx context.Context, id int64, forUpdate bool) (*model.Invoice, error)
	List(ctx context.Context, f model.InvoiceFilter) ([]*model.Invoice, int64, error)
	UpdateVersioned(ctx context.Context, id, version int64, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) error
	TotalsByStatus(ctx context.Context) ([]model.StatusTotals, error)
}

// SettlementRepository records the credit transaction of a paid invoice.
type SettlementRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
}

type InvoiceService struct {
	db           Transactor
	invoices     InvoiceRepository
	customers    CustomerLookup
	transactions SettlementRepository
	publisher    events.Publisher
	cache        SummaryCache
	attempts     int
	now          func() time.Time
	suffix       func() int
}

func NewInvoiceService(db Transactor, invoices InvoiceRepository, customers CustomerLookup, transactions SettlementRepository, publisher events.Publisher, cache SummaryCache, numberAttempts int) *InvoiceService {
	if numberAttempts <= 0 {
		numberAttempts = DefaultInvoiceNumberAttempts
	}
	return &InvoiceService{
		db:           db,
		invoices:     invoices,
		customers:    customers,
		transactions: transactions,
		publisher:    publisher,
		cache:        cache,
		attempts:     numberAttempts,
		now:          func() time.Time { return time.Now().UTC() },
		suffix:       ledger.RandomSuffix,
	}
}

// Create validates the request, computes totals and stores the invoice with its items in one
// transaction. An unknown customer aborts with NotFound before anything is written.
func (s *InvoiceService) Create(ctx context.Context, req model.InvoiceCreateRequest) (*model.Invoice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	storeID, err := tenant.StoreID(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := ledger.ComputeTotals(req.Items, req.TaxRateOrZero(), req.DiscountOrZero())
	if err != nil {
		return nil, err
	}

	var created *model.Invoice
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		inv := &model.Invoice{
			CustomerID:     req.CustomerID,
			BillingAddress: req.BillingAddress,
			Subtotal:       totals.Subtotal,
			TaxRate:        req.TaxRateOrZero(),
			TaxAmount:      totals.TaxAmount,
			Discount:       req.DiscountOrZero(),
			TotalAmount:    totals.Total,
			Status:         model.InvoiceDraft,
			Notes:          req.Notes,
		}
		if req.DueDate != nil {
			inv.DueDate = req.DueDate.Ptr()
		}
		if req.CustomerID != nil {
			c, err := s.customers.Get(ctx, *req.CustomerID)
			if err != nil {
				return err
			}
			inv.CustomerName = &c.Name
		}

		inv, err := s.insertNumbered(ctx, storeID, inv)
		if err != nil {
			return err
		}

		items := make([]*model.InvoiceItem, len(req.Items))
		for i, it := range req.Items {
			items[i] = &model.InvoiceItem{
				Name:        it.Name,
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				TotalPrice:  totals.Lines[i],
			}
		}
		inv.Items, err = s.invoices.CreateItems(ctx, inv.ID, items)
		if err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	prom.InvoiceCreated()
	s.cache.Invalidate(ctx, storeID)
	logger.Info("[invoice] created", "store_id", storeID, "invoice_id", created.ID, "number", created.InvoiceNumber)
	return created, nil
}

// insertNumbered inserts inv under a freshly drawn number, drawing again when the number is
// taken.
func (s *InvoiceService) insertNumbered(ctx context.Context, storeID int64, inv *model.Invoice) (*model.Invoice, error) {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		inv.InvoiceNumber = ledger.InvoiceNumber(storeID, s.now(), s.suffix())
		created, err := s.invoices.Create(ctx, inv)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, repository.ErrDuplicateInvoiceNumber) {
			return nil, err
		}
		prom.InvoiceNumberCollision()
		logger.Warn("[invoice] number collision", "store_id", storeID, "number", inv.InvoiceNumber, "attempt", attempt)
	}
	return nil, model.ConflictError("could not allocate a unique invoice number, please retry")
}

func (s *InvoiceService) List(ctx context.Context, f model.InvoiceFilter) (*model.InvoiceList, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, model.NewValidationError("status", "must be one of [draft sent paid cancelled]")
	}
	f.Limit, f.Offset = model.NormalizePage(f.Limit, f.Offset)
	invoices, total, err := s.invoices.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []*model.Invoice{}
	}
	return &model.InvoiceList{
		Invoices:   invoices,
		Pagination: model.NewPagination(total, f.Limit, f.Offset),
	}, nil
}

func (s *InvoiceService) Get(ctx context.Context, id int64) (*model.Invoice, error) {
	return s.invoices.Get(ctx, id, false)
}

// Update changes status, notes and due date under an optimistic version check. Moving to paid
// records the settlement credit in the same transaction.
func (s *InvoiceService) Update(ctx context.Context, id int64, req model.InvoiceUpdateRequest) (*model.Invoice, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	storeID, err := tenant.StoreID(ctx)
	if err != nil {
		return nil, err
	}

	var (
		updated *model.Invoice
		changed bool
		settled bool
	)
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.invoices.Get(ctx, id, true)
		if err != nil {
			return err
		}
		if req.Version != nil && *req.Version != inv.Version {
			return model.ConflictError("invoice was modified by another request")
		}

		fields := map[string]any{}
		if req.Status != nil {
			moved, err := ledger.Transition(inv.Status, *req.Status)
			if err != nil {
				return err
			}
			if moved {
				fields["status"] = string(*req.Status)
				settled = *req.Status == model.InvoicePaid
			}
		}
		if req.Notes != nil {
			fields["notes"] = *req.Notes
		}
		if req.DueDate != nil {
			fields["due_date"] = req.DueDate.Time
		}

		if len(fields) > 0 {
			n, err := s.invoices.UpdateVersioned(ctx, id, inv.Version, fields)
			if err != nil {
				return err
			}
			if n == 0 {
				return model.ConflictError("invoice was modified by another request")
			}
			changed = true
		}

		if settled {
			_, err := s.transactions.Create(ctx, &model.Transaction{
				CustomerID:  inv.CustomerID,
				Amount:      inv.TotalAmount,
				Type:        model.TransactionCredit,
				Method:      model.MethodCash,
				Description: ledger.SettlementDescription(inv.InvoiceNumber),
				Date:        s.today(),
				InvoiceID:   &inv.ID,
			})
			if err != nil {
				return errors.Wrap(err, "record settlement")
			}
		}

		updated, err = s.invoices.Get(ctx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.cache.Invalidate(ctx, storeID)
	}
	if settled {
		prom.InvoicePaid()
		e := events.New(events.InvoicePaid, storeID, updated.CustomerID)
		e.InvoiceID = &updated.ID
		e.Amount = updated.TotalAmount
		if err := s.publisher.Publish(ctx, e); err != nil {
			logger.Error("[invoice] publish event failed", "invoice_id", updated.ID, "error", err)
		}
		logger.Info("[invoice] paid", "store_id", storeID, "invoice_id", updated.ID, "amount", updated.TotalAmount.String())
	}
	return updated, nil
}

// Delete removes a draft invoice and its items.
func (s *InvoiceService) Delete(ctx context.Context, id int64) error {
	storeID, err := tenant.StoreID(ctx)
	if err != nil {
		return err
	}
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.invoices.Get(ctx, id, true)
		if err != nil {
			return err
		}
		if err := ledger.CanDelete(inv.Status); err != nil {
			return err
		}
		return s.invoices.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, storeID)
	return nil
}

// Summary aggregates the store's invoices by status, served from the cache when possible.
func (s *InvoiceService) Summary(ctx context.Context) (*model.InvoiceSummary, error) {
	storeID, err := tenant.StoreID(ctx)
	if err != nil {
		return nil, err
	}
	cached, gen, ok := s.cache.Get(ctx, storeID)
	if ok {
		return cached, nil
	}
	rows, err := s.invoices.TotalsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	summary := ledger.Summarize(rows)
	s.cache.Set(ctx, storeID, gen, &summary)
	return &summary, nil
}

func (s *InvoiceService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
