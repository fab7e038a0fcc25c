package services

import (
	"context"
	"time"

	"github.com/nimasrn/bookkeeper/internal/events"
	"github.com/nimasrn/bookkeeper/internal/ledger"
	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/tenant"
	"github.com/nimasrn/bookkeeper/pkg/logger"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	Get(ctx context.Context, id int64) (*model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*model.Transaction, error)
	Update(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

// CustomerLookup resolves a customer inside the current store.
type CustomerLookup interface {
	Get(ctx context.Context, id int64) (*model.Customer, error)
}

type TransactionService struct {
	transactions TransactionRepository
	customers    CustomerLookup
	publisher    events.Publisher
	now          func() time.Time
}

func NewTransactionService(transactions TransactionRepository, customers CustomerLookup, publisher events.Publisher) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		customers:    customers,
		publisher:    publisher,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *TransactionService) Create(ctx context.Context, req model.TransactionCreateRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	txn := &model.Transaction{
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		Type:        req.Type,
		Method:      req.Method,
		Category:    req.Category,
		Description: req.Description,
		Date:        s.now(),
	}
	if req.Date != nil {
		txn.Date = req.Date.Time
	}
	created, err := s.transactions.Create(ctx, txn)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TransactionCreated, created, created.CustomerID)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (*model.Transaction, error) {
	return s.transactions.Get(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, f model.TransactionFilter) (*model.TransactionList, error) {
	f.Limit, f.Offset = model.NormalizePage(f.Limit, f.Offset)
	txs, total, err := s.transactions.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*model.Transaction{}
	}
	return &model.TransactionList{
		Transactions: txs,
		Pagination:   model.NewPagination(total, f.Limit, f.Offset),
	}, nil
}

func (s *TransactionService) Update(ctx context.Context, id int64, req model.TransactionUpdateRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	txn, err := s.transactions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkNotSettlement(txn); err != nil {
		return nil, err
	}
	previousCustomer := txn.CustomerID
	if err := req.Apply(txn); err != nil {
		return nil, err
	}
	if req.CustomerID != nil {
		if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
			return nil, err
		}
	}

	updated, err := s.transactions.Update(ctx, txn)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.TransactionUpdated, updated, previousCustomer, updated.CustomerID)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	txn, err := s.transactions.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := checkNotSettlement(txn); err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TransactionDeleted, txn, txn.CustomerID)
	return nil
}

// Report returns the transactions of period with their credit and debit totals.
func (s *TransactionService) Report(ctx context.Context, period string) (*model.TransactionReport, error) {
	p, ok := ledger.ParsePeriod(period)
	if !ok {
		return nil, model.NewValidationError("period", "must be one of [this_month last_month last_90_days this_year]")
	}
	now := s.now()
	from, to := p.Range(now)
	txs, err := s.transactions.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	report := ledger.Report(p, txs, now)
	if report.Transactions == nil {
		report.Transactions = []*model.Transaction{}
	}
	return report, nil
}

// checkNotSettlement keeps a paid invoice's credit equal to its total: the settlement row only
// changes through the invoice.
func checkNotSettlement(txn *model.Transaction) error {
	if txn.InvoiceID != nil {
		return model.InvalidStateError("settlement transactions are managed by their invoice")
	}
	return nil
}

func (s *TransactionService) checkCustomer(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.customers.Get(ctx, *id)
	return err
}

// publish is best effort: the mutation is already committed, so a failure is only logged.
func (s *TransactionService) publish(ctx context.Context, t events.Type, txn *model.Transaction, customers ...*int64) {
	storeID, err := tenant.StoreID(ctx)
	if err != nil {
		return
	}
	e := events.New(t, storeID, customers...)
	e.TransactionID = &txn.ID
	e.Amount = txn.Amount
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.Error("[transaction] publish event failed", "type", t, "transaction_id", txn.ID, "error", err)
	}
}
