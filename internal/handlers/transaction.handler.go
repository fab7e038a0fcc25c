package handlers

import (
	"context"
	"time"

	"github.com/nimasrn/bookkeeper/internal/model"
	xhttp "github.com/nimasrn/bookkeeper/pkg/http"
)

type TransactionService interface {
	Create(ctx context.Context, req model.TransactionCreateRequest) (*model.Transaction, error)
	Get(ctx context.Context, id int64) (*model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter) (*model.TransactionList, error)
	Update(ctx context.Context, id int64, req model.TransactionUpdateRequest) (*model.Transaction, error)
	Delete(ctx context.Context, id int64) error
	Report(ctx context.Context, period string) (*model.TransactionReport, error)
}

type TransactionHandler struct {
	responder
	svc TransactionService
}

func RegisterTransactionRoutes(e *xhttp.Group, h *TransactionHandler, guard xhttp.MiddlewareFunc) {
	e.POST("/transaction", guard(h.CreateTransaction))
	e.GET("/transaction", guard(h.ListTransactions))
	e.GET("/transaction/report", guard(h.GetReport))
	e.GET("/transaction/{id}", guard(h.GetTransaction))
	e.PUT("/transaction/{id}", guard(h.UpdateTransaction))
	e.DELETE("/transaction/{id}", guard(h.DeleteTransaction))
}

func NewTransactionHandler(transactionService TransactionService, opts ...Option) *TransactionHandler {
	return &TransactionHandler{
		responder: newResponder(opts),
		svc:       transactionService,
	}
}

func (h *TransactionHandler) CreateTransaction(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	var req model.TransactionCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	txn, err := h.svc.Create(c, req)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusCreated, txn)
}

func (h *TransactionHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	verr := &model.ValidationError{}
	f := model.TransactionFilter{
		CustomerID: queryInt64(ctx, "customerId", verr),
		From:       queryDate(ctx, "from", false, verr),
		To:         queryDate(ctx, "to", true, verr),
		Limit:      queryInt(ctx, "limit", verr),
		Offset:     queryInt(ctx, "offset", verr),
	}
	if v := query(ctx, "type"); v != "" {
		t := model.TransactionType(v)
		if t != model.TransactionCredit && t != model.TransactionDebit {
			verr.Add("type", "must be one of [credit debit]")
		}
		f.Type = &t
	}
	if err := verr.OrNil(); err != nil {
		h.writeError(ctx, err)
		return
	}

	list, err := h.svc.List(c, f)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, list)
}

func (h *TransactionHandler) GetReport(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	period := query(ctx, "period")
	if period == "" {
		period = "this_month"
	}
	report, err := h.svc.Report(c, period)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, report)
}

func (h *TransactionHandler) GetTransaction(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	txn, err := h.svc.Get(c, id)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, txn)
}

func (h *TransactionHandler) UpdateTransaction(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req model.TransactionUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	txn, err := h.svc.Update(c, id, req)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, txn)
}

func (h *TransactionHandler) DeleteTransaction(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c, id); err != nil {
		h.writeError(ctx, err)
		return
	}
	writeMessage(ctx, xhttp.StatusOK, "transaction deleted")
}

// queryDate parses YYYY-MM-DD or RFC3339. A bare date used as an upper bound covers the whole
// day, since the filter's upper bound is exclusive.
func queryDate(ctx *xhttp.RequestCtx, key string, upper bool, verr *model.ValidationError) *time.Time {
	v := query(ctx, key)
	if v == "" {
		return nil
	}
	t, err := model.ParseDate(v)
	if err != nil {
		verr.Add(key, "must be YYYY-MM-DD or RFC3339")
		return nil
	}
	if upper && len(v) == len(model.DateLayout) {
		t = t.AddDate(0, 0, 1)
	}
	return &t
}
