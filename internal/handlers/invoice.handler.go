package handlers

import (
	"context"
	"errors"

	"github.com/nimasrn/bookkeeper/internal/model"
	xhttp "github.com/nimasrn/bookkeeper/pkg/http"
)

type InvoiceService interface {
	Create(ctx context.Context, req model.InvoiceCreateRequest) (*model.Invoice, error)
	List(ctx context.Context, f model.InvoiceFilter) (*model.InvoiceList, error)
	Get(ctx context.Context, id int64) (*model.Invoice, error)
	Update(ctx context.Context, id int64, req model.InvoiceUpdateRequest) (*model.Invoice, error)
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context) (*model.InvoiceSummary, error)
}

type InvoiceHandler struct {
	responder
	svc InvoiceService
}

func RegisterInvoiceRoutes(e *xhttp.Group, h *InvoiceHandler, guard xhttp.MiddlewareFunc) {
	e.POST("/invoice", guard(h.CreateInvoice))
	e.GET("/invoice", guard(h.ListInvoices))
	e.GET("/invoice/summary", guard(h.GetSummary))
	e.GET("/invoice/{id}", guard(h.GetInvoice))
	e.PUT("/invoice/{id}", guard(h.UpdateInvoice))
	e.DELETE("/invoice/{id}", guard(h.DeleteInvoice))
}

func NewInvoiceHandler(invoiceService InvoiceService, opts ...Option) *InvoiceHandler {
	return &InvoiceHandler{
		responder: newResponder(opts),
		svc:       invoiceService,
	}
}

func (h *InvoiceHandler) CreateInvoice(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	var req model.InvoiceCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	inv, err := h.svc.Create(c, req)
	if err != nil {
		// an unknown customer is a bad request on this route, not a missing resource
		if errors.Is(err, model.ErrNotFound) {
			writeJSON(ctx, xhttp.StatusBadRequest, envelope{
				Message: err.Error(),
				Errors:  []model.FieldError{{Field: "customerId", Message: err.Error()}},
			})
			return
		}
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusCreated, inv)
}

func (h *InvoiceHandler) ListInvoices(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	verr := &model.ValidationError{}
	f := model.InvoiceFilter{
		CustomerID: queryInt64(ctx, "customerId", verr),
		Limit:      queryInt(ctx, "limit", verr),
		Offset:     queryInt(ctx, "offset", verr),
	}
	if v := query(ctx, "status"); v != "" {
		status := model.InvoiceStatus(v)
		f.Status = &status
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

func (h *InvoiceHandler) GetSummary(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	summary, err := h.svc.Summary(c)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, summary)
}

func (h *InvoiceHandler) GetInvoice(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	inv, err := h.svc.Get(c, id)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, inv)
}

func (h *InvoiceHandler) UpdateInvoice(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req model.InvoiceUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	inv, err := h.svc.Update(c, id, req)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, inv)
}

func (h *InvoiceHandler) DeleteInvoice(ctx *xhttp.RequestCtx) {
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
	writeMessage(ctx, xhttp.StatusOK, "invoice deleted")
}
