package handlers

import (
	"context"

	"github.com/nimasrn/bookkeeper/internal/model"
	xhttp "github.com/nimasrn/bookkeeper/pkg/http"
)

type CustomerService interface {
	Create(ctx context.Context, req model.CustomerCreateRequest) (*model.Customer, error)
	Get(ctx context.Context, id int64) (*model.Customer, error)
	List(ctx context.Context, f model.CustomerFilter) ([]*model.Customer, model.Pagination, error)
	Update(ctx context.Context, id int64, req model.CustomerUpdateRequest) (*model.Customer, error)
	Delete(ctx context.Context, id int64) error
}

type CustomerHandler struct {
	responder
	svc CustomerService
}

func RegisterCustomerRoutes(e *xhttp.Group, h *CustomerHandler, guard xhttp.MiddlewareFunc) {
	e.POST("/customer", guard(h.CreateCustomer))
	e.GET("/customer", guard(h.ListCustomers))
	e.GET("/customer/{id}", guard(h.GetCustomer))
	e.PUT("/customer/{id}", guard(h.UpdateCustomer))
	e.DELETE("/customer/{id}", guard(h.DeleteCustomer))
}

func NewCustomerHandler(customerService CustomerService, opts ...Option) *CustomerHandler {
	return &CustomerHandler{
		responder: newResponder(opts),
		svc:       customerService,
	}
}

type customerListResponse struct {
	Customers  []*model.Customer `json:"customers"`
	Pagination model.Pagination  `json:"pagination"`
}

func (h *CustomerHandler) CreateCustomer(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	var req model.CustomerCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	customer, err := h.svc.Create(c, req)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusCreated, customer)
}

func (h *CustomerHandler) ListCustomers(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	verr := &model.ValidationError{}
	f := model.CustomerFilter{
		Search: query(ctx, "search"),
		Limit:  queryInt(ctx, "limit", verr),
		Offset: queryInt(ctx, "offset", verr),
	}
	if err := verr.OrNil(); err != nil {
		h.writeError(ctx, err)
		return
	}

	customers, page, err := h.svc.List(c, f)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, customerListResponse{Customers: customers, Pagination: page})
}

func (h *CustomerHandler) GetCustomer(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	customer, err := h.svc.Get(c, id)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, customer)
}

func (h *CustomerHandler) UpdateCustomer(ctx *xhttp.RequestCtx) {
	c, ok := storeContext(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req model.CustomerUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	customer, err := h.svc.Update(c, id, req)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, customer)
}

func (h *CustomerHandler) DeleteCustomer(ctx *xhttp.RequestCtx) {
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
	writeMessage(ctx, xhttp.StatusOK, "customer deleted")
}
