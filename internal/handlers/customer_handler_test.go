package handlers

import (
	"context"
	"testing"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/valyala/fasthttp"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Create(ctx context.Context, req model.CustomerCreateRequest) (*model.Customer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerService) Get(ctx context.Context, id int64) (*model.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerService) List(ctx context.Context, f model.CustomerFilter) ([]*model.Customer, model.Pagination, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(model.Pagination), args.Error(2)
	}
	return args.Get(0).([]*model.Customer), args.Get(1).(model.Pagination), args.Error(2)
}

func (m *MockCustomerService) Update(ctx context.Context, id int64, req model.CustomerUpdateRequest) (*model.Customer, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCustomerHandler_CreateCustomer(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)
		svc.On("Create", inStore(), model.CustomerCreateRequest{Name: "Asha", Phone: "9876543210"}).
			Return(&model.Customer{ID: 1, StoreID: testStoreID, Name: "Asha", Phone: "9876543210"}, nil)

		ctx := authedContext("POST", "/api/customer", jsonBody(t, map[string]string{"name": "Asha", "phone": "9876543210"}))
		handler.CreateCustomer(ctx)

		assert.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
		var c model.Customer
		decodeData(t, ctx, &c)
		assert.Equal(t, "Asha", c.Name)
		svc.AssertExpectations(t)
	})

	t.Run("duplicate phone", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, model.ConflictError("a customer with this phone already exists"))

		ctx := authedContext("POST", "/api/customer", jsonBody(t, map[string]string{"name": "Asha", "phone": "9876543210"}))
		handler.CreateCustomer(ctx)

		assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())
		assert.False(t, decodeResponse(t, ctx).Success)
	})
}

func TestCustomerHandler_ListCustomers(t *testing.T) {
	svc := new(MockCustomerService)
	handler := NewCustomerHandler(svc)
	svc.On("List", inStore(), model.CustomerFilter{Search: "as", Limit: 5, Offset: 0}).
		Return([]*model.Customer{{ID: 1, Name: "Asha"}}, model.NewPagination(1, 5, 0), nil)

	ctx := authedContext("GET", "/api/customer?search=as&limit=5", nil)
	handler.ListCustomers(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var got customerListResponse
	decodeData(t, ctx, &got)
	assert.Len(t, got.Customers, 1)
	assert.Equal(t, int64(1), got.Pagination.Total)
	assert.False(t, got.Pagination.HasMore)
}

func TestCustomerHandler_GetUpdateDelete(t *testing.T) {
	t.Run("get foreign customer", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)
		svc.On("Get", inStore(), int64(9)).Return(nil, model.NotFoundError("customer not found"))

		ctx := withID(authedContext("GET", "/api/customer/9", nil), "9")
		handler.GetCustomer(ctx)

		assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	})

	t.Run("partial update", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)
		svc.On("Update", inStore(), int64(1), mock.MatchedBy(func(req model.CustomerUpdateRequest) bool {
			return req.Name == nil && req.Email != nil && *req.Email == "asha@example.com"
		})).Return(&model.Customer{ID: 1, Name: "Asha"}, nil)

		ctx := withID(authedContext("PUT", "/api/customer/1", []byte(`{"email":"asha@example.com"}`)), "1")
		handler.UpdateCustomer(ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)
		svc.On("Delete", inStore(), int64(1)).Return(nil)

		ctx := withID(authedContext("DELETE", "/api/customer/1", nil), "1")
		handler.DeleteCustomer(ctx)

		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Equal(t, "customer deleted", decodeResponse(t, ctx).Message)
	})

	t.Run("zero id", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)

		ctx := withID(authedContext("DELETE", "/api/customer/0", nil), "0")
		handler.DeleteCustomer(ctx)

		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Delete")
	})
}
