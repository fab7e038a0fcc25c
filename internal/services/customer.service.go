package services

import (
	"context"

	"github.com/nimasrn/bookkeeper/internal/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Get(ctx context.Context, id int64) (*model.Customer, error)
	List(ctx context.Context, f model.CustomerFilter) ([]*model.Customer, int64, error)
	Update(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Delete(ctx context.Context, id int64) error
}

type CustomerService struct {
	customers CustomerRepository
}

func NewCustomerService(customers CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

func (s *CustomerService) Create(ctx context.Context, req model.CustomerCreateRequest) (*model.Customer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.customers.Create(ctx, &model.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	})
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*model.Customer, error) {
	return s.customers.Get(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, f model.CustomerFilter) ([]*model.Customer, model.Pagination, error) {
	f.Limit, f.Offset = model.NormalizePage(f.Limit, f.Offset)
	customers, total, err := s.customers.List(ctx, f)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return customers, model.NewPagination(total, f.Limit, f.Offset), nil
}

func (s *CustomerService) Update(ctx context.Context, id int64, req model.CustomerUpdateRequest) (*model.Customer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	return s.customers.Update(ctx, c)
}

func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	return s.customers.Delete(ctx, id)
}
