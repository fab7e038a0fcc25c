package repository

import (
	"context"
	"strings"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/tenant"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const customerTable = "customer"

type CustomerRepository struct {
	*pg.DB
}

func NewCustomerRepository(db *pg.DB) *CustomerRepository {
	return &CustomerRepository{
		db,
	}
}

func (r *CustomerRepository) scoped(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.Model(&CustomerEntity{}).Scopes(tenant.Scope(ctx, customerTable))
}

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	storeID, err := tenant.StoreID(ctx)
	if err != nil {
		return nil, err
	}
	entity := toCustomerEntity(c)
	entity.StoreID = storeID
	entity.TotalSpent = decimal.Zero
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, model.ConflictError("a customer with this phone already exists")
		}
		return nil, errors.Wrap(err, "create customer")
	}
	return toCustomerModel(entity), nil
}

func (r *CustomerRepository) Get(ctx context.Context, id int64) (*model.Customer, error) {
	var entity CustomerEntity
	err := r.scoped(ctx, r.Read(ctx)).Where("customer.id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("customer not found")
		}
		return nil, errors.Wrap(err, "get customer")
	}
	return toCustomerModel(&entity), nil
}

func (r *CustomerRepository) List(ctx context.Context, f model.CustomerFilter) ([]*model.Customer, int64, error) {
	q := r.scoped(ctx, r.Read(ctx))
	if s := strings.TrimSpace(f.Search); s != "" {
		prefix := strings.ToLower(s) + "%"
		q = q.Where("LOWER(customer.name) LIKE ? OR customer.phone LIKE ?", prefix, s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count customers")
	}

	limit, offset := model.NormalizePage(f.Limit, f.Offset)
	var entities []*CustomerEntity
	if err := q.Order("customer.name ASC, customer.id ASC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list customers")
	}
	return toCustomerModels(entities), total, nil
}

// Update writes the editable fields of c.
func (r *CustomerRepository) Update(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	res := r.scoped(ctx, r.Write(ctx)).Where("customer.id = ?", c.ID).Updates(map[string]any{
		"name":    c.Name,
		"phone":   c.Phone,
		"email":   c.Email,
		"address": c.Address,
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, model.ConflictError("a customer with this phone already exists")
		}
		return nil, errors.Wrap(res.Error, "update customer")
	}
	if res.RowsAffected == 0 {
		return nil, model.NotFoundError("customer not found")
	}
	return r.Get(ctx, c.ID)
}

// Delete removes the customer and detaches its invoices and transactions, which keep their
// history with no customer.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		db := r.Write(ctx)
		res := r.scoped(ctx, db).Where("customer.id = ?", id).Delete(&CustomerEntity{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete customer")
		}
		if res.RowsAffected == 0 {
			return model.NotFoundError("customer not found")
		}
		if err := db.Model(&TransactionEntity{}).Scopes(tenant.Scope(ctx, transactionTable)).
			Where("customer_id = ?", id).Update("customer_id", nil).Error; err != nil {
			return errors.Wrap(err, "detach customer transactions")
		}
		if err := db.Model(&InvoiceEntity{}).Scopes(tenant.Scope(ctx, invoiceTable)).
			Where("customer_id = ?", id).Update("customer_id", nil).Error; err != nil {
			return errors.Wrap(err, "detach customer invoices")
		}
		return nil
	})
}

// SetTotalSpent stores the recomputed spend of a customer.
func (r *CustomerRepository) SetTotalSpent(ctx context.Context, id int64, amount decimal.Decimal) error {
	res := r.scoped(ctx, r.Write(ctx)).Where("customer.id = ?", id).Update("total_spent", amount.Round(2))
	if res.Error != nil {
		return errors.Wrap(res.Error, "update customer total spent")
	}
	if res.RowsAffected == 0 {
		return model.NotFoundError("customer not found")
	}
	return nil
}
