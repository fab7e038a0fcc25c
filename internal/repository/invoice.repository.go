package repository

import (
	"context"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/tenant"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invoiceTable = "invoice"

// ErrDuplicateInvoiceNumber is returned by Create when the generated number is taken.
var ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")

type InvoiceRepository struct {
	*pg.DB
}

func NewInvoiceRepository(db *pg.DB) *InvoiceRepository {
	return &InvoiceRepository{
		db,
	}
}

func (r *InvoiceRepository) scoped(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.Model(&InvoiceEntity{}).Scopes(tenant.Scope(ctx, invoiceTable))
}

// Create inserts the invoice row without its items. The insert runs in its own savepoint so a
// duplicate number leaves the surrounding transaction usable for another attempt.
func (r *InvoiceRepository) Create(ctx context.Context, inv *model.Invoice) (*model.Invoice, error) {
	storeID, err := tenant.StoreID(ctx)
	if err != nil {
		return nil, err
	}
	entity := toInvoiceEntity(inv)
	entity.StoreID = storeID
	if entity.Version == 0 {
		entity.Version = 1
	}

	err = r.WithinTransaction(ctx, func(ctx context.Context) error {
		return r.Write(ctx).Omit(clause.Associations).Create(entity).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateInvoiceNumber
		}
		return nil, errors.Wrap(err, "create invoice")
	}
	return toInvoiceModel(entity, inv.CustomerName), nil
}

func (r *InvoiceRepository) CreateItems(ctx context.Context, invoiceID int64, items []*model.InvoiceItem) ([]*model.InvoiceItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	entities := make([]*InvoiceItemEntity, len(items))
	for i, it := range items {
		entities[i] = toInvoiceItemEntity(invoiceID, it)
	}
	if err := r.Write(ctx).Create(&entities).Error; err != nil {
		return nil, errors.Wrap(err, "create invoice items")
	}
	out := make([]*model.InvoiceItem, len(entities))
	for i, e := range entities {
		out[i] = toInvoiceItemModel(e)
	}
	return out, nil
}

// Get loads an invoice with its items and customer name. forUpdate locks the row until the
// surrounding transaction ends.
func (r *InvoiceRepository) Get(ctx context.Context, id int64, forUpdate bool) (*model.Invoice, error) {
	db := r.Read(ctx)
	if forUpdate {
		db = r.Write(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var entity InvoiceEntity
	err := r.scoped(ctx, db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("invoice_item.id ASC") }).
		Where("invoice.id = ?", id).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("invoice not found")
		}
		return nil, errors.Wrap(err, "get invoice")
	}
	invoices, err := r.withCustomerNames(ctx, []*InvoiceEntity{&entity})
	if err != nil {
		return nil, err
	}
	return invoices[0], nil
}

func (r *InvoiceRepository) List(ctx context.Context, f model.InvoiceFilter) ([]*model.Invoice, int64, error) {
	q := r.scoped(ctx, r.Read(ctx))
	if f.Status != nil {
		q = q.Where("invoice.status = ?", string(*f.Status))
	}
	if f.CustomerID != nil {
		q = q.Where("invoice.customer_id = ?", *f.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count invoices")
	}

	limit, offset := model.NormalizePage(f.Limit, f.Offset)
	var entities []*InvoiceEntity
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("invoice_item.id ASC") }).
		Order("invoice.created_at DESC, invoice.id DESC").
		Limit(limit).Offset(offset).
		Find(&entities).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list invoices")
	}
	invoices, err := r.withCustomerNames(ctx, entities)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// UpdateVersioned applies fields only when the stored version still equals version, bumping
// it by one. It returns the number of rows changed; zero means the invoice moved on.
func (r *InvoiceRepository) UpdateVersioned(ctx context.Context, id, version int64, fields map[string]any) (int64, error) {
	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values["version"] = gorm.Expr("version + 1")
	res := r.scoped(ctx, r.Write(ctx)).
		Where("invoice.id = ? AND invoice.version = ?", id, version).
		Updates(values)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "update invoice")
	}
	return res.RowsAffected, nil
}

// Delete removes the invoice and its items.
func (r *InvoiceRepository) Delete(ctx context.Context, id int64) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		db := r.Write(ctx)
		var n int64
		if err := r.scoped(ctx, db).Where("invoice.id = ?", id).Count(&n).Error; err != nil {
			return errors.Wrap(err, "find invoice")
		}
		if n == 0 {
			return model.NotFoundError("invoice not found")
		}
		if err := db.Where("invoice_id = ?", id).Delete(&InvoiceItemEntity{}).Error; err != nil {
			return errors.Wrap(err, "delete invoice items")
		}
		if err := r.scoped(ctx, db).Where("invoice.id = ?", id).Delete(&InvoiceEntity{}).Error; err != nil {
			return errors.Wrap(err, "delete invoice")
		}
		return nil
	})
}

// TotalsByStatus groups the store's invoices by status.
func (r *InvoiceRepository) TotalsByStatus(ctx context.Context) ([]model.StatusTotals, error) {
	var rows []struct {
		Status string
		Count  int64
		Amount decimal.NullDecimal
	}
	err := r.scoped(ctx, r.Read(ctx)).
		Select("invoice.status AS status, COUNT(*) AS count, SUM(invoice.total_amount) AS amount").
		Group("invoice.status").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "summarize invoices")
	}
	out := make([]model.StatusTotals, len(rows))
	for i, row := range rows {
		amount := decimal.Zero
		if row.Amount.Valid {
			amount = row.Amount.Decimal.Round(2)
		}
		out[i] = model.StatusTotals{
			Status: model.InvoiceStatus(row.Status),
			Count:  row.Count,
			Amount: amount,
		}
	}
	return out, nil
}

func (r *InvoiceRepository) withCustomerNames(ctx context.Context, entities []*InvoiceEntity) ([]*model.Invoice, error) {
	ids := make([]int64, 0, len(entities))
	for _, e := range entities {
		if e.CustomerID != nil {
			ids = append(ids, *e.CustomerID)
		}
	}
	names := map[int64]string{}
	if len(ids) > 0 {
		var customers []CustomerEntity
		err := r.Read(ctx).Model(&CustomerEntity{}).Scopes(tenant.Scope(ctx, customerTable)).
			Select("id", "name").
			Where("customer.id IN ?", ids).
			Find(&customers).Error
		if err != nil {
			return nil, errors.Wrap(err, "load invoice customers")
		}
		for _, c := range customers {
			names[c.ID] = c.Name
		}
	}

	out := make([]*model.Invoice, len(entities))
	for i, e := range entities {
		var name *string
		if e.CustomerID != nil {
			if n, ok := names[*e.CustomerID]; ok {
				name = &n
			}
		}
		out[i] = toInvoiceModel(e, name)
	}
	return out, nil
}
