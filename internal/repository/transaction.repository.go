package repository

import (
	"context"
	"time"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/tenant"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const transactionTable = "transaction"

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

func (r *TransactionRepository) scoped(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.Model(&TransactionEntity{}).Scopes(tenant.Scope(ctx, transactionTable))
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	storeID, err := tenant.StoreID(ctx)
	if err != nil {
		return nil, err
	}
	entity := toTransactionEntity(txn)
	entity.StoreID = storeID
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, errors.Wrap(err, "create transaction")
	}
	return toTransactionModel(entity), nil
}

func (r *TransactionRepository) Get(ctx context.Context, id int64) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.scoped(ctx, r.Read(ctx)).Where(`"transaction".id = ?`, id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("transaction not found")
		}
		return nil, errors.Wrap(err, "get transaction")
	}
	return toTransactionModel(&entity), nil
}

func (r *TransactionRepository) List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	q := r.scoped(ctx, r.Read(ctx))
	if f.Type != nil {
		q = q.Where("type = ?", string(*f.Type))
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("date < ?", f.To.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count transactions")
	}

	limit, offset := model.NormalizePage(f.Limit, f.Offset)
	var entities []*TransactionEntity
	if err := q.Order("date DESC, id DESC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list transactions")
	}
	return toTransactionModels(entities), total, nil
}

// ListBetween returns every transaction dated in [from, to), oldest first.
func (r *TransactionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*model.Transaction, error) {
	var entities []*TransactionEntity
	err := r.scoped(ctx, r.Read(ctx)).
		Where("date >= ? AND date < ?", from.UTC(), to.UTC()).
		Order("date ASC, id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, errors.Wrap(err, "list transactions between")
	}
	return toTransactionModels(entities), nil
}

// Update writes every mutable column of txn.
func (r *TransactionRepository) Update(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	e := toTransactionEntity(txn)
	res := r.scoped(ctx, r.Write(ctx)).Where(`"transaction".id = ?`, txn.ID).Updates(map[string]any{
		"customer_id": e.CustomerID,
		"amount":      e.Amount,
		"type":        e.Type,
		"method":      e.Method,
		"category":    e.Category,
		"description": e.Description,
		"date":        e.Date,
	})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update transaction")
	}
	if res.RowsAffected == 0 {
		return nil, model.NotFoundError("transaction not found")
	}
	return r.Get(ctx, txn.ID)
}

func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	res := r.scoped(ctx, r.Write(ctx)).Where(`"transaction".id = ?`, id).Delete(&TransactionEntity{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete transaction")
	}
	if res.RowsAffected == 0 {
		return model.NotFoundError("transaction not found")
	}
	return nil
}

// CreditTotalForCustomer sums the credit transactions of a customer.
func (r *TransactionRepository) CreditTotalForCustomer(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	err := r.scoped(ctx, r.Read(ctx)).
		Select("SUM(amount) AS total").
		Where("customer_id = ? AND type = ?", customerID, string(model.TransactionCredit)).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "sum customer credits")
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal.Round(2), nil
}
