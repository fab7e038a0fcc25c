package repository

import (
	"time"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/shopspring/decimal"
)

type TransactionEntity struct {
	pg.Model
	StoreID     int64           `db:"store_id"    gorm:"column:store_id;not null;index:ix_transaction_store_date,priority:1"`
	CustomerID  *int64          `db:"customer_id" gorm:"column:customer_id;index"`
	InvoiceID   *int64          `db:"invoice_id"  gorm:"column:invoice_id;index"`
	Amount      decimal.Decimal `db:"amount"      gorm:"column:amount;type:numeric(14,2);not null"`
	Type        string          `db:"type"        gorm:"column:type;not null"`
	Method      string          `db:"method"      gorm:"column:method;not null"`
	Category    *string         `db:"category"    gorm:"column:category"`
	Description string          `db:"description" gorm:"column:description"`
	Date        time.Time       `db:"date"        gorm:"column:date;not null;index:ix_transaction_store_date,priority:2"`
}

func (TransactionEntity) TableName() string {
	return "transaction"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	var category *string
	if m.Category != nil {
		c := string(*m.Category)
		category = &c
	}
	return &TransactionEntity{
		Model:       pg.Model{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		StoreID:     m.StoreID,
		CustomerID:  m.CustomerID,
		InvoiceID:   m.InvoiceID,
		Amount:      m.Amount,
		Type:        string(m.Type),
		Method:      string(m.Method),
		Category:    category,
		Description: m.Description,
		Date:        m.Date.UTC(),
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	var category *model.ExpenseCategory
	if e.Category != nil {
		c := model.ExpenseCategory(*e.Category)
		category = &c
	}
	return &model.Transaction{
		ID:          e.ID,
		StoreID:     e.StoreID,
		CustomerID:  e.CustomerID,
		InvoiceID:   e.InvoiceID,
		Amount:      e.Amount.Round(2),
		Type:        model.TransactionType(e.Type),
		Method:      model.PaymentMethod(e.Method),
		Category:    category,
		Description: e.Description,
		Date:        e.Date.UTC(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
