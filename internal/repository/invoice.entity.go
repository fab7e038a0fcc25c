package repository

import (
	"time"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/pkg/pg"
	"github.com/shopspring/decimal"
)

type InvoiceEntity struct {
	pg.Model
	StoreID        int64           `db:"store_id"        gorm:"column:store_id;not null;index:ix_invoice_store_status,priority:1"`
	CustomerID     *int64          `db:"customer_id"     gorm:"column:customer_id;index"`
	InvoiceNumber  string          `db:"invoice_number"  gorm:"column:invoice_number;not null;uniqueIndex:ux_invoice_number"`
	BillingAddress string          `db:"billing_address" gorm:"column:billing_address;not null"`
	Subtotal       decimal.Decimal `db:"subtotal"        gorm:"column:subtotal;type:numeric(14,2);not null"`
	TaxRate        decimal.Decimal `db:"tax_rate"        gorm:"column:tax_rate;type:numeric(5,2);not null;default:0"`
	TaxAmount      decimal.Decimal `db:"tax_amount"      gorm:"column:tax_amount;type:numeric(14,2);not null;default:0"`
	Discount       decimal.Decimal `db:"discount"        gorm:"column:discount;type:numeric(14,2);not null;default:0"`
	TotalAmount    decimal.Decimal `db:"total_amount"    gorm:"column:total_amount;type:numeric(14,2);not null"`
	Status         string          `db:"status"          gorm:"column:status;not null;default:draft;index:ix_invoice_store_status,priority:2"`
	Notes          *string         `db:"notes"           gorm:"column:notes"`
	DueDate        *time.Time      `db:"due_date"        gorm:"column:due_date"`
	Version        int64           `db:"version"         gorm:"column:version;not null;default:1"`

	Items []*InvoiceItemEntity `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (InvoiceEntity) TableName() string {
	return "invoice"
}

type InvoiceItemEntity struct {
	pg.Model
	InvoiceID   int64           `db:"invoice_id"  gorm:"column:invoice_id;not null;index"`
	Name        string          `db:"name"        gorm:"column:name;not null"`
	Description *string         `db:"description" gorm:"column:description"`
	Quantity    int             `db:"quantity"    gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `db:"unit_price"  gorm:"column:unit_price;type:numeric(14,2);not null"`
	TotalPrice  decimal.Decimal `db:"total_price" gorm:"column:total_price;type:numeric(14,2);not null"`
}

func (InvoiceItemEntity) TableName() string {
	return "invoice_item"
}

func toInvoiceEntity(m *model.Invoice) *InvoiceEntity {
	if m == nil {
		return nil
	}
	return &InvoiceEntity{
		Model:          pg.Model{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		StoreID:        m.StoreID,
		CustomerID:     m.CustomerID,
		InvoiceNumber:  m.InvoiceNumber,
		BillingAddress: m.BillingAddress,
		Subtotal:       m.Subtotal,
		TaxRate:        m.TaxRate,
		TaxAmount:      m.TaxAmount,
		Discount:       m.Discount,
		TotalAmount:    m.TotalAmount,
		Status:         string(m.Status),
		Notes:          m.Notes,
		DueDate:        m.DueDate,
		Version:        m.Version,
	}
}

func toInvoiceItemEntity(invoiceID int64, m *model.InvoiceItem) *InvoiceItemEntity {
	return &InvoiceItemEntity{
		Model:       pg.Model{ID: m.ID},
		InvoiceID:   invoiceID,
		Name:        m.Name,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalPrice:  m.TotalPrice,
	}
}

func toInvoiceModel(e *InvoiceEntity, customerName *string) *model.Invoice {
	if e == nil {
		return nil
	}
	m := &model.Invoice{
		ID:             e.ID,
		StoreID:        e.StoreID,
		CustomerID:     e.CustomerID,
		CustomerName:   customerName,
		InvoiceNumber:  e.InvoiceNumber,
		BillingAddress: e.BillingAddress,
		Subtotal:       e.Subtotal.Round(2),
		TaxRate:        e.TaxRate.Round(2),
		TaxAmount:      e.TaxAmount.Round(2),
		Discount:       e.Discount.Round(2),
		TotalAmount:    e.TotalAmount.Round(2),
		Status:         model.InvoiceStatus(e.Status),
		Notes:          e.Notes,
		DueDate:        e.DueDate,
		Version:        e.Version,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	if e.Items != nil {
		m.Items = make([]*model.InvoiceItem, len(e.Items))
		for i, it := range e.Items {
			m.Items[i] = toInvoiceItemModel(it)
		}
	}
	return m
}

func toInvoiceItemModel(e *InvoiceItemEntity) *model.InvoiceItem {
	return &model.InvoiceItem{
		ID:          e.ID,
		InvoiceID:   e.InvoiceID,
		Name:        e.Name,
		Description: e.Description,
		Quantity:    e.Quantity,
		UnitPrice:   e.UnitPrice.Round(2),
		TotalPrice:  e.TotalPrice.Round(2),
	}
}
