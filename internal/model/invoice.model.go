package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// InvoiceStatuses lists every status in display order.
var InvoiceStatuses = []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceCancelled}

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceCancelled:
		return true
	}
	return false
}

type Invoice struct {
	ID             int64           `json:"id"`
	StoreID        int64           `json:"storeId"`
	CustomerID     *int64          `json:"customerId"`
	CustomerName   *string         `json:"customerName,omitempty"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	BillingAddress string          `json:"billingAddress"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Discount       decimal.Decimal `json:"discount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Status         InvoiceStatus   `json:"status"`
	Notes          *string         `json:"notes"`
	DueDate        *time.Time      `json:"dueDate"`
	Version        int64           `json:"version"`
	Items          []*InvoiceItem  `json:"items,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type InvoiceItem struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoiceId"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type InvoiceItemInput struct {
	Name        string          `json:"name"        validate:"required,max=255"`
	Description *string         `json:"description" validate:"omitempty,max=1000"`
	Quantity    int             `json:"quantity"    validate:"gte=1"`
	UnitPrice   decimal.Decimal `json:"unitPrice"   validate:"gte=0"`
}

type InvoiceCreateRequest struct {
	CustomerID     *int64             `json:"customerId"     validate:"omitempty,gt=0"`
	BillingAddress string             `json:"billingAddress" validate:"required,max=1000"`
	Items          []InvoiceItemInput `json:"items"          validate:"required,min=1,dive"`
	TaxRate        *decimal.Decimal   `json:"taxRate"        validate:"omitempty,gte=0,lte=100"`
	Discount       *decimal.Decimal   `json:"discount"       validate:"omitempty,gte=0"`
	Notes          *string            `json:"notes"          validate:"omitempty,max=2000"`
	DueDate        *Date              `json:"dueDate"`
}

func (r *InvoiceCreateRequest) Validate() error {
	r.BillingAddress = strings.TrimSpace(r.BillingAddress)
	for i := range r.Items {
		r.Items[i].Name = strings.TrimSpace(r.Items[i].Name)
	}
	return ValidateStruct(r)
}

// TaxRateOrZero and DiscountOrZero apply the documented defaults.
func (r *InvoiceCreateRequest) TaxRateOrZero() decimal.Decimal {
	if r.TaxRate == nil {
		return decimal.Zero
	}
	return *r.TaxRate
}

func (r *InvoiceCreateRequest) DiscountOrZero() decimal.Decimal {
	if r.Discount == nil {
		return decimal.Zero
	}
	return *r.Discount
}

// InvoiceUpdateRequest carries the fields to change; nil fields keep their value. Version, when
// present, must match the stored version or the update is rejected as a conflict.
type InvoiceUpdateRequest struct {
	Status  *InvoiceStatus `json:"status"  validate:"omitempty,oneof=draft sent paid cancelled"`
	Notes   *string        `json:"notes"   validate:"omitempty,max=2000"`
	DueDate *Date          `json:"dueDate"`
	Version *int64         `json:"version" validate:"omitempty,gte=1"`
}

func (r *InvoiceUpdateRequest) Validate() error {
	return ValidateStruct(r)
}

// InvoiceFilter controls List queries.
type InvoiceFilter struct {
	Status     *InvoiceStatus
	CustomerID *int64
	Limit      int
	Offset     int
}

type InvoiceList struct {
	Invoices   []*Invoice `json:"invoices"`
	Pagination Pagination `json:"pagination"`
}

// StatusTotals is one GROUP BY status row.
type StatusTotals struct {
	Status InvoiceStatus   `json:"status"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type StatusSummary struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type InvoiceSummary struct {
	Total          StatusSummary `json:"total"`
	Draft          StatusSummary `json:"draft"`
	Sent           StatusSummary `json:"sent"`
	Paid           StatusSummary `json:"paid"`
	Cancelled      StatusSummary `json:"cancelled"`
	PaidPercentage float64       `json:"paidPercentage"`
}
