package fixtures

import (
	"fmt"
	"sync/atomic"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/shopspring/decimal"
)

const TestPassword = "secret123"

var phones atomic.Int64

// NextPhone returns a phone number unique within the test binary.
func NextPhone() string {
	return fmt.Sprintf("98%08d", phones.Add(1))
}

func NewRegisterRequest(name string) model.RegisterRequest {
	return model.RegisterRequest{
		Name:     name,
		Phone:    NextPhone(),
		Password: TestPassword,
	}
}

func NewCustomerCreateRequest(name string) model.CustomerCreateRequest {
	return model.CustomerCreateRequest{
		Name:  name,
		Phone: NextPhone(),
	}
}

// NewInvoiceCreateRequest builds the reference invoice: 2 × 100.00 and 12 × 0.35 with a 10.00
// discount at 18% tax, which totals 229.16.
func NewInvoiceCreateRequest(customerID *int64) model.InvoiceCreateRequest {
	taxRate := decimal.NewFromInt(18)
	discount := decimal.NewFromInt(10)
	return model.InvoiceCreateRequest{
		CustomerID:     customerID,
		BillingAddress: "12 Market Road",
		Items: []model.InvoiceItemInput{
			{Name: "Widget", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
			{Name: "Bolt", Quantity: 12, UnitPrice: decimal.RequireFromString("0.35")},
		},
		TaxRate:  &taxRate,
		Discount: &discount,
	}
}

const (
	InvoiceSubtotal = "204.20"
	InvoiceTax      = "34.96"
	InvoiceTotal    = "229.16"
)

func NewTransactionCreateRequest(customerID *int64, amount string, typ model.TransactionType) model.TransactionCreateRequest {
	return model.TransactionCreateRequest{
		CustomerID:  customerID,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Method:      model.MethodCash,
		Description: "counter sale",
	}
}

func StatusUpdate(status model.InvoiceStatus) model.InvoiceUpdateRequest {
	return model.InvoiceUpdateRequest{Status: &status}
}

var (
	InvalidPhones = []string{
		"",
		"123",
		"123456789012345678901",
	}
)
