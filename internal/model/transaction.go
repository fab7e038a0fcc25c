package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "credit" // money in
	TransactionDebit  TransactionType = "debit"  // money out
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodUPI          PaymentMethod = "upi"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheque       PaymentMethod = "cheque"
	MethodOther        PaymentMethod = "other"
)

// ExpenseCategory classifies debits only.
type ExpenseCategory string

const (
	CategoryInventory   ExpenseCategory = "inventory"
	CategoryRent        ExpenseCategory = "rent"
	CategorySalary      ExpenseCategory = "salary"
	CategoryUtilities   ExpenseCategory = "utilities"
	CategoryMarketing   ExpenseCategory = "marketing"
	CategoryTransport   ExpenseCategory = "transport"
	CategoryMaintenance ExpenseCategory = "maintenance"
	CategoryOther       ExpenseCategory = "other"
)

type Transaction struct {
	ID          int64            `json:"id"`
	StoreID     int64            `json:"storeId"`
	CustomerID  *int64           `json:"customerId"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        TransactionType  `json:"type"`
	Method      PaymentMethod    `json:"method"`
	Category    *ExpenseCategory `json:"category"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	InvoiceID   *int64           `json:"invoiceId"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type TransactionCreateRequest struct {
	CustomerID  *int64           `json:"customerId"  validate:"omitempty,gt=0"`
	Amount      decimal.Decimal  `json:"amount"      validate:"gt=0"`
	Type        TransactionType  `json:"type"        validate:"required,oneof=credit debit"`
	Method      PaymentMethod    `json:"method"      validate:"omitempty,oneof=cash card upi bank_transfer cheque other"`
	Category    *ExpenseCategory `json:"category"    validate:"omitempty,oneof=inventory rent salary utilities marketing transport maintenance other"`
	Description string           `json:"description" validate:"max=1000"`
	Date        *Date            `json:"date"`
}

func (r *TransactionCreateRequest) Validate() error {
	r.Description = strings.TrimSpace(r.Description)
	if r.Method == "" {
		r.Method = MethodCash
	}
	err := ValidateStruct(r)
	if r.Category != nil && r.Type == TransactionCredit {
		return appendField(err, "category", "is only allowed on debit transactions")
	}
	return err
}

// TransactionUpdateRequest carries the fields to change; nil fields keep their value.
type TransactionUpdateRequest struct {
	CustomerID  *int64           `json:"customerId"  validate:"omitempty,gt=0"`
	Amount      *decimal.Decimal `json:"amount"      validate:"omitempty,gt=0"`
	Type        *TransactionType `json:"type"        validate:"omitempty,oneof=credit debit"`
	Method      *PaymentMethod   `json:"method"      validate:"omitempty,oneof=cash card upi bank_transfer cheque other"`
	Category    *ExpenseCategory `json:"category"    validate:"omitempty,oneof=inventory rent salary utilities marketing transport maintenance other"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Date        *Date            `json:"date"`
}

func (r *TransactionUpdateRequest) Validate() error {
	return ValidateStruct(r)
}

// Apply merges the request into t and rechecks the credit/category rule on the result.
func (r *TransactionUpdateRequest) Apply(t *Transaction) error {
	if r.CustomerID != nil {
		t.CustomerID = r.CustomerID
	}
	if r.Amount != nil {
		t.Amount = *r.Amount
	}
	if r.Type != nil {
		t.Type = *r.Type
	}
	if r.Method != nil {
		t.Method = *r.Method
	}
	if r.Category != nil {
		t.Category = r.Category
	}
	if r.Description != nil {
		t.Description = strings.TrimSpace(*r.Description)
	}
	if r.Date != nil {
		t.Date = r.Date.Time
	}
	if t.Type == TransactionCredit && t.Category != nil {
		if r.Category == nil {
			// switching a debit to credit drops its category
			t.Category = nil
			return nil
		}
		return NewValidationError("category", "is only allowed on debit transactions")
	}
	return nil
}

// TransactionFilter controls List queries.
type TransactionFilter struct {
	Type       *TransactionType
	CustomerID *int64
	From       *time.Time // inclusive
	To         *time.Time // exclusive
	Limit      int
	Offset     int
}

type TransactionList struct {
	Transactions []*Transaction `json:"transactions"`
	Pagination   Pagination     `json:"pagination"`
}

// TransactionReport is the period view served by the report endpoint.
type TransactionReport struct {
	Period       string          `json:"period"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Transactions []*Transaction  `json:"transactions"`
	CreditTotal  decimal.Decimal `json:"creditTotal"`
	DebitTotal   decimal.Decimal `json:"debitTotal"`
	Net          decimal.Decimal `json:"net"`
}

func appendField(err error, field, message string) error {
	if err == nil {
		return NewValidationError(field, message)
	}
	if verr, ok := err.(*ValidationError); ok {
		verr.Add(field, message)
		return verr
	}
	return err
}
