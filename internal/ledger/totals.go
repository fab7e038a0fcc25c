package ledger

import (
	"strconv"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Money columns and the tax rate are stored with two decimals, so inputs must already fit.
const centsMessage = "must have at most 2 decimal places"

func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// Totals is the computed money breakdown of an invoice. Lines holds each item's total in input
// order.
type Totals struct {
	Lines     []decimal.Decimal
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals applies subtotal = Σ(quantity × unitPrice), taxAmount = (subtotal − discount) ×
// taxRate / 100 rounded to cents, and total = subtotal − discount + taxAmount.
func ComputeTotals(items []model.InvoiceItemInput, taxRate, discount decimal.Decimal) (Totals, error) {
	verr := &model.ValidationError{}
	if len(items) == 0 {
		verr.Add("items", "must contain at least 1 entries")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		verr.Add("taxRate", "must be between 0 and 100")
	}
	if !isCents(taxRate) {
		verr.Add("taxRate", centsMessage)
	}
	if discount.IsNegative() {
		verr.Add("discount", "must be greater than or equal to 0")
	} else if !isCents(discount) {
		verr.Add("discount", centsMessage)
	}

	t := Totals{Lines: make([]decimal.Decimal, len(items)), Subtotal: decimal.Zero}
	for i, it := range items {
		if it.Quantity <= 0 {
			verr.Add(itemField(i, "quantity"), "must be greater than or equal to 1")
			continue
		}
		if it.UnitPrice.IsNegative() {
			verr.Add(itemField(i, "unitPrice"), "must be greater than or equal to 0")
			continue
		}
		if !isCents(it.UnitPrice) {
			verr.Add(itemField(i, "unitPrice"), centsMessage)
			continue
		}
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		t.Lines[i] = line
		t.Subtotal = t.Subtotal.Add(line)
	}
	if err := verr.OrNil(); err != nil {
		return Totals{}, err
	}

	base := t.Subtotal.Sub(discount)
	if base.IsNegative() {
		return Totals{}, model.NewValidationError("discount", "must not exceed the subtotal")
	}
	t.TaxAmount = base.Mul(taxRate).Div(hundred).Round(2)
	t.Total = base.Add(t.TaxAmount)
	return t, nil
}

func itemField(i int, name string) string {
	return "items[" + strconv.Itoa(i) + "]." + name
}
