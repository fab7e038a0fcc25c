package ledger

import (
	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/shopspring/decimal"
)

// Summarize folds GROUP BY status rows into a summary. Statuses without rows are zero-filled
// and paidPercentage is 0 when there are no invoices.
func Summarize(rows []model.StatusTotals) model.InvoiceSummary {
	zero := model.StatusSummary{Amount: decimal.Zero}
	s := model.InvoiceSummary{
		Total:     zero,
		Draft:     zero,
		Sent:      zero,
		Paid:      zero,
		Cancelled: zero,
	}
	for _, r := range rows {
		var dst *model.StatusSummary
		switch r.Status {
		case model.InvoiceDraft:
			dst = &s.Draft
		case model.InvoiceSent:
			dst = &s.Sent
		case model.InvoicePaid:
			dst = &s.Paid
		case model.InvoiceCancelled:
			dst = &s.Cancelled
		default:
			continue
		}
		dst.Count += r.Count
		dst.Amount = dst.Amount.Add(r.Amount)
		s.Total.Count += r.Count
		s.Total.Amount = s.Total.Amount.Add(r.Amount)
	}
	s.PaidPercentage = PaidPercentage(s.Paid.Count, s.Total.Count)
	return s
}

// PaidPercentage is paid/total × 100 rounded to one decimal, 0 for an empty total.
func PaidPercentage(paid, total int64) float64 {
	if total <= 0 {
		return 0
	}
	pct, _ := decimal.NewFromInt(paid * 100).Div(decimal.NewFromInt(total)).Round(1).Float64()
	return pct
}
