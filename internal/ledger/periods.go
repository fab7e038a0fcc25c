package ledger

import (
	"time"

	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/shopspring/decimal"
)

type Period string

const (
	ThisMonth  Period = "this_month"
	LastMonth  Period = "last_month"
	Last90Days Period = "last_90_days"
	ThisYear   Period = "this_year"
)

var Periods = []Period{ThisMonth, LastMonth, Last90Days, ThisYear}

func ParsePeriod(s string) (Period, bool) {
	for _, p := range Periods {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// Range returns the half-open interval [from, to) of the period relative to now, in now's
// location.
func (p Period) Range(now time.Time) (from, to time.Time) {
	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	switch p {
	case ThisMonth:
		return monthStart, monthStart.AddDate(0, 1, 0)
	case LastMonth:
		return monthStart.AddDate(0, -1, 0), monthStart
	case Last90Days:
		return today.AddDate(0, 0, -90), today.AddDate(0, 0, 1)
	case ThisYear:
		yearStart := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return yearStart, yearStart.AddDate(1, 0, 0)
	}
	return today, today
}

// Filter returns the transactions dated inside the period, preserving order.
func (p Period) Filter(txs []*model.Transaction, now time.Time) []*model.Transaction {
	from, to := p.Range(now)
	out := make([]*model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Date.Before(from) && tx.Date.Before(to) {
			out = append(out, tx)
		}
	}
	return out
}

func CreditTotal(txs []*model.Transaction) decimal.Decimal {
	return sumByType(txs, model.TransactionCredit)
}

func DebitTotal(txs []*model.Transaction) decimal.Decimal {
	return sumByType(txs, model.TransactionDebit)
}

func sumByType(txs []*model.Transaction, typ model.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == typ {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// Report builds the period view of txs.
func Report(p Period, txs []*model.Transaction, now time.Time) *model.TransactionReport {
	from, to := p.Range(now)
	filtered := p.Filter(txs, now)
	credit := CreditTotal(filtered)
	debit := DebitTotal(filtered)
	return &model.TransactionReport{
		Period:       string(p),
		From:         from,
		To:           to,
		Transactions: filtered,
		CreditTotal:  credit,
		DebitTotal:   debit,
		Net:          credit.Sub(debit),
	}
}
