// Package ledger holds the pure bookkeeping rules: invoice numbering, totals, the status
// machine, summary aggregation and period reporting. Nothing here touches storage.
package ledger

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// MaxSuffix bounds the random part of an invoice number; suffixes are drawn from [0, MaxSuffix].
const MaxSuffix = 9999

// InvoiceNumber formats INV-{storeId}-{yyyyMMdd}-{suffix:04d}. The date is taken in at's location.
func InvoiceNumber(storeID int64, at time.Time, suffix int) string {
	return fmt.Sprintf("INV-%d-%s-%04d", storeID, at.Format("20060102"), suffix)
}

// RandomSuffix draws uniformly from [0, MaxSuffix]. Uniqueness is enforced by the database.
func RandomSuffix() int {
	return rand.IntN(MaxSuffix + 1)
}
