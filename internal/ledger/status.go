package ledger

import (
	"fmt"

	"github.com/nimasrn/bookkeeper/internal/model"
)

var transitions = map[model.InvoiceStatus][]model.InvoiceStatus{
	model.InvoiceDraft: {model.InvoiceSent, model.InvoicePaid, model.InvoiceCancelled},
	model.InvoiceSent:  {model.InvoicePaid, model.InvoiceCancelled},
	// paid and cancelled are terminal
}

// Transition checks a status change. It reports changed=false with no error when to equals
// from, so re-marking a paid invoice as paid never settles it twice.
func Transition(from, to model.InvoiceStatus) (changed bool, err error) {
	if !to.Valid() {
		return false, model.NewValidationError("status", "must be one of [draft sent paid cancelled]")
	}
	if from == to {
		return false, nil
	}
	for _, next := range transitions[from] {
		if next == to {
			return true, nil
		}
	}
	return false, model.InvalidStateError(fmt.Sprintf("cannot change invoice status from %s to %s", from, to))
}

// CanDelete allows deleting drafts only.
func CanDelete(status model.InvoiceStatus) error {
	if status != model.InvoiceDraft {
		return model.InvalidStateError(fmt.Sprintf("only draft invoices can be deleted, invoice is %s", status))
	}
	return nil
}

// SettlementDescription is the description of the credit transaction created when an invoice
// is paid.
func SettlementDescription(invoiceNumber string) string {
	return "Payment for invoice " + invoiceNumber
}
