package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nimasrn/bookkeeper/internal/events"
	"github.com/nimasrn/bookkeeper/internal/model"
	"github.com/nimasrn/bookkeeper/internal/queue"
	"github.com/nimasrn/bookkeeper/internal/tenant"
	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/shopspring/decimal"
)

type CustomerTotals interface {
	SetTotalSpent(ctx context.Context, id int64, amount decimal.Decimal) error
}

type CreditSums interface {
	CreditTotalForCustomer(ctx context.Context, customerID int64) (decimal.Decimal, error)
}

// LedgerEventProcessor keeps Customer.totalSpent equal to the sum of the customer's credit
// transactions. It recomputes the figure instead of applying deltas, so replaying an event is
// harmless.
type LedgerEventProcessor struct {
	customers   CustomerTotals
	credits     CreditSums
	idempotency *IdempotencyService
}

func NewLedgerEventProcessor(customers CustomerTotals, credits CreditSums, idempotency *IdempotencyService) *LedgerEventProcessor {
	return &LedgerEventProcessor{
		customers:   customers,
		credits:     credits,
		idempotency: idempotency,
	}
}

func (p *LedgerEventProcessor) GetType() string {
	return "ledger"
}

func (p *LedgerEventProcessor) Process(ctx context.Context, msg *queue.Message) error {
	var event events.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		// retrying cannot fix a payload we cannot read
		logger.Error("[ledger-processor] undecodable event dropped", "message_id", msg.ID, "error", err)
		return nil
	}
	if event.ID == "" {
		event.ID = msg.ID
	}

	pc, err := p.idempotency.AcquireProcessingLock(ctx, event.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyProcessed):
			logger.Debug("[ledger-processor] duplicate event skipped", "event_id", event.ID)
			return nil
		case errors.Is(err, ErrMaxRetriesExceeded):
			logger.Error("[ledger-processor] event abandoned", "event_id", event.ID, "type", event.Type)
			return nil
		default:
			return err
		}
	}
	defer func() {
		_ = p.idempotency.ReleaseLock(ctx, pc)
	}()

	if err := p.apply(ctx, event); err != nil {
		if markErr := p.idempotency.MarkFailure(ctx, pc, err); markErr != nil {
			logger.Error("[ledger-processor] mark failure failed", "event_id", event.ID, "error", markErr)
		}
		return err
	}
	if err := p.idempotency.MarkSuccess(ctx, pc); err != nil {
		logger.Error("[ledger-processor] mark success failed", "event_id", event.ID, "error", err)
	}
	return nil
}

func (p *LedgerEventProcessor) apply(ctx context.Context, event events.Event) error {
	if event.StoreID <= 0 {
		return fmt.Errorf("event %s has no store", event.ID)
	}
	ctx = tenant.WithStore(ctx, event.StoreID)

	for _, customerID := range event.CustomerIDs {
		total, err := p.credits.CreditTotalForCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		if err := p.customers.SetTotalSpent(ctx, customerID, total); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				// deleted since the event was published
				continue
			}
			return err
		}
		logger.Debug("[ledger-processor] total spent updated",
			"store_id", event.StoreID,
			"customer_id", customerID,
			"total", total.String(),
			"event", event.Type)
	}
	return nil
}
