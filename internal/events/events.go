// Package events describes the ledger events the API publishes after a committed mutation and
// the processor consumes to keep derived customer figures current.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/bookkeeper/internal/queue"
	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Type string

const (
	InvoicePaid        Type = "invoice.paid"
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
)

// metaType is the stream metadata key carrying the event type.
const metaType = "type"

type Event struct {
	ID            string          `json:"id"`
	Type          Type            `json:"type"`
	StoreID       int64           `json:"storeId"`
	CustomerIDs   []int64         `json:"customerIds,omitempty"`
	InvoiceID     *int64          `json:"invoiceId,omitempty"`
	TransactionID *int64          `json:"transactionId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// New stamps an event with a fresh id and the current time. Customer ids that are nil or
// repeated are skipped.
func New(t Type, storeID int64, customerIDs ...*int64) Event {
	e := Event{
		ID:         uuid.NewString(),
		Type:       t,
		StoreID:    storeID,
		OccurredAt: time.Now().UTC(),
	}
	seen := map[int64]bool{}
	for _, id := range customerIDs {
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		e.CustomerIDs = append(e.CustomerIDs, *id)
	}
	return e
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type QueuePublisher struct {
	queue *queue.Queue
}

func NewQueuePublisher(q *queue.Queue) *QueuePublisher {
	return &QueuePublisher{queue: q}
}

func (p *QueuePublisher) Publish(ctx context.Context, e Event) error {
	id, err := p.queue.PublishJSON(ctx, e, map[string]string{metaType: string(e.Type)})
	if err != nil {
		return errors.Wrapf(err, "publish %s", e.Type)
	}
	logger.Debug("[events] published", "type", e.Type, "event_id", e.ID, "stream_id", id)
	return nil
}

// NopPublisher drops every event. It is used when the queue is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// TypeOf reads the event type from queue metadata without decoding the payload.
func TypeOf(msg *queue.Message) Type {
	return Type(msg.Metadata[metaType])
}
