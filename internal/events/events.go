package events

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	OrderCreated Type = "order.created"
	OrderPending Type = "order.pending"
	OrderPaid    Type = "order.paid"
	OrderFailed  Type = "order.failed"
	OrderExpired Type = "order.expired"
)

// Event describes a change to one order in the ledger.
type Event struct {
	Type       Type            `json:"type"`
	OrderID    string          `json:"order_id"`
	Status     string          `json:"status"`
	Email      string          `json:"email,omitempty"`
	Total      decimal.Decimal `json:"total"`
	CourseIDs  []uint          `json:"course_ids,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Fanout publishes to every sink and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
