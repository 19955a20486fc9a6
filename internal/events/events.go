// Package events publishes expense domain events to a message broker.
package events

import (
	"context"
	"encoding/json"
	"time"

	"tally/internal/models"
)

// Event types.
const (
	TypeExpenseCreated = "expense.created"
	TypeExpenseDeleted = "expense.deleted"
)

// Event is the message body published for an expense change.
type Event struct {
	Type       string  `json:"type"`
	ExpenseID  string  `json:"expense_id"`
	UserID     string  `json:"user_id"`
	Amount     float64 `json:"amount,omitempty"`
	Currency   string  `json:"currency,omitempty"`
	OccurredAt int64   `json:"occurred_at"`
}

// ToJSON encodes the event.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseCreated builds the event for a newly created expense.
func ExpenseCreated(expense *models.Expense) Event {
	return Event{
		Type:       TypeExpenseCreated,
		ExpenseID:  expense.ID,
		UserID:     expense.UserID,
		Amount:     expense.Amount,
		Currency:   expense.Currency,
		OccurredAt: time.Now().UnixMilli(),
	}
}

// ExpenseDeleted builds the event for a deleted expense.
func ExpenseDeleted(userID, expenseID string) Event {
	return Event{
		Type:       TypeExpenseDeleted,
		ExpenseID:  expenseID,
		UserID:     userID,
		OccurredAt: time.Now().UnixMilli(),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// ObserverFunc is told the outcome of every publish attempt.
type ObserverFunc func(eventType string, err error)

type observedPublisher struct {
	Publisher
	observe ObserverFunc
}

// WithObserver wraps p so that observe sees each publish result.
func WithObserver(p Publisher, observe ObserverFunc) Publisher {
	return &observedPublisher{Publisher: p, observe: observe}
}

func (o *observedPublisher) Publish(ctx context.Context, event Event) error {
	err := o.Publisher.Publish(ctx, event)
	o.observe(event.Type, err)
	return err
}
