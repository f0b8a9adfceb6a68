package events

import (
	"context"
	"errors"
	"time"

	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
)

const (
	SlotBooked     = "slot.booked"
	PaymentUpdated = "payment.updated"
)

type Event struct {
	Type string      `json:"type"`
	Slot models.Slot `json:"slot"`
	At   time.Time   `json:"at"`
}

func NewEvent(typ string, slot models.Slot) Event {
	return Event{Type: typ, Slot: slot, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
