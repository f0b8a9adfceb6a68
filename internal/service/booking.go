package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/karthikdoguparthi/KisaanGrow/internal/events"
	"github.com/karthikdoguparthi/KisaanGrow/internal/metrics"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage"
)

var timeBands = func() []string {
	bands := make([]string, 0, 12)
	for h := 0; h < 24; h += 2 {
		bands = append(bands, fmt.Sprintf("%d:00 - %d:00", h, h+2))
	}
	return bands
}()

// TimeBands lists the twelve bookable 2-hour bands of a day.
func TimeBands() []string {
	return slices.Clone(timeBands)
}

func ValidTimeBand(band string) bool {
	return slices.Contains(timeBands, band)
}

// ValidateQuantity accepts finite, non-negative tonnages.
func ValidateQuantity(quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

type BookingService struct {
	store     *storage.Store
	publisher events.Publisher
	log       *slog.Logger
}

func NewBookingService(store *storage.Store, publisher events.Publisher, log *slog.Logger) *BookingService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &BookingService{store: store, publisher: publisher, log: log}
}

func (s *BookingService) TimeBands() []string {
	return TimeBands()
}

// BookSlot records a pending booking for the farmer of sess. There is no
// capacity, future date or duplicate check.
func (s *BookingService) BookSlot(ctx context.Context, sess *models.Session, date, band string, quantity float64) (*models.Slot, error) {
	if sess == nil || sess.Role != models.RoleFarmer {
		return nil, ErrForbidden
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if !ValidTimeBand(band) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimeBand, band)
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	slot := models.Slot{
		ID:            uuid.NewString(),
		Date:          date,
		Time:          band,
		Quantity:      quantity,
		FarmerMobile:  sess.Key,
		FarmerName:    sess.Name,
		PaymentStatus: models.PaymentPending,
	}
	if err := s.store.AppendRow(ctx, models.SlotsTable, slot.Row()); err != nil {
		return nil, err
	}

	metrics.SlotsBooked.Inc()
	metrics.QuantityBooked.Add(quantity)
	s.log.Info("slot booked",
		slog.String("slot_id", slot.ID),
		slog.String("farmer", slot.FarmerMobile),
		slog.String("date", date),
		slog.String("band", band),
		slog.Float64("quantity", quantity),
	)
	publish(ctx, s.publisher, s.log, events.NewEvent(events.SlotBooked, slot))
	return &slot, nil
}

// ListForFarmer returns the farmer's bookings in insertion order, optionally
// restricted to one date.
func (s *BookingService) ListForFarmer(ctx context.Context, mobile, date string) ([]models.Slot, error) {
	rows, err := s.store.ReadTable(ctx, models.SlotsTable)
	if err != nil {
		return nil, err
	}

	out := []models.Slot{}
	for _, slot := range parseSlots(rows, s.log) {
		if slot.FarmerMobile != mobile {
			continue
		}
		if date != "" && slot.Date != date {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

// GetForFarmer returns one of the farmer's own bookings.
func (s *BookingService) GetForFarmer(ctx context.Context, mobile, slotID string) (*models.Slot, error) {
	slots, err := s.ListForFarmer(ctx, mobile, "")
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].ID == slotID {
			return &slots[i], nil
		}
	}
	return nil, ErrSlotNotFound
}

// parseSlots skips rows whose quantity cannot be read.
func parseSlots(rows []models.Row, log *slog.Logger) []models.Slot {
	slots := make([]models.Slot, 0, len(rows))
	for _, row := range rows {
		slot, err := models.SlotFromRow(row)
		if err != nil {
			log.Warn("skipping malformed slot row", slog.Any("error", err))
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

func publish(ctx context.Context, p events.Publisher, log *slog.Logger, e events.Event) {
	if err := p.Publish(context.WithoutCancel(ctx), e); err != nil {
		log.Warn("publish event", slog.String("type", e.Type), slog.Any("error", err))
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
