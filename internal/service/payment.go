package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/karthikdoguparthi/KisaanGrow/internal/events"
	"github.com/karthikdoguparthi/KisaanGrow/internal/metrics"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/karthikdoguparthi/KisaanGrow/internal/storage"
)

const filterAll = "All"

type PaymentService struct {
	store     *storage.Store
	publisher events.Publisher
	log       *slog.Logger
	now       func() time.Time
}

func NewPaymentService(store *storage.Store, publisher events.Publisher, log *slog.Logger) *PaymentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &PaymentService{store: store, publisher: publisher, log: log, now: time.Now}
}

// ComputeKPI sums quantities and counts distinct farmer mobiles.
func ComputeKPI(slots []models.Slot) models.KPI {
	var kpi models.KPI
	farmers := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		kpi.TotalQuantity += s.Quantity
		farmers[s.FarmerMobile] = struct{}{}
	}
	kpi.DistinctFarmers = len(farmers)
	return kpi
}

func matches(want, got string) bool {
	return want == "" || want == filterAll || want == got
}

// ListAll scans every booking. KPIs and filter choices cover all bookings;
// the filter narrows only the returned slots.
func (s *PaymentService) ListAll(ctx context.Context, filter models.SlotFilter) (*models.Overview, error) {
	rows, err := s.store.ReadTable(ctx, models.SlotsTable)
	if err != nil {
		return nil, err
	}
	all := parseSlots(rows, s.log)

	ov := &models.Overview{
		Date:    s.now().Format(time.DateOnly),
		KPI:     ComputeKPI(all),
		Slots:   []models.Slot{},
		Farmers: distinct(all, func(sl models.Slot) string { return sl.FarmerName }),
		Bands:   distinct(all, func(sl models.Slot) string { return sl.Time }),
	}
	for _, sl := range all {
		if matches(filter.Farmer, sl.FarmerName) &&
			matches(filter.Band, sl.Time) &&
			matches(filter.Status, string(sl.PaymentStatus)) {
			ov.Slots = append(ov.Slots, sl)
		}
	}
	return ov, nil
}

func distinct(slots []models.Slot, field func(models.Slot) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, sl := range slots {
		v := field(sl)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

// UpdatePaymentStatus sets the payment status of one booking. Repeating the
// same update is harmless; concurrent updates are last-write-wins.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, slotID string, status models.PaymentStatus) (*models.Slot, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	err := s.store.UpdateByKey(ctx, models.SlotsTable, slotID, models.ColPaymentStatus, string(status))
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
	}
	if err != nil {
		return nil, err
	}

	metrics.PaymentsUpdated.WithLabelValues(string(status)).Inc()
	s.log.Info("payment status updated", slog.String("slot_id", slotID), slog.String("status", string(status)))

	slot, err := s.find(ctx, slotID)
	if err != nil {
		s.log.Warn("reload updated slot", slog.String("slot_id", slotID), slog.Any("error", err))
		slot = &models.Slot{ID: slotID, PaymentStatus: status}
	}
	publish(ctx, s.publisher, s.log, events.NewEvent(events.PaymentUpdated, *slot))
	return slot, nil
}

func (s *PaymentService) find(ctx context.Context, slotID string) (*models.Slot, error) {
	rows, err := s.store.ReadTableFresh(ctx, models.SlotsTable)
	if err != nil {
		return nil, err
	}
	for _, sl := range parseSlots(rows, s.log) {
		if sl.ID == slotID {
			return &sl, nil
		}
	}
	return nil, ErrSlotNotFound
}
