package engine

import (
	"sort"
	"time"

	"cafestock/models"
	"cafestock/utils"
)

// SnapshotStore holds dated stock observations grouped by item. Writing a
// snapshot for an existing (date, item) key replaces the earlier one.
type SnapshotStore struct {
	byItem map[string]map[string]models.InventorySnapshot // item_id -> date key -> snapshot
}

// NewSnapshotStore builds a store from an unordered snapshot list.
func NewSnapshotStore(snapshots []models.InventorySnapshot) *SnapshotStore {
	s := &SnapshotStore{byItem: make(map[string]map[string]models.InventorySnapshot)}
	for _, snap := range snapshots {
		s.Upsert(snap)
	}
	return s
}

// Upsert adds or replaces the snapshot for its (date, item) key.
func (s *SnapshotStore) Upsert(snap models.InventorySnapshot) {
	snap.Date = utils.Midnight(snap.Date)
	days, ok := s.byItem[snap.ItemID]
	if !ok {
		days = make(map[string]models.InventorySnapshot)
		s.byItem[snap.ItemID] = days
	}
	days[utils.DateKey(snap.Date)] = snap
}

// History returns the item's snapshots in chronological order.
func (s *SnapshotStore) History(itemID string) []models.InventorySnapshot {
	days := s.byItem[itemID]
	history := make([]models.InventorySnapshot, 0, len(days))
	for _, snap := range days {
		history = append(history, snap)
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Date.Before(history[j].Date)
	})
	return history
}

// Latest returns the most recent snapshot for an item, if any.
func (s *SnapshotStore) Latest(itemID string) (models.InventorySnapshot, bool) {
	history := s.History(itemID)
	if len(history) == 0 {
		return models.InventorySnapshot{}, false
	}
	return history[len(history)-1], true
}

// On returns the snapshot recorded for an item on a given day, if any.
func (s *SnapshotStore) On(itemID string, date time.Time) (models.InventorySnapshot, bool) {
	snap, ok := s.byItem[itemID][utils.DateKey(date)]
	return snap, ok
}

// ItemIDs returns all item IDs with at least one snapshot, sorted.
func (s *SnapshotStore) ItemIDs() []string {
	ids := make([]string, 0, len(s.byItem))
	for id := range s.byItem {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the total number of stored snapshots.
func (s *SnapshotStore) Len() int {
	n := 0
	for _, days := range s.byItem {
		n += len(days)
	}
	return n
}

// DeliveryLedger holds delivery quantities grouped by item and day.
// Multiple deliveries for the same item and date are summed.
type DeliveryLedger struct {
	byItem map[string]map[time.Time]float64 // item_id -> day -> total quantity
}

// NewDeliveryLedger builds a ledger from delivery records.
func NewDeliveryLedger(records []models.DeliveryRecord) *DeliveryLedger {
	l := &DeliveryLedger{byItem: make(map[string]map[time.Time]float64)}
	for _, rec := range records {
		l.Add(rec)
	}
	return l
}

// Add records one delivery.
func (l *DeliveryLedger) Add(rec models.DeliveryRecord) {
	l.add(rec.ItemID, rec.Date, rec.Quantity)
}

// AddOrders folds delivered order line items into the ledger, keyed by the
// order's delivery date and using the received (not ordered) quantity.
func (l *DeliveryLedger) AddOrders(orders []models.Order) {
	for _, order := range orders {
		if order.Status != models.OrderStatusDelivered || order.DeliveryDate == nil {
			continue
		}
		for _, line := range order.LineItems {
			l.add(line.ItemID, *order.DeliveryDate, line.QuantityReceived)
		}
	}
}

func (l *DeliveryLedger) add(itemID string, date time.Time, quantity float64) {
	day := utils.Midnight(date)
	days, ok := l.byItem[itemID]
	if !ok {
		days = make(map[time.Time]float64)
		l.byItem[itemID] = days
	}
	days[day] += quantity
}

// TotalOn returns the summed deliveries for an item on one day.
func (l *DeliveryLedger) TotalOn(itemID string, date time.Time) float64 {
	return l.byItem[itemID][utils.Midnight(date)]
}

// TotalBetween sums deliveries in the open-closed interval (after, upto].
// Deliveries on the earlier snapshot's day are already reflected in that
// snapshot's stock level, so the lower bound is exclusive.
func (l *DeliveryLedger) TotalBetween(itemID string, after, upto time.Time) float64 {
	afterDay := utils.Midnight(after)
	uptoDay := utils.Midnight(upto)
	var total float64
	for day, quantity := range l.byItem[itemID] {
		if day.After(afterDay) && !day.After(uptoDay) {
			total += quantity
		}
	}
	return total
}
