package quota

import (
	"context"
	"fmt"
)

// Snapshotter lists the requests of one property created in a calendar year.
type Snapshotter interface {
	ListEntriesForProperty(ctx context.Context, propertyID uint, year int) ([]Entry, error)
}

// Ledger allocates requests against a live snapshot of the record store.
type Ledger struct {
	store Snapshotter
}

// NewLedger returns a Ledger reading snapshots from store.
func NewLedger(store Snapshotter) *Ledger {
	return &Ledger{store: store}
}

// Allocate loads the property/year snapshot of target and applies Allocate.
// Targets without ordering data are answered without touching the store.
func (l *Ledger) Allocate(ctx context.Context, target Entry) (Allocation, error) {
	if !target.ordered() {
		return Allocate(target, nil), nil
	}

	snapshot, err := l.store.ListEntriesForProperty(ctx, target.PropertyID, Year(target.CreatedAt))
	if err != nil {
		return Allocation{}, fmt.Errorf("load quota snapshot for property %d: %w", target.PropertyID, err)
	}
	return Allocate(target, snapshot), nil
}

// Usage summarizes a property's entitlement for one year.
type Usage struct {
	PropertyID    uint `json:"property_id"`
	Year          int  `json:"year"`
	FreeBagsUsed  int  `json:"free_bags_used"`
	FreeBagsLeft  int  `json:"free_bags_left"`
	TotalBags     int  `json:"total_bags"`
	RequestsCount int  `json:"requests_count"`
}

// Usage reports how much of the yearly entitlement the property has consumed.
func (l *Ledger) Usage(ctx context.Context, propertyID uint, year int) (Usage, error) {
	snapshot, err := l.store.ListEntriesForProperty(ctx, propertyID, year)
	if err != nil {
		return Usage{}, fmt.Errorf("load quota snapshot for property %d: %w", propertyID, err)
	}

	u := Usage{PropertyID: propertyID, Year: year, RequestsCount: len(snapshot)}
	for _, a := range AllocateBatch(snapshot) {
		u.FreeBagsUsed += a.FreeBags
		u.TotalBags += a.Total()
	}
	u.FreeBagsLeft = FreeBagsPerYear - u.FreeBagsUsed
	return u, nil
}
