// Package quota computes the free/paid split of bag requests.
//
// Every property is entitled to FreeBagsPerYear complimentary bags per
// calendar year (UTC). The entitlement is consumed by the property's requests
// in creation order, ties broken by increasing request id. Allocations are
// derived from the existing requests on every call; no running balance is
// stored anywhere.
package quota

import (
	"sort"
	"time"
)

// FreeBagsPerYear is the complimentary bag entitlement of one property per calendar year.
const FreeBagsPerYear = 1

// Entry is the subset of a bag request the ledger needs.
type Entry struct {
	ID         uint
	PropertyID uint
	CreatedAt  time.Time
	BagCount   int
}

// Allocation splits a request's bag count into free and paid bags.
type Allocation struct {
	FreeBags int `json:"free_bags"`
	PaidBags int `json:"paid_bags"`
}

// Total returns FreeBags + PaidBags.
func (a Allocation) Total() int {
	return a.FreeBags + a.PaidBags
}

// Year returns the calendar year an entry is accounted in.
func Year(t time.Time) int {
	return t.UTC().Year()
}

func (e Entry) ordered() bool {
	return e.PropertyID != 0 && !e.CreatedAt.IsZero()
}

// before reports whether e precedes o in (created_at, id) order.
func (e Entry) before(o Entry) bool {
	if !e.CreatedAt.Equal(o.CreatedAt) {
		return e.CreatedAt.Before(o.CreatedAt)
	}
	return e.ID < o.ID
}

func (e Entry) sameBucket(o Entry) bool {
	return e.PropertyID == o.PropertyID && Year(e.CreatedAt) == Year(o.CreatedAt)
}

// Allocate returns the allocation of target given a snapshot of requests.
// The snapshot may contain unrelated requests and the target itself; only
// same-property, same-year requests strictly earlier than target count.
// A target without a property or creation time gets no free bags.
func Allocate(target Entry, snapshot []Entry) Allocation {
	if target.BagCount <= 0 {
		return Allocation{}
	}
	if !target.ordered() {
		return Allocation{PaidBags: target.BagCount}
	}

	prior := 0
	for _, e := range snapshot {
		if e.ID == target.ID || !e.ordered() || !e.sameBucket(target) {
			continue
		}
		if e.before(target) && e.BagCount > 0 {
			prior += e.BagCount
		}
	}

	return split(target.BagCount, prior)
}

func split(bagCount, prior int) Allocation {
	free := FreeBagsPerYear - prior
	if free < 0 {
		free = 0
	}
	if free > bagCount {
		free = bagCount
	}
	return Allocation{FreeBags: free, PaidBags: bagCount - free}
}

type bucket struct {
	propertyID uint
	year       int
}

// AllocateBatch allocates every entry of a batch against the rest of the batch.
// The result is keyed by request id and equals calling Allocate for each entry
// with the whole batch as snapshot.
func AllocateBatch(entries []Entry) map[uint]Allocation {
	out := make(map[uint]Allocation, len(entries))
	buckets := make(map[bucket][]Entry)

	for _, e := range entries {
		if e.BagCount <= 0 {
			out[e.ID] = Allocation{}
			continue
		}
		if !e.ordered() {
			out[e.ID] = Allocation{PaidBags: e.BagCount}
			continue
		}
		k := bucket{propertyID: e.PropertyID, year: Year(e.CreatedAt)}
		buckets[k] = append(buckets[k], e)
	}

	for _, list := range buckets {
		sort.SliceStable(list, func(i, j int) bool { return list[i].before(list[j]) })
		prior := 0
		for _, e := range list {
			out[e.ID] = split(e.BagCount, prior)
			prior += e.BagCount
		}
	}

	return out
}
