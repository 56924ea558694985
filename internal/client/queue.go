package client

import (
	"github.com/google/uuid"

	"github.com/jagatstore/jagat-backend/internal/model"
)

// pendingOrdersKey is the local-store key the queue has always lived
// under; the key is deleted outright when the queue drains empty.
const pendingOrdersKey = "pendingOrders"

// OrderState tracks where a queued order is in the replay cycle.
// Accepted orders are removed from the queue rather than marked.
type OrderState string

const (
	// OrderPending: queued, not yet offered to the server in this pass.
	OrderPending OrderState = "pending"
	// OrderSubmitting: a replay pass is currently offering the entry.
	OrderSubmitting OrderState = "submitting"
	// OrderRejected: the server answered non-2xx; the entry stays queued
	// and is offered again on the next pass.
	OrderRejected OrderState = "rejected"
)

// QueuedOrder wraps a pending order with local replay bookkeeping.
// LocalID identifies the entry across passes; the server assigns its own
// payment ID only on acceptance.
type QueuedOrder struct {
	LocalID   string             `json:"localId"`
	State     OrderState         `json:"state"`
	LastError string             `json:"lastError,omitempty"`
	Order     model.PendingOrder `json:"order"`
}

// Queue is the durable, ordered pending-order queue.  The whole list is
// serialized under one key; every mutation persists the full list before
// returning, which is what makes replay crash-safe.
type Queue struct {
	store *LocalStore
}

func NewQueue(store *LocalStore) *Queue {
	return &Queue{store: store}
}

// Enqueue appends an order to the back of the queue.
func (q *Queue) Enqueue(o model.PendingOrder) (QueuedOrder, error) {
	entries, err := q.Load()
	if err != nil {
		return QueuedOrder{}, err
	}
	entry := QueuedOrder{
		LocalID: uuid.NewString(),
		State:   OrderPending,
		Order:   o,
	}
	return entry, q.Replace(append(entries, entry))
}

// Load returns the queued orders front to back; an absent key is an empty
// queue.
func (q *Queue) Load() ([]QueuedOrder, error) {
	var entries []QueuedOrder
	if _, err := q.store.Get(pendingOrdersKey, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Replace persists the given list as the new queue.  An empty list deletes
// the key instead of storing an empty array.
func (q *Queue) Replace(entries []QueuedOrder) error {
	if len(entries) == 0 {
		return q.store.Remove(pendingOrdersKey)
	}
	return q.store.Set(pendingOrdersKey, entries)
}
