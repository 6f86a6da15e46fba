// internal/model/customer_event.go
package model

import "time"

const (
	EventCustomerAdded    = "customer.added"
	EventCustomerUpdated  = "customer.updated"
	EventCustomerDeleted  = "customer.deleted"
	EventCustomerImported = "customer.imported"
)

// CustomerEvent is published after every persisted mutation of the list.
type CustomerEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	CustomerIDs []int64   `json:"customer_ids"`
	Count       int       `json:"count"`
	OccurredAt  time.Time `json:"occurred_at"`
}
