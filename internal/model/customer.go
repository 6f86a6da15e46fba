// internal/model/customer.go
package model

import (
	"strings"
	"time"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusPending  Status = "Pending"
)

var Statuses = []Status{StatusActive, StatusInactive, StatusPending}

type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceSocial   Source = "Social"
	SourceImport   Source = "Import"
)

var Sources = []Source{SourceWebsite, SourceReferral, SourceSocial, SourceImport}

// Customer is a single entry of the customer list. The json tags are the
// persisted layout and must not change.
type Customer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Status      Status    `json:"status"`
	Source      Source    `json:"source"`
	Value       float64   `json:"value"`
	Notes       string    `json:"notes"`
	LastContact time.Time `json:"lastContact"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CustomerInput is the editable part of a customer, as submitted by the
// add and edit forms.
type CustomerInput struct {
	Name        string     `json:"name" validate:"required"`
	Email       string     `json:"email" validate:"required"`
	Phone       string     `json:"phone"`
	Status      Status     `json:"status" validate:"omitempty,oneof=Active Inactive Pending"`
	Source      Source     `json:"source" validate:"omitempty,oneof=Website Referral Social Import"`
	Value       float64    `json:"value" validate:"gte=0"`
	Notes       string     `json:"notes"`
	LastContact *time.Time `json:"lastContact,omitempty"`
}

// Normalize trims surrounding whitespace from the text fields.
func (in *CustomerInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Notes = strings.TrimSpace(in.Notes)
}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// ParseSource matches s case-insensitively against the known sources.
func ParseSource(s string) (Source, bool) {
	s = strings.TrimSpace(s)
	for _, src := range Sources {
		if strings.EqualFold(string(src), s) {
			return src, true
		}
	}
	return "", false
}
