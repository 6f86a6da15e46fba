package service

import (
	"time"

	"github.com/unclebandit/crm-backend/internal/model"
)

// DefaultCustomers returns the sample records installed when nothing has
// been saved yet.
func DefaultCustomers() []model.Customer {
	return []model.Customer{
		{
			ID:          1,
			Name:        "John Doe",
			Email:       "john@example.com",
			Phone:       "+1 (555) 123-4567",
			Status:      model.StatusActive,
			Source:      model.SourceWebsite,
			Value:       5000,
			LastContact: time.Date(2023, 6, 15, 14, 30, 0, 0, time.UTC),
			Notes:       "Interested in premium plan",
			CreatedAt:   time.Date(2023, 5, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:          2,
			Name:        "Jane Smith",
			Email:       "jane@example.com",
			Phone:       "+1 (555) 987-6543",
			Status:      model.StatusInactive,
			Source:      model.SourceReferral,
			Value:       2500,
			LastContact: time.Date(2023, 5, 20, 9, 15, 0, 0, time.UTC),
			Notes:       "Follow up in Q3",
			CreatedAt:   time.Date(2023, 5, 16, 14, 45, 0, 0, time.UTC),
		},
	}
}
