package repository

import (
	"context"
	"encoding/json"
	"fmt"

	appErrors "github.com/unclebandit/crm-backend/internal/errors"
	"github.com/unclebandit/crm-backend/internal/model"
	"github.com/unclebandit/crm-backend/internal/storage"
)

// CustomerPersister is the persistence port of the customer store.
type CustomerPersister interface {
	Load(ctx context.Context) ([]model.Customer, error)
	Save(ctx context.Context, customers []model.Customer) error
}

// CustomerRepository keeps the whole collection as one JSON array under Key.
type CustomerRepository struct {
	Backend storage.Backend
	Key     string
}

func NewCustomerRepository(b storage.Backend, key string) *CustomerRepository {
	return &CustomerRepository{Backend: b, Key: key}
}

// Load returns storage.ErrNotFound when nothing is stored and a
// *appErrors.CorruptDataError when the stored value does not decode.
func (r *CustomerRepository) Load(ctx context.Context) ([]model.Customer, error) {
	data, err := r.Backend.Get(ctx, r.Key)
	if err != nil {
		return nil, err
	}

	var customers []model.Customer
	if err := json.Unmarshal(data, &customers); err != nil {
		return nil, &appErrors.CorruptDataError{Key: r.Key, Err: err}
	}
	// "null" decodes without error but is not a collection
	if customers == nil {
		return nil, &appErrors.CorruptDataError{Key: r.Key, Err: fmt.Errorf("value is not an array")}
	}
	return customers, nil
}

func (r *CustomerRepository) Save(ctx context.Context, customers []model.Customer) error {
	if customers == nil {
		customers = []model.Customer{}
	}
	data, err := json.Marshal(customers)
	if err != nil {
		return fmt.Errorf("encode customers: %w", err)
	}
	if err := r.Backend.Set(ctx, r.Key, data); err != nil {
		return fmt.Errorf("save customers: %w", err)
	}
	return nil
}

var _ CustomerPersister = (*CustomerRepository)(nil)
