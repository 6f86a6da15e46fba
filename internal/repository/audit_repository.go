package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/unclebandit/crm-backend/internal/model"
	"github.com/unclebandit/crm-backend/internal/storage"
)

const DefaultAuditLimit = 500

// AuditRepository keeps the most recent change events under Key, oldest
// first. Entries beyond Limit are dropped from the front.
type AuditRepository struct {
	Backend storage.Backend
	Key     string
	Limit   int

	mu sync.Mutex
}

func NewAuditRepository(b storage.Backend, key string) *AuditRepository {
	return &AuditRepository{Backend: b, Key: key, Limit: DefaultAuditLimit}
}

func (r *AuditRepository) Append(ctx context.Context, ev model.CustomerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	events, err := r.load(ctx)
	if err != nil {
		return err
	}
	events = append(events, ev)
	if r.Limit > 0 && len(events) > r.Limit {
		events = events[len(events)-r.Limit:]
	}

	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode audit trail: %w", err)
	}
	return r.Backend.Set(ctx, r.Key, data)
}

// Recent returns up to n events, newest first.
func (r *AuditRepository) Recent(ctx context.Context, n int) ([]model.CustomerEvent, error) {
	r.mu.Lock()
	events, err := r.load(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if n <= 0 || n > len(events) {
		n = len(events)
	}
	out := make([]model.CustomerEvent, 0, n)
	for i := len(events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, events[i])
	}
	return out, nil
}

func (r *AuditRepository) load(ctx context.Context) ([]model.CustomerEvent, error) {
	data, err := r.Backend.Get(ctx, r.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var events []model.CustomerEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode audit trail: %w", err)
	}
	return events, nil
}
