// internal/service/customer_store.go
package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/crm-backend/internal/errors"
	"github.com/unclebandit/crm-backend/internal/model"
	"github.com/unclebandit/crm-backend/internal/queue"
	"github.com/unclebandit/crm-backend/internal/repository"
	"github.com/unclebandit/crm-backend/internal/spreadsheet"
	"github.com/unclebandit/crm-backend/internal/storage"
)

const requiredFieldsMessage = "Name and Email are required"

// CustomerStore owns the ordered customer list and mirrors it through Repo
// after every change. All methods are safe for concurrent use.
type CustomerStore struct {
	Repo    repository.CustomerPersister
	Queue   queue.Queue // optional
	Log     *zap.Logger
	Aliases HeaderAliases
	Now     func() time.Time

	// StrictLoad makes Load return corrupt-data and backend errors instead
	// of falling back to the sample records.
	StrictLoad bool

	mu        sync.RWMutex
	customers []model.Customer
	lastID    int64
	validate  *validator.Validate
}

func NewCustomerStore(repo repository.CustomerPersister, q queue.Queue, log *zap.Logger) *CustomerStore {
	return &CustomerStore{
		Repo:     repo,
		Queue:    q,
		Log:      log,
		Aliases:  DefaultHeaderAliases,
		Now:      time.Now,
		validate: validator.New(),
	}
}

// Load replaces the in-memory list with the persisted one. When nothing is
// stored the sample records are installed and saved. Corrupt or unreadable
// data also falls back to the samples unless StrictLoad is set; the stored
// value is left untouched in that case.
func (s *CustomerStore) Load(ctx context.Context) error {
	customers, err := s.Repo.Load(ctx)

	var corrupt *appErrors.CorruptDataError
	switch {
	case err == nil:
		s.Log.Info("loaded customers", zap.Int("count", len(customers)))
		s.install(customers)
		return nil

	case errors.Is(err, storage.ErrNotFound):
		s.Log.Info("no saved customers, installing sample records")
		defaults := DefaultCustomers()
		if err := s.Repo.Save(ctx, defaults); err != nil {
			s.Log.Warn("⚠️ could not persist sample records", zap.Error(err))
		}
		s.install(defaults)
		return nil

	case errors.As(err, &corrupt):
		if s.StrictLoad {
			return err
		}
		s.Log.Warn("⚠️ saved customers are corrupt, using sample records", zap.Error(err))

	default:
		if s.StrictLoad {
			return err
		}
		s.Log.Error("failed to read saved customers, using sample records", zap.Error(err))
	}

	s.install(DefaultCustomers())
	return nil
}

func (s *CustomerStore) install(customers []model.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customers = slices.Clone(customers)
	s.lastID = 0
	for _, c := range s.customers {
		s.lastID = max(s.lastID, c.ID)
	}
}

// List returns a copy of the whole collection in order.
func (s *CustomerStore) List() []model.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.customers)
}

func (s *CustomerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers)
}

func (s *CustomerStore) Get(id int64) (*model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, appErrors.NewCustomerNotFound(id)
	}
	c := s.customers[i]
	return &c, nil
}

// Add validates in, assigns a fresh ID and appends the record.
func (s *CustomerStore) Add(ctx context.Context, in model.CustomerInput) (*model.Customer, error) {
	if err := s.check(&in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := model.Customer{
		ID:          s.nextID(now),
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Status:      in.Status,
		Source:      in.Source,
		Value:       in.Value,
		Notes:       in.Notes,
		LastContact: now,
		CreatedAt:   now,
	}
	if c.Status == "" {
		c.Status = model.StatusActive
	}
	if c.Source == "" {
		c.Source = model.SourceWebsite
	}
	if in.LastContact != nil {
		c.LastContact = in.LastContact.UTC().Round(0)
	}

	next := append(slices.Clone(s.customers), c)
	if err := s.commit(ctx, next, model.EventCustomerAdded, []int64{c.ID}); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update overwrites the editable fields of the record with the given id.
// ID and CreatedAt never change; an empty status or source keeps the old one.
func (s *CustomerStore) Update(ctx context.Context, id int64, in model.CustomerInput) (*model.Customer, error) {
	if err := s.check(&in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, appErrors.NewCustomerNotFound(id)
	}

	c := s.customers[i]
	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Value = in.Value
	c.Notes = in.Notes
	if in.Status != "" {
		c.Status = in.Status
	}
	if in.Source != "" {
		c.Source = in.Source
	}
	if in.LastContact != nil {
		c.LastContact = in.LastContact.UTC().Round(0)
	}

	next := slices.Clone(s.customers)
	next[i] = c
	if err := s.commit(ctx, next, model.EventCustomerUpdated, []int64{id}); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the record with id. Unknown ids are not an error.
func (s *CustomerStore) Delete(ctx context.Context, id int64) (int, error) {
	return s.DeleteMany(ctx, []int64{id})
}

// DeleteMany removes every record whose id is listed and reports how many
// were removed.
func (s *CustomerStore) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	next := make([]model.Customer, 0, len(s.customers))
	var removed []int64
	for _, c := range s.customers {
		if drop[c.ID] {
			removed = append(removed, c.ID)
			continue
		}
		next = append(next, c)
	}

	if err := s.commit(ctx, next, model.EventCustomerDeleted, removed); err != nil {
		return 0, err
	}
	return len(removed), nil
}

// Filter returns the records matching query and f, in collection order.
func (s *CustomerStore) Filter(query string, f Filters) []model.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterCustomers(s.customers, query, f)
}

// ImportBatch maps rows to records through s.Aliases and appends them all
// in one save. Nothing is merged when rows is empty or the save fails.
func (s *CustomerStore) ImportBatch(ctx context.Context, rows []spreadsheet.Row) ([]model.Customer, error) {
	if len(rows) == 0 {
		return nil, appErrors.ErrEmptyImport
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	base := max(now.UnixMilli(), s.lastID+1)

	imported := make([]model.Customer, len(rows))
	ids := make([]int64, len(rows))
	for i, row := range rows {
		imported[i] = s.Aliases.Customer(row, base+int64(i), now)
		ids[i] = imported[i].ID
	}

	next := append(slices.Clone(s.customers), imported...)
	if err := s.commit(ctx, next, model.EventCustomerImported, ids); err != nil {
		return nil, err
	}
	s.lastID = base + int64(len(rows)) - 1
	return imported, nil
}

// ExportSelection snapshots the listed records, or all of them when ids is
// empty, in collection order.
func (s *CustomerStore) ExportSelection(ids []int64) spreadsheet.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := s.customers
	if len(ids) > 0 {
		want := make(map[int64]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
		selected = nil
		for _, c := range s.customers {
			if want[c.ID] {
				selected = append(selected, c)
			}
		}
	}
	return ExportTable(selected)
}

func (s *CustomerStore) check(in *model.CustomerInput) error {
	in.Normalize()
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var fields []string
	required := false
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		if fe.Tag() == "required" {
			required = true
		}
	}
	if required {
		return appErrors.NewValidationError(requiredFieldsMessage, fields...)
	}
	return appErrors.NewValidationError("Invalid customer details", fields...)
}

// now reads the clock in UTC without a monotonic reading, so stored records
// compare equal to what a reload decodes.
func (s *CustomerStore) now() time.Time {
	return s.Now().UTC().Round(0)
}

// nextID must be called with s.mu held.
func (s *CustomerStore) nextID(now time.Time) int64 {
	id := max(now.UnixMilli(), s.lastID+1)
	s.lastID = id
	return id
}

// indexOf must be called with s.mu held.
func (s *CustomerStore) indexOf(id int64) int {
	return slices.IndexFunc(s.customers, func(c model.Customer) bool { return c.ID == id })
}

// commit persists next and, only once that succeeded, makes it current and
// announces the change. Must be called with s.mu held.
func (s *CustomerStore) commit(ctx context.Context, next []model.Customer, eventType string, ids []int64) error {
	if err := s.Repo.Save(ctx, next); err != nil {
		s.Log.Error("failed to persist customers", zap.String("op", eventType), zap.Error(err))
		return err
	}
	s.customers = next
	s.publish(eventType, ids)
	return nil
}

func (s *CustomerStore) publish(eventType string, ids []int64) {
	if s.Queue == nil || len(ids) == 0 {
		return
	}
	ev := model.CustomerEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		CustomerIDs: ids,
		Count:       len(ids),
		OccurredAt:  s.now(),
	}
	if err := s.Queue.Publish(queue.TopicCustomerEvents, ev); err != nil {
		s.Log.Warn("⚠️ failed to publish customer event", zap.String("type", eventType), zap.Error(err))
	}
}
