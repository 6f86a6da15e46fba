package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/crm-backend/internal/errors"
	"github.com/unclebandit/crm-backend/internal/model"
	"github.com/unclebandit/crm-backend/internal/storage"
)

func sampleCustomers() []model.Customer {
	ts := time.Date(2023, 5, 15, 10, 30, 0, 0, time.UTC)
	return []model.Customer{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Status: model.StatusActive, Source: model.SourceWebsite, Value: 5000, LastContact: ts, CreatedAt: ts},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com", Phone: "+1 (555) 987-6543", Status: model.StatusInactive, Source: model.SourceReferral, Value: 2500, Notes: "Follow up in Q3", LastContact: ts.Add(time.Hour), CreatedAt: ts},
	}
}

func TestCustomerRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(storage.NewMemoryBackend(), "crm-users")

	want := sampleCustomers()
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCustomerRepositoryPersistedLayout(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	repo := NewCustomerRepository(b, "crm-users")
	require.NoError(t, repo.Save(ctx, sampleCustomers()[:1]))

	raw, err := b.Get(ctx, "crm-users")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"John Doe","email":"john@example.com","phone":"","status":"Active","source":"Website","value":5000,"notes":"","lastContact":"2023-05-15T10:30:00Z","createdAt":"2023-05-15T10:30:00Z"}]`, string(raw))
}

func TestCustomerRepositoryLoadCases(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	repo := NewCustomerRepository(b, "crm-users")

	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	for _, raw := range []string{`{not json`, `null`, `{"id":1}`} {
		require.NoError(t, b.Set(ctx, "crm-users", []byte(raw)))
		_, err = repo.Load(ctx)
		var corrupt *appErrors.CorruptDataError
		assert.True(t, errors.As(err, &corrupt), "raw %q: %v", raw, err)
	}

	require.NoError(t, b.Set(ctx, "crm-users", []byte(`[]`)))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

type failingBackend struct{ storage.Backend }

func (failingBackend) Set(context.Context, string, []byte) error { return fmt.Errorf("disk full") }

func TestCustomerRepositorySaveError(t *testing.T) {
	repo := NewCustomerRepository(failingBackend{storage.NewMemoryBackend()}, "crm-users")
	err := repo.Save(context.Background(), sampleCustomers())
	assert.ErrorContains(t, err, "disk full")
}

func TestAuditRepositoryKeepsMostRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditRepository(storage.NewMemoryBackend(), "crm-audit")
	repo.Limit = 3

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Append(ctx, model.CustomerEvent{ID: fmt.Sprint(i), Type: model.EventCustomerAdded}))
	}

	recent, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "5", recent[0].ID)
	assert.Equal(t, "3", recent[2].ID)

	recent, err = repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "5", recent[0].ID)
}
