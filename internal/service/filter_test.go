package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/crm-backend/internal/model"
	"github.com/unclebandit/crm-backend/internal/spreadsheet"
)

func ptr(f float64) *float64 { return &f }

func ids(list []model.Customer) []int64 {
	out := make([]int64, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func fixture() []model.Customer {
	return []model.Customer{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Phone: "+1 (555) 123-4567", Status: model.StatusActive, Source: model.SourceWebsite, Value: 5000, Notes: "Interested in PREMIUM plan"},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com", Phone: "+1 (555) 987-6543", Status: model.StatusInactive, Source: model.SourceReferral, Value: 2500, Notes: "Follow up in Q3"},
		{ID: 3, Name: "Bob Stone", Email: "bob@corp.io", Status: model.StatusActive, Source: model.SourceImport, Value: 1000},
		{ID: 4, Name: "Alice Premium", Email: "alice@corp.io", Status: model.StatusPending, Source: model.SourceSocial, Value: 0},
	}
}

func TestFilterCustomers(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		filters Filters
		want    []int64
	}{
		{"no constraints", "", Filters{}, []int64{1, 2, 3, 4}},
		{"All is no constraint", "", Filters{Status: "All", Source: "All"}, []int64{1, 2, 3, 4}},
		{"query is case-insensitive across name and notes", "premium", Filters{}, []int64{1, 4}},
		{"query matches email", "CORP.IO", Filters{}, []int64{3, 4}},
		{"query matches phone", "987", Filters{}, []int64{2}},
		{"query ignores surrounding whitespace", "  jane  ", Filters{}, []int64{2}},
		{"status", "", Filters{Status: model.StatusActive}, []int64{1, 3}},
		{"source", "", Filters{Source: model.SourceReferral}, []int64{2}},
		{"inclusive value range", "", Filters{MinValue: ptr(1000), MaxValue: ptr(2500)}, []int64{2, 3}},
		{"max only", "", Filters{MaxValue: ptr(0)}, []int64{4}},
		{"predicates are ANDed", "corp", Filters{Status: model.StatusActive, MinValue: ptr(500)}, []int64{3}},
		{"no match", "zzz", Filters{}, []int64{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(FilterCustomers(fixture(), tc.query, tc.filters)))
		})
	}
}

func TestFilterIsIdempotentAndOrderPreserving(t *testing.T) {
	f := Filters{MinValue: ptr(1000)}
	once := FilterCustomers(fixture(), "o", f)
	twice := FilterCustomers(once, "o", f)
	assert.Equal(t, once, twice)
	assert.IsIncreasing(t, ids(once))
}

func TestSortCustomers(t *testing.T) {
	list := fixture()
	require.NoError(t, SortCustomers(list, SortSpec{Field: "value"}))
	assert.Equal(t, []int64{4, 3, 2, 1}, ids(list))

	require.NoError(t, SortCustomers(list, SortSpec{Field: "name", Desc: true}))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(list))

	list = fixture()
	require.NoError(t, SortCustomers(list, SortSpec{Field: "status"}))
	assert.Equal(t, []int64{1, 3, 2, 4}, ids(list), "ties keep their order")

	assert.Error(t, SortCustomers(list, SortSpec{Field: "password"}))
	assert.NoError(t, SortCustomers(list, SortSpec{}))
}

func TestPaginate(t *testing.T) {
	list := fixture()

	page, p := Paginate(list, 2, 3)
	assert.Equal(t, []int64{4}, ids(page))
	assert.Equal(t, Pagination{Page: 2, PageSize: 3, TotalCount: 4, TotalPages: 2}, p)

	page, p = Paginate(list, 0, 0)
	assert.Len(t, page, 4)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)

	page, p = Paginate(list, 9, 500)
	assert.Empty(t, page)
	assert.Equal(t, 100, p.PageSize)
}

func TestHeaderAliasesCustomer(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := DefaultHeaderAliases.Customer(spreadsheet.Row{
		"full_name":      "Grace Hopper",
		"EMAIL ADDRESS":  "grace@navy.mil",
		"Phone Number":   "555-0100",
		"Lead Source":    "referral",
		"Amount":         "€ 7,500",
		"Comments":       "Admiral",
		"Last Contacted": "2023-06-15T14:30:00",
		"Created":        "not a date",
	}, 10, now)

	assert.Equal(t, model.Customer{
		ID:          10,
		Name:        "Grace Hopper",
		Email:       "grace@navy.mil",
		Phone:       "555-0100",
		Status:      model.StatusActive,
		Source:      model.SourceReferral,
		Value:       7500,
		Notes:       "Admiral",
		LastContact: time.Date(2023, 6, 15, 14, 30, 0, 0, time.UTC),
		CreatedAt:   now,
	}, c)
}

func TestHeaderAliasesFirstNonEmptyWins(t *testing.T) {
	now := time.Now()
	c := DefaultHeaderAliases.Customer(spreadsheet.Row{"Name": "", "Full Name": "Fallback", "Name ": "x"}, 1, now)
	assert.Equal(t, "x", c.Name, "headers differing only in spacing collapse to the non-empty cell")

	c = DefaultHeaderAliases.Customer(spreadsheet.Row{"Name": "Primary", "Full Name": "Secondary"}, 1, now)
	assert.Equal(t, "Primary", c.Name)
}

func TestHeaderAliasesCollidingHeadersAreDeterministic(t *testing.T) {
	row := spreadsheet.Row{"name": "lower", "Name": "Upper", "NAME": "Caps", "email": "e@example.com"}
	for range 50 {
		c := DefaultHeaderAliases.Customer(row, 1, time.Now())
		assert.Equal(t, "Caps", c.Name)
	}
}

func TestParseTimeReturnsUTC(t *testing.T) {
	got := parseTime("2023-06-15T14:30:00+02:00", time.Time{})
	assert.Equal(t, time.Date(2023, 6, 15, 12, 30, 0, 0, time.UTC), got)
}

func TestParseValue(t *testing.T) {
	for in, want := range map[string]float64{
		"":          0,
		"5000":      5000,
		"$5,000.50": 5000.5,
		"£12":       12,
		"-10":       0,
		"lots":      0,
		"3.14159":   3.14,
	} {
		assert.Equal(t, want, parseValue(in), in)
	}
}
