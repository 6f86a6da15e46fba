package service

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unclebandit/crm-backend/internal/model"
	"github.com/unclebandit/crm-backend/internal/spreadsheet"
)

// HeaderAliases lists, per customer field, the import headers that may carry
// it. Candidates are tried in order and the first non-empty cell wins.
type HeaderAliases struct {
	Name        []string
	Email       []string
	Phone       []string
	Status      []string
	Source      []string
	Value       []string
	Notes       []string
	LastContact []string
	CreatedAt   []string
}

var DefaultHeaderAliases = HeaderAliases{
	Name:        []string{"Name", "Full Name", "Customer Name"},
	Email:       []string{"Email", "Email Address", "E-mail"},
	Phone:       []string{"Phone", "Phone Number", "Mobile"},
	Status:      []string{"Status"},
	Source:      []string{"Source", "Lead Source"},
	Value:       []string{"Value", "Deal Size", "Amount"},
	Notes:       []string{"Notes", "Comments"},
	LastContact: []string{"Last Contact", "Last Contacted"},
	CreatedAt:   []string{"Created At", "Created"},
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
	"01-02-06 15:04",
	"1/2/2006 15:04",
	"1/2/2006",
}

// Customer builds a record from one import row. Missing or unreadable cells
// fall back to: status Active, source Import, value 0, timestamps now.
// Raw headers that normalize to the same key are visited in sorted order and
// the first non-empty cell among them is kept.
func (a HeaderAliases) Customer(row spreadsheet.Row, id int64, now time.Time) model.Customer {
	cells := make(map[string]string, len(row))
	for _, h := range slices.Sorted(maps.Keys(row)) {
		v := row[h]
		k := normalizeHeader(h)
		if _, dup := cells[k]; !dup || cells[k] == "" {
			cells[k] = v
		}
	}
	get := func(candidates []string) string {
		for _, h := range candidates {
			if v := strings.TrimSpace(cells[normalizeHeader(h)]); v != "" {
				return v
			}
		}
		return ""
	}

	c := model.Customer{
		ID:          id,
		Name:        get(a.Name),
		Email:       get(a.Email),
		Phone:       get(a.Phone),
		Status:      model.StatusActive,
		Source:      model.SourceImport,
		Value:       parseValue(get(a.Value)),
		Notes:       get(a.Notes),
		LastContact: parseTime(get(a.LastContact), now),
		CreatedAt:   parseTime(get(a.CreatedAt), now),
	}
	if st, ok := model.ParseStatus(get(a.Status)); ok {
		c.Status = st
	}
	if src, ok := model.ParseSource(get(a.Source)); ok {
		c.Source = src
	}
	return c
}

// normalizeHeader folds case and drops spaces, underscores and hyphens so
// "Full Name", "full_name" and "FULL-NAME" compare equal.
func normalizeHeader(h string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(h)))
}

// parseValue reads amounts such as "5000", "$5,000.50" or "€ 1 200".
// Anything unparseable or negative is 0.
func parseValue(s string) float64 {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', ' ', '\u00a0':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0
	}
	return d.Round(2).InexactFloat64()
}

func parseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return fallback
}
