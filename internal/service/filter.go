package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/unclebandit/crm-backend/internal/model"
)

// Filters narrows a view of the list. Zero values, and "All" for status and
// source, mean no constraint. Value bounds are inclusive.
type Filters struct {
	Status   model.Status
	Source   model.Source
	MinValue *float64
	MaxValue *float64
}

// FilterCustomers returns the records of list matching every predicate,
// keeping their relative order. list is not modified.
func FilterCustomers(list []model.Customer, query string, f Filters) []model.Customer {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Customer, 0, len(list))
	for _, c := range list {
		if matchesQuery(c, q) && f.match(c) {
			out = append(out, c)
		}
	}
	return out
}

func matchesQuery(c model.Customer, q string) bool {
	if q == "" {
		return true
	}
	for _, field := range []string{c.Name, c.Email, c.Phone, c.Notes} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (f Filters) match(c model.Customer) bool {
	if f.Status != "" && f.Status != "All" && c.Status != f.Status {
		return false
	}
	if f.Source != "" && f.Source != "All" && c.Source != f.Source {
		return false
	}
	if f.MinValue != nil && c.Value < *f.MinValue {
		return false
	}
	if f.MaxValue != nil && c.Value > *f.MaxValue {
		return false
	}
	return true
}

// SortSpec orders a view by one column.
type SortSpec struct {
	Field string
	Desc  bool
}

var sortKeys = map[string]func(a, b model.Customer) int{
	"name":        func(a, b model.Customer) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	"email":       func(a, b model.Customer) int { return cmp.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email)) },
	"status":      func(a, b model.Customer) int { return cmp.Compare(a.Status, b.Status) },
	"source":      func(a, b model.Customer) int { return cmp.Compare(a.Source, b.Source) },
	"value":       func(a, b model.Customer) int { return cmp.Compare(a.Value, b.Value) },
	"lastContact": func(a, b model.Customer) int { return a.LastContact.Compare(b.LastContact) },
	"createdAt":   func(a, b model.Customer) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

// SortCustomers stable-sorts list in place. An empty field leaves it as is.
func SortCustomers(list []model.Customer, spec SortSpec) error {
	if spec.Field == "" {
		return nil
	}
	less, ok := sortKeys[spec.Field]
	if !ok {
		return fmt.Errorf("cannot sort by %q", spec.Field)
	}
	slices.SortStableFunc(list, func(a, b model.Customer) int {
		if spec.Desc {
			return less(b, a)
		}
		return less(a, b)
	})
	return nil
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// Paginate returns one page of list. page starts at 1; pageSize defaults to
// 20 and is capped at 100.
func Paginate(list []model.Customer, page, pageSize int) ([]model.Customer, Pagination) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	total := len(list)
	p := Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	start := (page - 1) * pageSize
	if start >= total {
		return []model.Customer{}, p
	}
	end := min(start+pageSize, total)
	return list[start:end], p
}
