package service

import (
	"github.com/unclebandit/crm-backend/internal/model"
	"github.com/unclebandit/crm-backend/internal/spreadsheet"
)

// ExportColumns is the fixed column order of every export.
var ExportColumns = []string{
	"Name", "Email", "Phone", "Status", "Source", "Value", "Last Contact", "Notes", "Created At",
}

func ExportTable(customers []model.Customer) spreadsheet.Table {
	t := spreadsheet.Table{
		Header: ExportColumns,
		Rows:   make([][]any, 0, len(customers)),
	}
	for _, c := range customers {
		t.Rows = append(t.Rows, []any{
			c.Name,
			c.Email,
			c.Phone,
			string(c.Status),
			string(c.Source),
			c.Value,
			c.LastContact,
			c.Notes,
			c.CreatedAt,
		})
	}
	return t
}
