package helpers

import (
	"encoding/csv"
	"io"
	"sort"

	"github.com/onlyplans/server/internal/models"
)

// BuildRegistrationRows projects registrations into a flat table: the fixed
// registrant columns followed by one column per form field label (in form
// order), then any extra response keys in first-seen order. Registrations
// must have their User preloaded.
func BuildRegistrationRows(fields []models.FormField, registrations []models.Registration) (header []string, rows [][]string) {
	header = []string{"Name", "Email", "Status", "Submitted At"}

	columns := make([]string, 0, len(fields))
	seen := make(map[string]bool)
	for _, field := range fields {
		if !seen[field.Label] {
			columns = append(columns, field.Label)
			seen[field.Label] = true
		}
	}
	for _, reg := range registrations {
		extras := make([]string, 0)
		for key := range reg.FormResponses {
			if !seen[key] {
				extras = append(extras, key)
				seen[key] = true
			}
		}
		sort.Strings(extras)
		columns = append(columns, extras...)
	}
	header = append(header, columns...)

	rows = make([][]string, 0, len(registrations))
	for _, reg := range registrations {
		row := make([]string, 0, len(header))
		name, email := "", ""
		if reg.User != nil {
			name = reg.User.Name
			email = reg.User.Email
		}
		row = append(row, name, email, string(reg.Status), reg.SubmittedAt.Format("2006-01-02 15:04:05"))
		for _, col := range columns {
			row = append(row, stringifyValue(reg.FormResponses[col]))
		}
		rows = append(rows, row)
	}
	return header, rows
}

func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
