package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onlyplans/server/internal/models"
)

func TestValidateFormData(t *testing.T) {
	fields := []models.FormField{
		{ID: "f1", Type: models.FieldText, Label: "Full Name", Required: true},
		{ID: "f2", Type: models.FieldEmail, Label: "Email", Required: true},
		{ID: "f3", Type: models.FieldNumber, Label: "Age"},
		{ID: "f4", Type: models.FieldSelect, Label: "Shirt Size", Options: []models.FieldOption{
			{Label: "Small", Value: "S"},
			{Label: "Medium", Value: "M"},
		}},
		{ID: "f5", Type: models.FieldDate, Label: "Arrival"},
		{ID: "f6", Type: models.FieldPhone, Label: "Phone"},
		{ID: "f7", Type: models.FieldURL, Label: "Website"},
	}

	t.Run("valid submission passes", func(t *testing.T) {
		errs := ValidateFormData(fields, map[string]any{
			"Full Name":  "Ada Lovelace",
			"Email":      "ada@example.com",
			"Age":        float64(29),
			"Shirt Size": "M",
			"Arrival":    "2025-06-01",
			"Phone":      "+62 812-3456-789",
			"Website":    "https://example.com/ada",
		})
		assert.Empty(t, errs)
	})

	t.Run("missing required fields are collected together", func(t *testing.T) {
		errs := ValidateFormData(fields, map[string]any{})
		assert.Contains(t, errs, "Full Name is required")
		assert.Contains(t, errs, "Email is required")
		assert.Len(t, errs, 2)
	})

	t.Run("empty string counts as missing", func(t *testing.T) {
		errs := ValidateFormData(fields, map[string]any{
			"Full Name": "",
			"Email":     "ada@example.com",
		})
		assert.Equal(t, []string{"Full Name is required"}, errs)
	})

	t.Run("optional empty fields are skipped", func(t *testing.T) {
		errs := ValidateFormData(fields, map[string]any{
			"Full Name": "Ada",
			"Email":     "ada@example.com",
			"Age":       "",
		})
		assert.Empty(t, errs)
	})

	t.Run("bad email", func(t *testing.T) {
		errs := ValidateFormData(fields, map[string]any{
			"Full Name": "Ada",
			"Email":     "not-an-email",
		})
		assert.Equal(t, []string{"Email must be a valid email"}, errs)
	})

	t.Run("numeric string is accepted for number fields", func(t *testing.T) {
		errs := ValidateFormData(fields, map[string]any{
			"Full Name": "Ada",
			"Email":     "ada@example.com",
			"Age":       "29.5",
		})
		assert.Empty(t, errs)
	})

	t.Run("non-numeric value fails number fields", func(t *testing.T) {
		errs := ValidateFormData(fields, map[string]any{
			"Full Name": "Ada",
			"Email":     "ada@example.com",
			"Age":       "twenty",
		})
		assert.Equal(t, []string{"Age must be a number"}, errs)
	})

	t.Run("select value must match an option", func(t *testing.T) {
		errs := ValidateFormData(fields, map[string]any{
			"Full Name":  "Ada",
			"Email":      "ada@example.com",
			"Shirt Size": "XL",
		})
		assert.Equal(t, []string{"Shirt Size must be one of the provided options"}, errs)
	})

	t.Run("select without options accepts anything", func(t *testing.T) {
		open := []models.FormField{{ID: "f1", Type: models.FieldSelect, Label: "Topic"}}
		errs := ValidateFormData(open, map[string]any{"Topic": "whatever"})
		assert.Empty(t, errs)
	})

	t.Run("bad date, phone and url", func(t *testing.T) {
		errs := ValidateFormData(fields, map[string]any{
			"Full Name": "Ada",
			"Email":     "ada@example.com",
			"Arrival":   "next tuesday",
			"Phone":     "123",
			"Website":   "example",
		})
		assert.Contains(t, errs, "Arrival must be a valid date")
		assert.Contains(t, errs, "Phone must be a valid phone number")
		assert.Contains(t, errs, "Website must be a valid URL")
		assert.Len(t, errs, 3)
	})

	t.Run("boolean checkbox values stringify", func(t *testing.T) {
		checkbox := []models.FormField{{ID: "f1", Type: models.FieldCheckbox, Label: "Consent", Required: true}}
		assert.Empty(t, ValidateFormData(checkbox, map[string]any{"Consent": true}))
	})
}

func TestParseDate(t *testing.T) {
	inputs := []string{
		"2025-06-01T10:30:00Z",
		"2025-06-01T10:30:00",
		"2025-06-01 10:30:00",
		"2025-06-01",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			parsed, err := ParseDate(input)
			assert.NoError(t, err)
			assert.Equal(t, 2025, parsed.Year())
		})
	}

	_, err := ParseDate("01/06/2025")
	assert.Error(t, err)
}
