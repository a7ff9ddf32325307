package helpers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlyplans/server/internal/models"
)

func TestBuildRegistrationRows(t *testing.T) {
	submitted := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	fields := []models.FormField{
		{ID: "f1", Type: models.FieldText, Label: "Full Name"},
		{ID: "f2", Type: models.FieldText, Label: "Dietary"},
	}
	registrations := []models.Registration{
		{
			User:        &models.User{Name: "Ada Lovelace", Email: "ada@example.com"},
			Status:      models.RegistrationApproved,
			SubmittedAt: submitted,
			FormResponses: map[string]any{
				"Full Name": "Ada Lovelace",
				"Dietary":   "vegetarian",
			},
		},
		{
			User:        &models.User{Name: "Alan Turing", Email: "alan@example.com"},
			Status:      models.RegistrationPending,
			SubmittedAt: submitted.Add(time.Hour),
			FormResponses: map[string]any{
				"Full Name": "Alan Turing",
				"Plus One":  true,
			},
		},
	}

	header, rows := BuildRegistrationRows(fields, registrations)

	assert.Equal(t, []string{"Name", "Email", "Status", "Submitted At", "Full Name", "Dietary", "Plus One"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Ada Lovelace", "ada@example.com", "approved", "2025-06-01 09:30:00", "Ada Lovelace", "vegetarian", ""}, rows[0])
	assert.Equal(t, []string{"Alan Turing", "alan@example.com", "pending", "2025-06-01 10:30:00", "Alan Turing", "", "true"}, rows[1])
}

func TestBuildRegistrationRowsMissingUser(t *testing.T) {
	header, rows := BuildRegistrationRows(nil, []models.Registration{
		{Status: models.RegistrationPending, SubmittedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
	})
	assert.Equal(t, []string{"Name", "Email", "Status", "Submitted At"}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"", "", "pending", "2025-06-01 09:00:00"}, rows[0])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"Name", "Note"}, [][]string{
		{"Ada", "likes, commas"},
		{"Alan", `quotes "inside"`},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Note", lines[0])
	assert.Equal(t, `Ada,"likes, commas"`, lines[1])
	assert.Equal(t, `Alan,"quotes ""inside"""`, lines[2])
}
