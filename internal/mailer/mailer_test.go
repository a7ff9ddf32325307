package mailer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/onlyplans/server/internal/models"
)

func TestSendWithoutSMTPIsDryRun(t *testing.T) {
	m := New(Config{From: "noreply@onlyplans.test"})
	assert.NoError(t, m.Send("user@example.com", "Subject", "body", ""))
}

func TestConfigAccessors(t *testing.T) {
	m := New(Config{AdminEmail: "admin@onlyplans.test", ClientURL: "https://onlyplans.test"})
	assert.Equal(t, "admin@onlyplans.test", m.AdminEmail())
	assert.Equal(t, "https://onlyplans.test", m.ClientURL())
}

func TestReminderAndAssignmentTemplates(t *testing.T) {
	m := New(Config{})
	event := &models.Event{
		Title:    "Go Meetup",
		Date:     time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC),
		Location: "Jakarta",
	}

	assert.NoError(t, m.SendEventReminder("user@example.com", event))
	assert.NoError(t, m.SendVolunteerAssignment(&models.User{Name: "Ada", Email: "ada@example.com"}, event))
}

func TestTextToHTML(t *testing.T) {
	assert.Equal(t, "<p>line one<br>line two</p>", textToHTML("line one\nline two"))
}
