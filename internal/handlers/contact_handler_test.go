package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/models"
)

func TestShouldAcknowledge(t *testing.T) {
	optedOut := &models.User{Email: "quiet@example.com", Preferences: models.Preferences{EmailNotifications: false}}
	optedIn := &models.User{Email: "chatty@example.com", Preferences: models.Preferences{EmailNotifications: true}}

	tests := []struct {
		name  string
		find  userLookup
		email string
		want  bool
	}{
		{
			"known account opted out is suppressed",
			func(string) (*models.User, error) { return optedOut, nil },
			"quiet@example.com",
			false,
		},
		{
			"known account opted in is acknowledged",
			func(string) (*models.User, error) { return optedIn, nil },
			"chatty@example.com",
			true,
		},
		{
			"unknown address is acknowledged",
			func(string) (*models.User, error) { return nil, gorm.ErrRecordNotFound },
			"stranger@example.com",
			true,
		},
		{
			"lookup failure defaults to acknowledging",
			func(string) (*models.User, error) { return nil, gorm.ErrInvalidDB },
			"anyone@example.com",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldAcknowledge(tt.find, tt.email))
		})
	}
}

func TestShouldAcknowledgeNormalizesEmail(t *testing.T) {
	var asked string
	find := func(email string) (*models.User, error) {
		asked = email
		return nil, gorm.ErrRecordNotFound
	}

	shouldAcknowledge(find, "  Quiet@Example.COM ")
	assert.Equal(t, "quiet@example.com", asked)
}
