package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ada@X.com", "ada@x.com"},
		{"  ada@x.com  ", "ada@x.com"},
		{"ADA@EXAMPLE.COM", "ada@example.com"},
		{"ada@x.com", "ada@x.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in))
	}
}

func TestUserBeforeCreateNormalizes(t *testing.T) {
	user := &User{Name: "Ada", Email: "Ada@X.com"}
	require.NoError(t, user.BeforeCreate(nil))
	assert.Equal(t, "ada@x.com", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleVolunteer))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("organizer"))
	assert.False(t, ValidRole(""))
}
