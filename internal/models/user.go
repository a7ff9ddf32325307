package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"
)

// Preferences drives event recommendations and email opt-in.
type Preferences struct {
	Categories         []string `json:"categories"`
	Tags               []string `json:"tags"`
	EmailNotifications bool     `json:"emailNotifications"`
}

type User struct {
	gorm.Model
	ID                  uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	Name                string      `gorm:"not null" json:"name"`
	Email               string      `gorm:"unique;not null" json:"email"`
	Password            string      `gorm:"not null" json:"-"`
	Role                string      `gorm:"not null;default:'user'" json:"role"`
	ProfilePicture      string      `json:"profilePicture,omitempty"`
	Bio                 string      `json:"bio,omitempty"`
	Preferences         Preferences `gorm:"serializer:json" json:"preferences"`
	ResetPasswordToken  string      `json:"-"`
	ResetPasswordExpire *time.Time  `json:"-"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = NormalizeEmail(user.Email)
	return
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
// Every query against the email column must pass through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}
