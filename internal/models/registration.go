package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrationStatus is the single authoritative registration enumeration.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
	RegistrationAttended RegistrationStatus = "attended"
)

func ValidRegistrationStatus(status RegistrationStatus) bool {
	switch status {
	case RegistrationPending, RegistrationApproved, RegistrationRejected, RegistrationAttended:
		return true
	}
	return false
}

type Feedback struct {
	Rating      int        `json:"rating,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

// Registration is a user's claim on a slot at an event. The compound unique
// index makes duplicate registrations impossible at the database level, even
// under concurrent attempts.
type Registration struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	EventID       uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_event_user" json:"eventId"`
	Event         *Event             `gorm:"foreignKey:EventID" json:"event,omitempty"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_event_user" json:"userId"`
	User          *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	FormResponses map[string]any     `gorm:"serializer:json" json:"formResponses"`
	Status        RegistrationStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Feedback      Feedback           `gorm:"embedded;embeddedPrefix:feedback_" json:"feedback"`
	SubmittedAt   time.Time          `json:"submittedAt"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func (registration *Registration) BeforeCreate(tx *gorm.DB) (err error) {
	if registration.ID == uuid.Nil {
		registration.ID = uuid.New()
	}
	if registration.SubmittedAt.IsZero() {
		registration.SubmittedAt = time.Now().UTC()
	}
	return
}
