package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FieldType enumerates the registration-form field kinds an organizer can
// place on a form.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldEmail    FieldType = "email"
	FieldDate     FieldType = "date"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldFile     FieldType = "file"
	FieldPhone    FieldType = "phone"
	FieldURL      FieldType = "url"
)

func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldText, FieldNumber, FieldEmail, FieldDate, FieldTextarea,
		FieldSelect, FieldRadio, FieldCheckbox, FieldFile, FieldPhone, FieldURL:
		return true
	}
	return false
}

type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type FieldValidation struct {
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

type FormField struct {
	ID          string           `json:"id"`
	Type        FieldType        `json:"type"`
	Label       string           `json:"label"`
	Placeholder string           `json:"placeholder,omitempty"`
	Required    bool             `json:"required"`
	Options     []FieldOption    `json:"options,omitempty"`
	Validation  *FieldValidation `json:"validation,omitempty"`
}

// Form is the registration-form definition for an event. One form per event,
// enforced by the unique index.
type Form struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	EventID       uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"eventId"`
	Event         *Event      `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Title         string      `gorm:"not null" json:"title"`
	Fields        []FormField `gorm:"serializer:json" json:"fields"`
	CreatedByID   uuid.UUID   `gorm:"type:uuid;not null" json:"createdById"`
	CreatedBy     *User       `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	LastUpdatedBy *uuid.UUID  `gorm:"type:uuid" json:"lastUpdatedBy,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func (form *Form) BeforeCreate(tx *gorm.DB) (err error) {
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	return
}
