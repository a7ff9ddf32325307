package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotPublished      = errors.New("event is not open for registration")
	ErrEventPassed       = errors.New("cannot register for past events")
	ErrEventFull         = errors.New("event is already full")
	ErrAlreadyRegistered = errors.New("you are already registered for this event")
)

type ScheduleItem struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ScheduleDay struct {
	Date  string         `json:"date"`
	Items []ScheduleItem `json:"items"`
}

type Speaker struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Bio   string `json:"bio"`
	Image string `json:"image,omitempty"`
}

// Statistics is denormalized onto the event row and recomputed whenever
// registrations or reviews change.
type Statistics struct {
	RegisteredCount int     `json:"registeredCount"`
	AttendedCount   int     `json:"attendedCount"`
	AverageRating   float64 `json:"averageRating"`
}

type Event struct {
	gorm.Model
	ID           uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	Title        string        `gorm:"not null" json:"title"`
	Description  string        `gorm:"not null" json:"description"`
	Date         time.Time     `gorm:"not null;index" json:"date"`
	EndDate      *time.Time    `json:"endDate,omitempty"`
	Location     string        `gorm:"not null" json:"location"`
	Address      string        `json:"address,omitempty"`
	Category     string        `gorm:"not null;index" json:"category"`
	Image        string        `json:"image,omitempty"`
	MaxAttendees *int          `json:"maxAttendees,omitempty"`
	Price        float64       `gorm:"not null;default:0" json:"price"`
	Tags         []string      `gorm:"serializer:json" json:"tags"`
	Schedule     []ScheduleDay `gorm:"serializer:json" json:"schedule"`
	Speakers     []Speaker     `gorm:"serializer:json" json:"speakers"`
	CreatedByID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"createdById"`
	CreatedBy    *User         `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Volunteers   []User        `gorm:"many2many:event_volunteers;" json:"volunteers,omitempty"`
	Status       EventStatus   `gorm:"type:varchar(16);not null;default:'draft'" json:"status"`
	Statistics   Statistics    `gorm:"embedded;embeddedPrefix:stat_" json:"statistics"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Status == "" {
		event.Status = StatusDraft
	}
	return
}

// CanAcceptRegistration reports whether a new registration may be taken,
// given the current registration count.
func (event *Event) CanAcceptRegistration(now time.Time, registered int64) error {
	if event.Status != StatusPublished {
		return ErrNotPublished
	}
	if event.Date.Before(now) {
		return ErrEventPassed
	}
	if event.MaxAttendees != nil && registered >= int64(*event.MaxAttendees) {
		return ErrEventFull
	}
	return nil
}

// RecomputeStatistics refreshes the denormalized counters. A zero-review
// event yields an average of 0, not NaN.
func (event *Event) RecomputeStatistics(registrations []Registration, reviews []Review) {
	event.Statistics.RegisteredCount = len(registrations)

	attended := 0
	for _, reg := range registrations {
		if reg.Status == RegistrationAttended {
			attended++
		}
	}
	event.Statistics.AttendedCount = attended

	if len(reviews) == 0 {
		event.Statistics.AverageRating = 0
		return
	}
	total := 0
	for _, review := range reviews {
		total += review.Rating
	}
	event.Statistics.AverageRating = float64(total) / float64(len(reviews))
}

// HasVolunteer reports whether the given user is in the event's volunteer
// list. Volunteers must be preloaded.
func (event *Event) HasVolunteer(userID uuid.UUID) bool {
	for _, v := range event.Volunteers {
		if v.ID == userID {
			return true
		}
	}
	return false
}
