package models

import "errors"

// EventStatus is the lifecycle tag controlling whether an event accepts
// registrations.
type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPublished EventStatus = "published"
	StatusCancelled EventStatus = "cancelled"
	StatusCompleted EventStatus = "completed"
)

var (
	ErrInvalidStatus     = errors.New("invalid event status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoVolunteers      = errors.New("cannot activate event without assigned volunteers")
	ErrNoFormFields      = errors.New("cannot activate event without registration form")
)

// transitions is the full lifecycle table. Cancelled and completed are
// terminal.
var transitions = map[EventStatus][]EventStatus{
	StatusDraft:     {StatusPublished, StatusCancelled},
	StatusPublished: {StatusCancelled, StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
}

func (s EventStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s EventStatus) CanTransitionTo(target EventStatus) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Transition moves the event to target, enforcing the lifecycle table and
// the publish guards: entering published requires at least one assigned
// volunteer and a non-empty registration form. formFieldCount is the number
// of fields on the event's registration form; Volunteers must be preloaded.
func (event *Event) Transition(target EventStatus, formFieldCount int) error {
	if !target.Valid() {
		return ErrInvalidStatus
	}
	if !event.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	if target == StatusPublished {
		if len(event.Volunteers) == 0 {
			return ErrNoVolunteers
		}
		if formFieldCount == 0 {
			return ErrNoFormFields
		}
	}
	event.Status = target
	return nil
}

// AutoPublish flips a draft event to published once it has volunteers
// attached, whether they arrived one at a time or in a single bulk
// assignment. Unlike Transition, it skips the form-field guard. Reports
// whether the status changed.
func (event *Event) AutoPublish() bool {
	if event.Status == StatusDraft && len(event.Volunteers) > 0 {
		event.Status = StatusPublished
		return true
	}
	return false
}
