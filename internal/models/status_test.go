package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    EventStatus
		to      EventStatus
		allowed bool
	}{
		{StatusDraft, StatusPublished, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusCompleted, false},
		{StatusPublished, StatusCancelled, true},
		{StatusPublished, StatusCompleted, true},
		{StatusPublished, StatusDraft, false},
		{StatusCancelled, StatusPublished, false},
		{StatusCancelled, StatusDraft, false},
		{StatusCompleted, StatusPublished, false},
		{StatusCompleted, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransitionPublishGuards(t *testing.T) {
	t.Run("rejects unknown status", func(t *testing.T) {
		event := &Event{Status: StatusDraft}
		err := event.Transition(EventStatus("archived"), 3)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("requires a volunteer to publish", func(t *testing.T) {
		event := &Event{Status: StatusDraft}
		err := event.Transition(StatusPublished, 3)
		require.ErrorIs(t, err, ErrNoVolunteers)
		assert.Equal(t, StatusDraft, event.Status)
	})

	t.Run("requires form fields to publish", func(t *testing.T) {
		event := &Event{Status: StatusDraft, Volunteers: []User{{ID: uuid.New()}}}
		err := event.Transition(StatusPublished, 0)
		require.ErrorIs(t, err, ErrNoFormFields)
		assert.Equal(t, StatusDraft, event.Status)
	})

	t.Run("publishes with volunteer and form", func(t *testing.T) {
		event := &Event{Status: StatusDraft, Volunteers: []User{{ID: uuid.New()}}}
		require.NoError(t, event.Transition(StatusPublished, 2))
		assert.Equal(t, StatusPublished, event.Status)
	})

	t.Run("cancelling does not need guards", func(t *testing.T) {
		event := &Event{Status: StatusDraft}
		require.NoError(t, event.Transition(StatusCancelled, 0))
		assert.Equal(t, StatusCancelled, event.Status)
	})

	t.Run("terminal statuses absorb", func(t *testing.T) {
		event := &Event{Status: StatusCompleted, Volunteers: []User{{ID: uuid.New()}}}
		err := event.Transition(StatusPublished, 5)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestAutoPublish(t *testing.T) {
	t.Run("first volunteer publishes a draft", func(t *testing.T) {
		event := &Event{Status: StatusDraft, Volunteers: []User{{ID: uuid.New()}}}
		assert.True(t, event.AutoPublish())
		assert.Equal(t, StatusPublished, event.Status)
	})

	t.Run("no volunteers leaves draft alone", func(t *testing.T) {
		event := &Event{Status: StatusDraft}
		assert.False(t, event.AutoPublish())
		assert.Equal(t, StatusDraft, event.Status)
	})

	t.Run("bulk-assigning the first volunteers publishes a draft", func(t *testing.T) {
		event := &Event{Status: StatusDraft, Volunteers: []User{{ID: uuid.New()}, {ID: uuid.New()}}}
		assert.True(t, event.AutoPublish())
		assert.Equal(t, StatusPublished, event.Status)
	})

	t.Run("published events are untouched", func(t *testing.T) {
		event := &Event{Status: StatusPublished, Volunteers: []User{{ID: uuid.New()}}}
		assert.False(t, event.AutoPublish())
	})
}

func TestCanAcceptRegistration(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-48 * time.Hour)
	capacity := 2

	tests := []struct {
		name       string
		event      Event
		registered int64
		wantErr    error
	}{
		{"draft event", Event{Status: StatusDraft, Date: future}, 0, ErrNotPublished},
		{"cancelled event", Event{Status: StatusCancelled, Date: future}, 0, ErrNotPublished},
		{"past event", Event{Status: StatusPublished, Date: past}, 0, ErrEventPassed},
		{"full event", Event{Status: StatusPublished, Date: future, MaxAttendees: &capacity}, 2, ErrEventFull},
		{"under capacity", Event{Status: StatusPublished, Date: future, MaxAttendees: &capacity}, 1, nil},
		{"unlimited capacity", Event{Status: StatusPublished, Date: future}, 5000, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.CanAcceptRegistration(now, tt.registered)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRecomputeStatistics(t *testing.T) {
	t.Run("zero reviews gives zero average", func(t *testing.T) {
		event := &Event{}
		event.RecomputeStatistics(nil, nil)
		assert.Equal(t, 0, event.Statistics.RegisteredCount)
		assert.Equal(t, 0, event.Statistics.AttendedCount)
		assert.Equal(t, float64(0), event.Statistics.AverageRating)
	})

	t.Run("counts attended and averages ratings", func(t *testing.T) {
		registrations := []Registration{
			{Status: RegistrationApproved},
			{Status: RegistrationAttended},
			{Status: RegistrationAttended},
			{Status: RegistrationRejected},
		}
		reviews := []Review{
			{Rating: 5},
			{Rating: 4},
			{Rating: 3},
		}

		event := &Event{}
		event.RecomputeStatistics(registrations, reviews)
		assert.Equal(t, 4, event.Statistics.RegisteredCount)
		assert.Equal(t, 2, event.Statistics.AttendedCount)
		assert.InDelta(t, 4.0, event.Statistics.AverageRating, 0.0001)
	})
}

func TestValidRegistrationStatus(t *testing.T) {
	for _, status := range []RegistrationStatus{RegistrationPending, RegistrationApproved, RegistrationRejected, RegistrationAttended} {
		assert.True(t, ValidRegistrationStatus(status))
	}
	assert.False(t, ValidRegistrationStatus(RegistrationStatus("confirmed")))
	assert.False(t, ValidRegistrationStatus(RegistrationStatus("")))
}
