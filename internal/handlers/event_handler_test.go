package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onlyplans/server/internal/models"
)

func TestSpeakerIndex(t *testing.T) {
	event := &models.Event{
		Speakers: []models.Speaker{
			{Name: "Ada Lovelace"},
			{Name: "Grace Hopper"},
		},
	}

	tests := []struct {
		name    string
		raw     string
		wantIdx int
		wantOK  bool
	}{
		{name: "first speaker", raw: "0", wantIdx: 0, wantOK: true},
		{name: "last speaker", raw: "1", wantIdx: 1, wantOK: true},
		{name: "past the end", raw: "2", wantOK: false},
		{name: "negative", raw: "-1", wantOK: false},
		{name: "not a number", raw: "abc", wantOK: false},
		{name: "empty", raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := speakerIndex(event, tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIdx, idx)
			}
		})
	}
}

func TestSpeakerIndexNoSpeakers(t *testing.T) {
	_, ok := speakerIndex(&models.Event{}, "0")
	assert.False(t, ok)
}
