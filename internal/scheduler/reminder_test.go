package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTomorrowWindow(t *testing.T) {
	t.Run("covers the whole next calendar day", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 15, 42, 10, 0, time.UTC)
		start, end := TomorrowWindow(now)

		assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), start)
		assert.True(t, end.Before(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)))
		assert.True(t, end.After(time.Date(2025, 6, 2, 23, 59, 59, 0, time.UTC)))
	})

	t.Run("crosses month boundaries", func(t *testing.T) {
		now := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)
		start, _ := TomorrowWindow(now)
		assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("normalizes non-UTC input", func(t *testing.T) {
		jakarta := time.FixedZone("WIB", 7*3600)
		now := time.Date(2025, 6, 1, 2, 0, 0, 0, jakarta) // 2025-05-31 19:00 UTC
		start, _ := TomorrowWindow(now)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), start)
	})
}

func TestBatches(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{"empty", nil, 50, nil},
		{"single partial batch", []int{1, 2, 3}, 50, [][]int{{1, 2, 3}}},
		{"exact multiple", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"trailing remainder", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Batches(tt.items, tt.size))
		})
	}
}
