package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/onlyplans/server/internal/mailer"
	"github.com/onlyplans/server/internal/models"
)

const (
	defaultInterval  = time.Hour
	defaultBatchSize = 50
)

// Scheduler runs the hourly reminder scan. It is constructed once at startup
// and handed its dependencies; there is no package-level instance.
type Scheduler struct {
	db        *gorm.DB
	mailer    *mailer.Mailer
	interval  time.Duration
	batchSize int
}

func New(db *gorm.DB, m *mailer.Mailer) *Scheduler {
	return &Scheduler{
		db:        db,
		mailer:    m,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
	}
}

// Start launches the reminder loop. It runs until ctx is cancelled; each
// tick always completes its scan before the next sleep.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.SendReminders(ctx, time.Now()); err != nil {
					log.Printf("reminder scheduler: %v", err)
				}
			}
		}
	}()
}

// TomorrowWindow returns the UTC calendar-day boundaries of the day after
// now.
func TomorrowWindow(now time.Time) (start, end time.Time) {
	tomorrow := now.UTC().AddDate(0, 0, 1)
	start = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)
	end = start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}

// SendReminders finds published events happening tomorrow and emails their
// approved, notification-opted-in registrants in batches.
func (s *Scheduler) SendReminders(ctx context.Context, now time.Time) error {
	start, end := TomorrowWindow(now)

	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("status = ? AND date BETWEEN ? AND ?", models.StatusPublished, start, end).
		Find(&events).Error
	if err != nil {
		return err
	}

	for i := range events {
		event := &events[i]

		var registrations []models.Registration
		err := s.db.WithContext(ctx).Preload("User").
			Where("event_id = ? AND status = ?", event.ID, models.RegistrationApproved).
			Find(&registrations).Error
		if err != nil {
			log.Printf("reminder scheduler: load registrations for %s: %v", event.ID, err)
			continue
		}

		var recipients []string
		for _, reg := range registrations {
			if reg.User == nil || !reg.User.Preferences.EmailNotifications {
				continue
			}
			recipients = append(recipients, reg.User.Email)
		}

		s.sendBatches(event, recipients)
		log.Printf("sent reminders for event: %s", event.Title)
	}
	return nil
}

// sendBatches sends concurrently within a batch and sequentially across
// batches, bounding simultaneous outbound mail connections. Per-recipient
// failures are logged and do not abort the batch.
func (s *Scheduler) sendBatches(event *models.Event, recipients []string) {
	for _, batch := range Batches(recipients, s.batchSize) {
		var wg sync.WaitGroup
		for _, email := range batch {
			wg.Add(1)
			go func(email string) {
				defer wg.Done()
				if err := s.mailer.SendEventReminder(email, event); err != nil {
					log.Printf("failed to send reminder to %s: %v", email, err)
				}
			}(email)
		}
		wg.Wait()
	}
}

// Batches partitions items into slices of at most size elements.
func Batches[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		if len(items) == 0 {
			return nil
		}
		return [][]T{items}
	}
	var batches [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
