package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vfa-khuongdv/driveview/pkg/notification"
)

// SessionPurger is the persistence surface the maintenance job needs.
type SessionPurger interface {
	DeleteSessionsExpiredBefore(cutoff time.Time) (int64, error)
}

// Service runs scheduled session maintenance. Expired Drive grants are
// purged so the store only ever holds sessions a user could still resume.
type Service struct {
	cron      *cron.Cron
	purger    SessionPurger
	notifier  notification.Notifier
	retention time.Duration
}

// NewService creates a new scheduler service. The notifier is optional;
// retention is how long an expired grant is kept before purging.
func NewService(purger SessionPurger, notifier notification.Notifier, retention time.Duration) *Service {
	return &Service{
		cron:      cron.New(cron.WithSeconds()),
		purger:    purger,
		notifier:  notifier,
		retention: retention,
	}
}

// Schedule registers the purge job with a cron expression (with seconds,
// e.g. "0 0 3 * * *" for daily at 3 AM).
func (s *Service) Schedule(cronExpression string) error {
	if _, err := s.cron.AddFunc(cronExpression, s.purgeExpiredSessions); err != nil {
		return fmt.Errorf("failed to schedule session purge: %w", err)
	}
	return nil
}

// Start starts the scheduler
func (s *Service) Start() {
	s.cron.Start()
	log.Println("Scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

func (s *Service) purgeExpiredSessions() {
	cutoff := time.Now().Add(-s.retention)

	removed, err := s.purger.DeleteSessionsExpiredBefore(cutoff)
	if err != nil {
		log.Printf("Session purge failed: %v", err)
		s.notify(&notification.Message{
			Type:      notification.TypeError,
			Title:     "Session purge failed",
			Text:      err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	if removed == 0 {
		return
	}

	log.Printf("Purged %d expired sessions", removed)
	s.notify(&notification.Message{
		Type:  notification.TypeSuccess,
		Title: "Expired sessions purged",
		Fields: map[string]interface{}{
			"removed": removed,
			"cutoff":  cutoff.Format(time.RFC3339),
		},
		Timestamp: time.Now(),
	})
}

func (s *Service) notify(message *notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(message); err != nil {
		log.Printf("Failed to send %s notification: %v", s.notifier.GetChannelType(), err)
	}
}
