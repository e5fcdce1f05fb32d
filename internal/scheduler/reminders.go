package scheduler

import (
	"fmt"
	"time"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/services"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// ReminderNotifier is the mail notification the scheduler triggers.
type ReminderNotifier interface {
	OverdueReminder(t *models.Ticket)
}

// Scheduler runs the periodic SLA reminder sweep and session purge in-process.
type Scheduler struct {
	cron     *cron.Cron
	tickets  services.TicketService
	sessions services.SessionService
	notifier ReminderNotifier
	interval time.Duration
}

func New(tickets services.TicketService, sessions services.SessionService,
	notifier ReminderNotifier, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		tickets:  tickets,
		sessions: sessions,
		notifier: notifier,
		interval: interval,
	}
}

// Start registers the jobs and launches the cron loop.
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.runSweep); err != nil {
		return fmt.Errorf("registering reminder job: %w", err)
	}
	s.cron.Start()
	log.WithField("interval", s.interval.String()).Info("Reminder scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Reminder scheduler stopped")
}

func (s *Scheduler) runSweep() {
	s.RemindOverdue(time.Now().UTC())

	purged, err := s.sessions.PurgeExpired()
	if err != nil {
		log.WithError(err).Error("Failed to purge expired sessions")
	} else if purged > 0 {
		log.WithField("purged", purged).Info("Expired sessions purged")
	}
}

// RemindOverdue emails a reminder for every pending ticket past its deadline.
// Exposed for tests and manual sweeps.
func (s *Scheduler) RemindOverdue(now time.Time) {
	overdue, err := s.tickets.FindOverdue(now)
	if err != nil {
		log.WithError(err).Error("Failed to query overdue tickets")
		return
	}

	for i := range overdue {
		s.notifier.OverdueReminder(&overdue[i])
	}

	if len(overdue) > 0 {
		log.WithField("count", len(overdue)).Info("Overdue ticket reminders sent")
	}
}
