// Package jobs runs the scheduled background work: currently a daily
// appointment-reminder pass.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Reminder dispatches reminders for a given day's bookings. The appointment
// service implements it.
type Reminder interface {
	RemindDay(ctx context.Context, date time.Time) (int, error)
}

type Scheduler struct {
	cron     *cron.Cron
	reminder Reminder
	logger   zerolog.Logger
}

func NewScheduler(reminder Reminder, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		reminder: reminder,
		logger:   logger,
	}
}

// Start registers the jobs and begins the schedule. Reminders for the day's
// appointments go out every morning at 07:00 server time.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 7 * * *", s.runDailyReminders)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info().Msg("background scheduler started")
	return nil
}

// Stop halts the schedule and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	count, err := s.reminder.RemindDay(ctx, date)
	if err != nil {
		s.logger.Error().Err(err).Msg("daily reminder pass failed")
		return
	}
	s.logger.Info().Int("reminders", count).Str("date", date.Format("2006-01-02")).
		Msg("daily reminder pass complete")
}
