package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeReminder struct {
	calls []time.Time
	count int
	err   error
}

func (f *fakeReminder) RemindDay(_ context.Context, date time.Time) (int, error) {
	f.calls = append(f.calls, date)
	return f.count, f.err
}

func TestRunDailyReminders(t *testing.T) {
	rem := &fakeReminder{count: 3}
	s := NewScheduler(rem, zerolog.Nop())

	s.runDailyReminders()

	if len(rem.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(rem.calls))
	}
	got := rem.calls[0]
	want := time.Now()
	if got.Year() != want.Year() || got.YearDay() != want.YearDay() {
		t.Errorf("expected today's date, got %v", got)
	}
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Errorf("expected midnight-normalized date, got %v", got)
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&fakeReminder{}, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
}
