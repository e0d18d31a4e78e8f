package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultThemeInterval is how often the day/night theme is re-resolved.
const DefaultThemeInterval = 5 * time.Minute

// ThemeChecker re-resolves the theme from the last known sunrise/sunset.
type ThemeChecker interface {
	RecheckTheme() bool
}

// Scheduler periodically re-resolves the dashboard theme so it flips near
// sunrise and sunset without a new fetch.
type Scheduler struct {
	scheduler *gocron.Scheduler
	theme     ThemeChecker
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, theme ThemeChecker) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		theme:     theme,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = int(DefaultThemeInterval.Minutes())
	}

	_, err := s.scheduler.Every(minutes).Minutes().WaitForSchedule().Do(s.recheck)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) recheck() {
	dark := s.theme.RecheckTheme()
	log.Printf("DEBUG: scheduler: theme rechecked, dark=%t", dark)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
