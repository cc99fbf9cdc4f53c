package monitor

import (
	"log/slog"
	"time"
)

type ScheduledTrigger interface {
	TriggerScheduled() bool
}

// Scheduler fires the coordinator on a fixed interval. Ticks landing while a
// run is in flight are dropped by the coordinator, so a slow run never
// queues a backlog.
type Scheduler struct {
	trigger  ScheduledTrigger
	interval time.Duration
	stop     chan struct{}
}

func NewScheduler(trigger ScheduledTrigger, interval time.Duration) *Scheduler {
	return &Scheduler{
		trigger:  trigger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	ticker := time.NewTicker(s.interval)
	slog.Info("scheduler started", "interval", s.interval)

	go func() {
		for {
			select {
			case <-s.stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.trigger.TriggerScheduled()
			}
		}
	}()
}

// Stop halts future triggers. An in-flight run is not interrupted; it ends
// with the process.
func (s *Scheduler) Stop() {
	close(s.stop)
	slog.Info("scheduler stopped")
}
