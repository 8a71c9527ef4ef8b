package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PassFunc runs one orchestration pass.
type PassFunc func(ctx context.Context) error

// Scheduler owns a single future-trigger slot with a fixed delay. At most one
// trigger is armed at any time; cancel-then-arm happens under one lock so a
// concurrent fire cannot interleave with the replacement. The slot is
// volatile: a process restart loses it, which OnRestartCheck repairs.
type Scheduler struct {
	delay time.Duration
	pass  PassFunc

	lock  sync.Mutex
	timer *time.Timer
}

func NewScheduler(delay time.Duration, pass PassFunc) *Scheduler {
	return &Scheduler{
		delay: delay,
		pass:  pass,
	}
}

// OnDemandRefresh atomically replaces any armed trigger with a fresh one,
// then runs one pass immediately. This is also how the very first pass after
// activation is performed.
func (s *Scheduler) OnDemandRefresh(ctx context.Context) error {
	s.lock.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.armLocked(ctx)
	s.lock.Unlock()

	return s.pass(ctx)
}

// OnRestartCheck arms a trigger if none survived a restart, then runs one
// pass regardless.
func (s *Scheduler) OnRestartCheck(ctx context.Context) error {
	s.lock.Lock()
	if s.timer == nil {
		logrus.Info("no refresh trigger armed, re-arming after restart")
		s.armLocked(ctx)
	}
	s.lock.Unlock()

	return s.pass(ctx)
}

// OnTriggerFired runs one pass without touching the trigger slot. Firing
// consumes the armed trigger; callers wanting periodic behavior must re-arm,
// which the built-in fire path does by going through OnDemandRefresh.
func (s *Scheduler) OnTriggerFired(ctx context.Context) {
	if err := s.pass(ctx); err != nil {
		logrus.Errorf("scheduled refresh pass failed: %v", err)
	}
}

// Armed reports whether a trigger is currently armed.
func (s *Scheduler) Armed() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.timer != nil
}

// Stop disarms any pending trigger. Used at shutdown.
func (s *Scheduler) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) armLocked(ctx context.Context) {
	s.timer = time.AfterFunc(s.delay, func() { s.fired(ctx) })
}

// fired empties the consumed slot and re-enters through OnDemandRefresh,
// which re-arms and runs the pass. Re-arming delay restarts after each fire,
// so the cadence drifts by the pass duration rather than staying on a fixed
// grid. Pass errors are logged, never propagated, so scheduling survives any
// failing pass.
func (s *Scheduler) fired(ctx context.Context) {
	s.lock.Lock()
	s.timer = nil
	s.lock.Unlock()

	if err := s.OnDemandRefresh(ctx); err != nil {
		logrus.Errorf("scheduled refresh pass failed: %v", err)
	}
}
