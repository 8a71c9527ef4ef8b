package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reviewradar/reviewradar/api/types"
	"github.com/reviewradar/reviewradar/internal/notify"
	"github.com/reviewradar/reviewradar/internal/render"
)

// Monitor runs one full orchestration pass: refresh, derive, render, notify.
// The combined outcome itself is rebuilt on every pass; only a snapshot of
// the latest one is kept, for read surfaces.
type Monitor struct {
	orch     *Orchestrator
	hosts    []types.Host
	cfg      DeriveConfig
	renderer render.Renderer
	notifier notify.Notifier

	mu   sync.RWMutex
	last *types.Snapshot
}

func NewMonitor(orch *Orchestrator, hosts []types.Host, cfg DeriveConfig, renderer render.Renderer, notifier notify.Notifier) *Monitor {
	return &Monitor{
		orch:     orch,
		hosts:    hosts,
		cfg:      cfg,
		renderer: renderer,
		notifier: notifier,
	}
}

// Hosts returns the configured host set.
func (m *Monitor) Hosts() []types.Host {
	return m.hosts
}

// RunPass performs one orchestration pass and returns the derived descriptor.
// Per-host failures are contained in the outcome; only a configuration error
// aborts the pass.
func (m *Monitor) RunPass(ctx context.Context) (types.StatusDescriptor, error) {
	outcome, err := m.orch.Refresh(ctx, m.hosts)
	if err != nil {
		return types.StatusDescriptor{}, err
	}

	desc := Derive(outcome, m.cfg)

	m.mu.Lock()
	m.last = &types.Snapshot{
		Descriptor: desc,
		Outcome:    outcome,
		Categories: Categorize(outcome.Results),
		At:         time.Now(),
	}
	m.mu.Unlock()

	if m.renderer != nil {
		m.renderer.Render(ctx, desc)
	}
	if m.notifier != nil {
		if err := m.notifier.Notify(ctx, outcome.Results, outcome.Errors); err != nil {
			logrus.Warnf("alert dispatch failed: %v", err)
		}
	}

	return desc, nil
}

// Pass adapts RunPass to the scheduler's PassFunc shape.
func (m *Monitor) Pass(ctx context.Context) error {
	_, err := m.RunPass(ctx)
	return err
}

// Last returns a copy of the latest snapshot, if any pass has completed.
func (m *Monitor) Last() (types.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return types.Snapshot{}, false
	}
	return *m.last, true
}
