package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/reviewradar/reviewradar/internal/api"
	"github.com/reviewradar/reviewradar/internal/cache"
	"github.com/reviewradar/reviewradar/internal/config"
	"github.com/reviewradar/reviewradar/internal/gerrit"
	"github.com/reviewradar/reviewradar/internal/monitor"
	"github.com/reviewradar/reviewradar/internal/notify"
	"github.com/reviewradar/reviewradar/internal/render"
)

func main() {
	cfg := config.ReadConfig()

	hosts, err := config.LoadHosts(cfg.HostsFile())
	if err != nil {
		logrus.Fatalf("Failed to load hosts: %v", err)
	}
	logrus.Infof("Monitoring %d review hosts", len(hosts))

	client, err := gerrit.NewClient()
	if err != nil {
		logrus.Fatalf("Failed to build review client: %v", err)
	}

	results := cache.NewResultCache(nil)
	orch := monitor.NewOrchestrator(client, results, cfg.CacheTTL(), nil)

	notifiers := notify.Multi{notify.LogNotifier{}}
	if url := cfg.GetString("webhook_url", ""); url != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(url))
	}

	mon := monitor.NewMonitor(orch, hosts, monitor.DefaultDeriveConfig(), render.LogRenderer{}, notifiers)
	sched := monitor.NewScheduler(cfg.RefreshDelay(), mon.Pass)

	ctx := context.Background()

	// First pass: verify a trigger is armed and refresh immediately, the same
	// path taken after a process restart.
	go func() {
		if err := sched.OnRestartCheck(ctx); err != nil {
			logrus.Errorf("initial refresh pass failed: %v", err)
		}
	}()

	if err := api.Start(ctx, cfg, mon, sched); err != nil {
		panic(err)
	}
}
