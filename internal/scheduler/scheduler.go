// Package scheduler periodically refreshes the report cache for a fixed set
// of locations, so frequent lookups can be served from cache instead of
// spending governor admissions.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"

	"github.com/wxagent/weather-tools/internal/store"
	"github.com/wxagent/weather-tools/internal/weather"
)

// Prewarmer runs the periodic cache refresh.
type Prewarmer struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	cache     *store.MemoryStore
	locations []string
	interval  time.Duration
}

// New creates a Prewarmer for the given locations.
func New(locations []string, interval time.Duration, service *weather.Service, cache *store.MemoryStore) *Prewarmer {
	return &Prewarmer{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		cache:     cache,
		locations: locations,
		interval:  interval,
	}
}

// Start schedules the refresh job and starts the scheduler asynchronously.
func (p *Prewarmer) Start() error {
	if len(p.locations) == 0 {
		log.Info("prewarm: no locations configured, nothing to schedule")
		return nil
	}

	interval := p.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	if _, err := p.scheduler.Every(interval).Do(p.refreshAll); err != nil {
		return err
	}
	p.scheduler.StartAsync()
	return nil
}

// Stop halts the scheduler and cancels future runs.
func (p *Prewarmer) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

// refreshAll fetches every configured location concurrently. Failures are
// logged and skipped; a stale cache entry beats an evicted one.
func (p *Prewarmer) refreshAll() {
	var wg sync.WaitGroup
	for _, loc := range p.locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			report, err := p.service.CurrentWeather(ctx, weather.Query{Location: loc})
			if err != nil {
				log.WithError(err).WithField("location", loc).Warn("prewarm fetch failed")
				return
			}
			p.cache.Save(loc, report)
		}()
	}
	wg.Wait()
	log.WithField("locations", len(p.locations)).Debug("prewarm cycle completed")
}
