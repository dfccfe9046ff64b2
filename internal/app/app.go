package app

import (
	"context"
	"time"

	"github.com/jkaberg/bms-hass/internal/bus"
	"github.com/jkaberg/bms-hass/internal/cache"
	"github.com/jkaberg/bms-hass/internal/config"
	"github.com/jkaberg/bms-hass/internal/domain"
	"github.com/jkaberg/bms-hass/internal/entities"
	"github.com/jkaberg/bms-hass/internal/hass"
	"github.com/jkaberg/bms-hass/internal/mqtt"
	"github.com/jkaberg/bms-hass/internal/transmission"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Source delivers raw statestream messages.
type Source interface {
	Subscribe(topic string, handler mqtt.MessageHandler) error
}

// API receives every recomputed state, with the snapshot it came from, and
// serves it until ctx is cancelled.
type API interface {
	SetState(state *domain.State, snap hass.Snapshot, at time.Time)
	Run(ctx context.Context, addr string) error
}

// Run wires statestream ingestion, recomputation and publishing together and
// blocks until ctx is cancelled. tx and api may be nil.
func Run(
	parentCtx context.Context,
	cfg *config.Config,
	resolver *entities.Resolver,
	source Source,
	tx transmission.Transmitter,
	api API,
	logger *logrus.Logger,
) {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	messageBus := bus.New()
	defer messageBus.Close()
	sub := messageBus.Subscribe()
	grp, ctx := errgroup.WithContext(ctx)

	// Collector -----------------------------------------------------------
	wanted := make(map[string]struct{})
	for _, id := range resolver.AllEntityIDs() {
		wanted[id] = struct{}{}
	}
	store := hass.NewStore()

	grp.Go(func() error {
		handler := func(topic string, payload []byte) {
			id, ok := hass.ParseStatestreamTopic(cfg.StatestreamPrefix, topic)
			if !ok {
				return
			}
			if _, ok := wanted[id]; !ok {
				return
			}
			if snap, changed := store.Apply(id, hass.DecodePayload(payload), time.Now()); changed {
				messageBus.Publish(snap)
			}
		}
		filter := cfg.StatestreamFilter()
		if err := source.Subscribe(filter, handler); err != nil {
			// The client retries the subscription on the next (re)connect.
			logger.WithError(err).WithField("topic", filter).Warn("collector: subscribe failed")
		}
		<-ctx.Done()
		return ctx.Err()
	})

	// Central scheduler ----------------------------------------------------
	publishCache := cache.NewManager(logger)

	grp.Go(func() error {
		var (
			prevSnap      = hass.Snapshot(store.Snapshot())
			latest        *domain.State
			lastSent      = time.Now().Add(-cfg.PublishInterval)
			lastPublished time.Time
		)
		ticker := time.NewTicker(config.SchedulerTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case snap, ok := <-sub:
				if !ok {
					return nil
				}
				if !domain.Changed(resolver, prevSnap, snap) {
					continue
				}
				prevSnap = snap
				latest = domain.Recompute(resolver, snap)
				if api != nil {
					api.SetState(latest, snap, time.Now())
				}
			case <-ticker.C:
				if latest == nil || tx == nil {
					continue
				}
				now := time.Now()
				if now.Sub(lastSent) < cfg.PublishInterval {
					continue
				}
				force := cfg.ForceUpdateInterval > 0 && now.Sub(lastPublished) >= cfg.ForceUpdateInterval
				if !publishCache.Changed(latest) && !force {
					continue
				}
				lastSent = now
				if err := tx.Transmit(latest); err != nil {
					logger.WithError(err).Warn("MQTT transmit failed")
					// Forget the cached state so the next tick retries even
					// without new data.
					publishCache.Reset()
					continue
				}
				lastPublished = now
			}
		}
	})

	// Read-only API ---------------------------------------------------------
	if api != nil && cfg.HasHTTP() {
		grp.Go(func() error {
			// The API is optional; MQTT publishing carries on without it.
			if err := api.Run(ctx, cfg.HTTPAddr); err != nil {
				logger.WithError(err).WithField("addr", cfg.HTTPAddr).Error("API server stopped")
			}
			return nil
		})
	}

	if err := grp.Wait(); err != nil && err != context.Canceled {
		logger.WithError(err).Warn("app: background group exited")
	}
}
