package service

import (
	"time"

	"github.com/opencourt/ladderd/internal/identity"
	"github.com/opencourt/ladderd/internal/metrics"
	"github.com/opencourt/ladderd/internal/notifier"
	"github.com/opencourt/ladderd/internal/pubsub"
	"github.com/opencourt/ladderd/internal/store"
)

// Manager implements the Service interface on top of the store.
type Manager struct {
	store    store.Store
	identity identity.Provider
	notifier notifier.Notifier
	metrics  metrics.Metrics
	counters metrics.MetricsStore
	pubsub   pubsub.PubSubClient

	// Now is the clock used for eligibility and decay decisions.
	// Tests override it to pin dates.
	Now func() time.Time
}

// New creates a new Manager.
func New(
	store store.Store,
	identity identity.Provider,
	notifier notifier.Notifier,
	metrics metrics.Metrics,
	counters metrics.MetricsStore,
	pubsub pubsub.PubSubClient,
) *Manager {
	return &Manager{
		store:    store,
		identity: identity,
		notifier: notifier,
		metrics:  metrics,
		counters: counters,
		pubsub:   pubsub,
		Now:      time.Now,
	}
}
