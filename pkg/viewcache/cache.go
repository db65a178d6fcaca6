// Package viewcache caches rendered read models per logical path. Services
// publish InvalidatedEvent after a successful commit and the subscriber
// installed by Subscribe drops every entry under that path.
package viewcache

import (
	"context"
	"encoding/json"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-admin/pkg/eventbus"
)

const (
	PathUsers         = "/users"
	PathDepartments   = "/departments"
	PathOrganizations = "/organizations"
)

// OrganizationPath is the logical path of one organization's views.
func OrganizationPath(id string) string {
	return PathOrganizations + "/" + id
}

type Cache interface {
	Get(ctx context.Context, path, key string) ([]byte, bool, error)
	Set(ctx context.Context, path, key string, value []byte) error
	InvalidatePath(ctx context.Context, path string) error
}

// InvalidatedEvent signals that views under Path are stale.
type InvalidatedEvent struct {
	Path string
}

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "admin",
		Subsystem: "view_cache",
		Name:      "requests_total",
		Help:      "Total number of view cache lookups by path and hit/miss.",
	}, []string{"path", "result"})

	invalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "admin",
		Subsystem: "view_cache",
		Name:      "invalidate_total",
		Help:      "Total number of view cache invalidations by path.",
	}, []string{"path"})
)

func recordRequest(path string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	requests.WithLabelValues(path, result).Inc()
}

// Publish signals invalidation of every path.
func Publish(bus eventbus.EventBus, paths ...string) {
	for _, p := range paths {
		bus.Publish(&InvalidatedEvent{Path: p})
	}
}

// Subscribe makes cache drop a path whenever an InvalidatedEvent for it is published.
func Subscribe(bus eventbus.EventBus, cache Cache, log *logrus.Logger) {
	bus.Subscribe(func(e *InvalidatedEvent) {
		invalidations.WithLabelValues(e.Path).Inc()
		if err := cache.InvalidatePath(context.Background(), e.Path); err != nil && log != nil {
			log.WithError(err).WithField("path", e.Path).Error("failed to invalidate view cache")
		}
	})
}

// Load returns the cached value under path/key or computes, stores and
// returns it. Cache faults degrade to computing the value.
func Load[T any](ctx context.Context, cache Cache, path, key string, compute func(ctx context.Context) (T, error)) (T, error) {
	log := logrus.StandardLogger()
	if raw, ok, err := cache.Get(ctx, path, key); err != nil {
		log.WithError(err).WithField("path", path).Warn("view cache read failed")
	} else if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			recordRequest(path, true)
			return cached, nil
		}
	}
	recordRequest(path, false)

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := cache.Set(ctx, path, key, raw); err != nil {
		log.WithError(err).WithField("path", path).Warn("view cache write failed")
	}
	return value, nil
}
