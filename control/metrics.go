// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for executor monitoring.
// Counters are lock-free once created; gauges are kept in a guarded map.

package control

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsRegistry holds counters and gauges keyed by dotted names.
type MetricsRegistry struct {
	mu       sync.RWMutex
	gauges   map[string]any
	counters map[string]*atomic.Int64
	updated  atomic.Int64 // unix nanos of the last write
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		gauges:   make(map[string]any),
		counters: make(map[string]*atomic.Int64),
	}
}

// Set sets or updates a gauge.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.gauges[key] = value
	mr.mu.Unlock()
	mr.touch()
}

// Add increments counter key by delta and returns the new value.
func (mr *MetricsRegistry) Add(key string, delta int64) int64 {
	mr.mu.RLock()
	c, ok := mr.counters[key]
	mr.mu.RUnlock()
	if !ok {
		mr.mu.Lock()
		if c, ok = mr.counters[key]; !ok {
			c = new(atomic.Int64)
			mr.counters[key] = c
		}
		mr.mu.Unlock()
	}
	mr.touch()
	return c.Add(delta)
}

// Counter returns the current value of a counter, 0 if never written.
func (mr *MetricsRegistry) Counter(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	if c, ok := mr.counters[key]; ok {
		return c.Load()
	}
	return 0
}

// GetSnapshot returns the latest metrics; counters appear as int64.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.gauges)+len(mr.counters))
	for k, v := range mr.gauges {
		out[k] = v
	}
	for k, c := range mr.counters {
		out[k] = c.Load()
	}
	return out
}

// Updated returns the time of the last write, zero if none.
func (mr *MetricsRegistry) Updated() time.Time {
	ns := mr.updated.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (mr *MetricsRegistry) touch() {
	mr.updated.Store(time.Now().UnixNano())
}
