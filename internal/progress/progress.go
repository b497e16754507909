// Package progress carries campaign observations outward to the
// presentation layer and keeps lightweight in-memory telemetry about the
// running campaign.
package progress

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/netverdict/netverdict/pkg/types"
)

// Observation is published once per completed probe.
type Observation struct {
	Result    types.ProbeResult
	Elapsed   time.Duration
	Remaining time.Duration
	Percent   float64
}

// Observer consumes per-probe observations and periodic live statistics.
// Implementations must not mutate anything the core owns.
type Observer interface {
	ObserveProbe(Observation)
	ObserveLiveStats(stats types.GroupStats, elapsed time.Duration)
}

type NoopObserver struct{}

func (NoopObserver) ObserveProbe(Observation)                         {}
func (NoopObserver) ObserveLiveStats(types.GroupStats, time.Duration) {}

// Multi fans observations out to several observers in order.
func Multi(observers ...Observer) Observer {
	return multiObserver(observers)
}

type multiObserver []Observer

func (m multiObserver) ObserveProbe(o Observation) {
	for _, obs := range m {
		obs.ObserveProbe(o)
	}
}

func (m multiObserver) ObserveLiveStats(gs types.GroupStats, elapsed time.Duration) {
	for _, obs := range m {
		obs.ObserveLiveStats(gs, elapsed)
	}
}

// Tracker accumulates campaign counters behind atomics. It implements
// Observer and is safe to read concurrently with a running campaign.
type Tracker struct {
	sent      atomic.Int64
	lost      atomic.Int64
	lastRTT   atomic.Uint64 // float64 bits
	lastPct   atomic.Uint64 // float64 bits
}

// Snapshot is a point-in-time copy of the tracker's counters.
type Snapshot struct {
	Sent          int64
	Lost          int64
	LossRate      float64
	LastLatencyMs float64
	Percent       float64
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) ObserveProbe(o Observation) {
	t.sent.Add(1)
	if o.Result.Lost {
		t.lost.Add(1)
	} else {
		t.lastRTT.Store(math.Float64bits(o.Result.LatencyMs))
	}
	t.lastPct.Store(math.Float64bits(o.Percent))
}

func (t *Tracker) ObserveLiveStats(types.GroupStats, time.Duration) {}

func (t *Tracker) Snapshot() Snapshot {
	snap := Snapshot{
		Sent:          t.sent.Load(),
		Lost:          t.lost.Load(),
		LastLatencyMs: math.Float64frombits(t.lastRTT.Load()),
		Percent:       math.Float64frombits(t.lastPct.Load()),
	}
	if snap.Sent > 0 {
		snap.LossRate = float64(snap.Lost) / float64(snap.Sent) * 100
	}
	return snap
}
