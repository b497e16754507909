// Package scheduler drives bounded-duration probing campaigns: it probes
// every endpoint of one group at a fixed cadence, appends results to the
// session log, publishes per-probe progress, and periodically emits live
// statistics over the accumulated log.
package scheduler

import (
	"context"
	"errors"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/netverdict/netverdict/internal/groups"
	"github.com/netverdict/netverdict/internal/probe"
	"github.com/netverdict/netverdict/internal/progress"
	"github.com/netverdict/netverdict/internal/session"
	"github.com/netverdict/netverdict/internal/stats"
	"github.com/netverdict/netverdict/pkg/types"
)

// ErrEmptyGroup is returned for a campaign over a group with no endpoints.
var ErrEmptyGroup = errors.New("scheduler: endpoint group is empty")

const (
	defaultTick         = time.Second
	defaultProbeTimeout = 3 * time.Second
	defaultLiveStats    = 30 * time.Second
)

// Pacer bounds the probe rate between iterations.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Campaign runs probing campaigns against a session. A failed probe is
// recorded as lost and never retried: retrying would distort loss-rate
// measurement.
type Campaign struct {
	prober     probe.Prober
	observer   progress.Observer
	now        func() time.Time
	newPacer   func(interval time.Duration) Pacer
	liveEvery  time.Duration
	timeout    time.Duration
	concurrent bool
	interleave bool
}

type Option func(*Campaign)

func WithObserver(obs progress.Observer) Option {
	return func(c *Campaign) {
		if obs != nil {
			c.observer = obs
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(c *Campaign) {
		if now != nil {
			c.now = now
		}
	}
}

// WithPacerFactory overrides how pacing waits are produced, letting tests
// substitute a fake clock.
func WithPacerFactory(factory func(interval time.Duration) Pacer) Option {
	return func(c *Campaign) {
		if factory != nil {
			c.newPacer = factory
		}
	}
}

func WithProbeTimeout(d time.Duration) Option {
	return func(c *Campaign) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLiveStatsInterval(d time.Duration) Option {
	return func(c *Campaign) {
		c.liveEvery = d
	}
}

// WithConcurrentProbes fans same-tick probes out across goroutines bounded
// by the group size, joined before the log appends.
func WithConcurrentProbes(enabled bool) Option {
	return func(c *Campaign) {
		c.concurrent = enabled
	}
}

// WithInterleave divides the tick interval by the group size so the whole
// group keeps one tick of cadence while individual probes interleave.
func WithInterleave(enabled bool) Option {
	return func(c *Campaign) {
		c.interleave = enabled
	}
}

func New(prober probe.Prober, opts ...Option) *Campaign {
	c := &Campaign{
		prober:    prober,
		observer:  progress.NoopObserver{},
		now:       time.Now,
		newPacer:  defaultPacer,
		liveEvery: defaultLiveStats,
		timeout:   defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Summary reports what a campaign actually did, including after
// cancellation: accumulated results are never discarded.
type Summary struct {
	Start     time.Time
	Elapsed   time.Duration
	Results   int
	Cancelled bool
}

// Run probes every endpoint of group in fixed order until duration elapses
// or ctx is cancelled. Cancellation is cooperative: it is observed at
// iteration boundaries, after the in-flight probe has drained.
func (c *Campaign) Run(ctx context.Context, sess *session.Session, log session.Log, group groups.Group, tick, duration time.Duration) (Summary, error) {
	if len(group.Endpoints) == 0 {
		return Summary{}, ErrEmptyGroup
	}
	if err := sess.BeginCampaign(); err != nil {
		return Summary{}, err
	}
	defer sess.EndCampaign()

	if tick <= 0 {
		tick = defaultTick
	}
	pace := tick
	if c.interleave && !c.concurrent {
		pace = tick / time.Duration(len(group.Endpoints))
	}
	pacer := c.newPacer(pace)

	start := c.now()
	end := start.Add(duration)
	sess.Reset(log)
	if log == session.Target {
		sess.SetStartTime(start)
	}

	nextLive := c.liveEvery
	results := 0
	cancelled := false

loop:
	for {
		select {
		case <-ctx.Done():
			cancelled = true
			break loop
		default:
		}
		if !c.now().Before(end) {
			break
		}

		if c.concurrent {
			for _, r := range c.probeAll(ctx, group) {
				sess.Append(log, r)
				results++
				c.observeProbe(r, start, duration)
			}
			if err := pacer.Wait(ctx); err != nil {
				cancelled = true
				break
			}
		} else {
			for _, endpoint := range group.Endpoints {
				r := c.prober.Probe(ctx, endpoint, c.timeout)
				sess.Append(log, r)
				results++
				c.observeProbe(r, start, duration)
				if err := pacer.Wait(ctx); err != nil {
					cancelled = true
					break loop
				}
			}
		}

		if elapsed := c.now().Sub(start); c.liveEvery > 0 && elapsed >= nextLive {
			c.observer.ObserveLiveStats(stats.AggregateGroup(sess.Snapshot(log)), elapsed)
			for elapsed >= nextLive {
				nextLive += c.liveEvery
			}
		}
	}

	return Summary{
		Start:     start,
		Elapsed:   c.now().Sub(start),
		Results:   results,
		Cancelled: cancelled,
	}, nil
}

// probeAll issues one probe per endpoint concurrently and returns results
// in endpoint order, so the serialized appends stay deterministic.
func (c *Campaign) probeAll(ctx context.Context, group groups.Group) []types.ProbeResult {
	batch := make([]types.ProbeResult, len(group.Endpoints))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(group.Endpoints))
	for i, endpoint := range group.Endpoints {
		i, endpoint := i, endpoint
		g.Go(func() error {
			batch[i] = c.prober.Probe(gctx, endpoint, c.timeout)
			return nil
		})
	}
	_ = g.Wait()
	return batch
}

func (c *Campaign) observeProbe(r types.ProbeResult, start time.Time, duration time.Duration) {
	elapsed := c.now().Sub(start)
	remaining := duration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	percent := 100.0
	if duration > 0 {
		percent = math.Min(100, float64(elapsed)/float64(duration)*100)
	}
	c.observer.ObserveProbe(progress.Observation{
		Result:    r,
		Elapsed:   elapsed,
		Remaining: remaining,
		Percent:   percent,
	})
}

func defaultPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return noopPacer{}
	}
	lim := rate.NewLimiter(rate.Every(interval), 1)
	// consume the initial token so the very first wait paces too
	lim.Allow()
	return lim
}

type noopPacer struct{}

func (noopPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}
