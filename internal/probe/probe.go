// Package probe issues single echo probes against individual endpoints.
// Every transport, resolution and timeout failure folds into a lost result,
// so one unreachable host can never abort a probing campaign.
package probe

import (
	"context"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/netverdict/netverdict/internal/groups"
	"github.com/netverdict/netverdict/pkg/types"
)

// Prober sends one echo request to one endpoint and reports the outcome.
type Prober interface {
	Probe(ctx context.Context, endpointID string, timeout time.Duration) types.ProbeResult
}

// ICMP probes endpoints with one ICMP echo request per call.
type ICMP struct {
	now        func() time.Time
	privileged bool
}

type Option func(*ICMP)

func WithNow(now func() time.Time) Option {
	return func(p *ICMP) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPrivileged switches to raw ICMP sockets, which require elevated
// privileges on most platforms.
func WithPrivileged(privileged bool) Option {
	return func(p *ICMP) {
		p.privileged = privileged
	}
}

func NewICMP(opts ...Option) *ICMP {
	p := &ICMP{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe sends one echo request and waits up to timeout for the reply. The
// returned result is lost on any failure; no error escapes this boundary.
func (p *ICMP) Probe(ctx context.Context, endpointID string, timeout time.Duration) types.ProbeResult {
	ts := p.now().UTC()

	pinger, err := probing.NewPinger(groups.Address(endpointID))
	if err != nil {
		return types.NewLost(ts, endpointID, true)
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(p.privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		return types.NewLost(ts, endpointID, true)
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return types.NewLost(ts, endpointID, true)
	}
	return types.NewSuccess(ts, endpointID, latencyMillis(stats.AvgRtt))
}

// latencyMillis converts a round trip to floating-point milliseconds. A
// transport that rounds to literal zero is reported as 1ms instead, never
// as a biased zero latency.
func latencyMillis(rtt time.Duration) float64 {
	ms := float64(rtt) / float64(time.Millisecond)
	if ms == 0 {
		return 1
	}
	return ms
}
