package probe

import (
	"context"
	"testing"
	"time"
)

func TestLatencyMillis(t *testing.T) {
	cases := []struct {
		name string
		rtt  time.Duration
		want float64
	}{
		{name: "typical", rtt: 42 * time.Millisecond, want: 42},
		{name: "sub-millisecond survives", rtt: 250 * time.Microsecond, want: 0.25},
		{name: "literal zero clamps to 1ms", rtt: 0, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := latencyMillis(tc.rtt); got != tc.want {
				t.Fatalf("latencyMillis(%v) = %v, want %v", tc.rtt, got, tc.want)
			}
		})
	}
}

func TestProbeUnresolvableFoldsIntoLost(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewICMP(WithNow(func() time.Time { return fixed }))

	res := p.Probe(context.Background(), "no such host", 100*time.Millisecond)

	if !res.Lost {
		t.Fatalf("expected lost result for unresolvable endpoint")
	}
	if res.LatencyMs != 0 {
		t.Fatalf("lost result must not carry latency, got %v", res.LatencyMs)
	}
	if res.EndpointID != "no such host" {
		t.Fatalf("endpoint id not preserved: %q", res.EndpointID)
	}
	if !res.Timestamp.Equal(fixed) {
		t.Fatalf("expected injected timestamp, got %v", res.Timestamp)
	}
}
