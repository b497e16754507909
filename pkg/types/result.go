package types

import "time"

// ProbeResult is one echo measurement against a single endpoint. A result is
// immutable once created: Lost is true exactly when no reply arrived before
// the configured timeout, in which case LatencyMs carries no meaning.
type ProbeResult struct {
	Timestamp  time.Time `json:"ts" yaml:"ts"`
	EndpointID string    `json:"endpoint" yaml:"endpoint"`
	LatencyMs  float64   `json:"latency_ms" yaml:"latency_ms"`
	Lost       bool      `json:"lost" yaml:"lost"`
	Timeout    bool      `json:"timeout" yaml:"timeout"`
}

// NewSuccess builds a result for a reply received within the timeout.
func NewSuccess(ts time.Time, endpointID string, latencyMs float64) ProbeResult {
	return ProbeResult{
		Timestamp:  ts,
		EndpointID: endpointID,
		LatencyMs:  latencyMs,
	}
}

// NewLost builds a result for a probe that produced no usable reply.
func NewLost(ts time.Time, endpointID string, timedOut bool) ProbeResult {
	return ProbeResult{
		Timestamp:  ts,
		EndpointID: endpointID,
		Lost:       true,
		Timeout:    timedOut,
	}
}
