// Package stats reduces raw probe logs into per-endpoint and per-group
// statistics. Every function here is pure: no clocks, no shared state, safe
// to call repeatedly over full logs or trailing windows.
package stats

import (
	"math"
	"time"

	"github.com/netverdict/netverdict/pkg/types"
)

// Aggregate groups results by endpoint and computes per-endpoint statistics.
// An empty input yields an empty map. Rate computations guard division by
// zero to 0, and latency fields stay zero for endpoints with no successful
// probes.
func Aggregate(results []types.ProbeResult) map[string]types.EndpointStats {
	byEndpoint := make(map[string][]types.ProbeResult)
	for _, r := range results {
		byEndpoint[r.EndpointID] = append(byEndpoint[r.EndpointID], r)
	}

	out := make(map[string]types.EndpointStats, len(byEndpoint))
	for id, rs := range byEndpoint {
		out[id] = endpointStats(rs)
	}
	return out
}

// AggregateGroup computes group-level statistics over one result log.
// AvgLossRate is the unweighted mean loss rate across endpoints; AvgLatency
// averages only endpoints that produced latency data.
func AggregateGroup(results []types.ProbeResult) types.GroupStats {
	endpoints := Aggregate(results)
	gs := types.GroupStats{Endpoints: endpoints}
	if len(endpoints) == 0 {
		return gs
	}

	var lossSum float64
	var latencySum float64
	var latencyCount int
	for _, es := range endpoints {
		lossSum += es.PacketLossRate
		if es.AvgLatency > 0 {
			latencySum += es.AvgLatency
			latencyCount++
		}
	}
	gs.AvgLossRate = lossSum / float64(len(endpoints))
	if latencyCount > 0 {
		gs.AvgLatency = latencySum / float64(latencyCount)
	}
	return gs
}

// Window returns the tail of a log at or after since, for rolling displays.
func Window(results []types.ProbeResult, since time.Time) []types.ProbeResult {
	out := make([]types.ProbeResult, 0, len(results))
	for _, r := range results {
		if !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	return out
}

func endpointStats(results []types.ProbeResult) types.EndpointStats {
	es := types.EndpointStats{TotalPackets: len(results)}

	var latencies []float64
	for _, r := range results {
		if r.Lost {
			es.LostPackets++
			continue
		}
		latencies = append(latencies, r.LatencyMs)
	}
	if es.TotalPackets > 0 {
		es.PacketLossRate = float64(es.LostPackets) / float64(es.TotalPackets) * 100
	}
	if len(latencies) == 0 {
		return es
	}

	es.MinLatency = latencies[0]
	es.MaxLatency = latencies[0]
	var sum float64
	for _, l := range latencies {
		if l < es.MinLatency {
			es.MinLatency = l
		}
		if l > es.MaxLatency {
			es.MaxLatency = l
		}
		sum += l
	}
	es.AvgLatency = sum / float64(len(latencies))
	es.Jitter = sampleStdDev(latencies, es.AvgLatency)
	return es
}

// sampleStdDev is the sample standard deviation, zero under two samples.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}
