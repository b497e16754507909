package stats

import (
	"math"
	"testing"
	"time"

	"github.com/netverdict/netverdict/pkg/types"
)

func at(sec int) time.Time {
	return time.Unix(int64(sec), 0).UTC()
}

func ok(ts time.Time, id string, ms float64) types.ProbeResult {
	return types.NewSuccess(ts, id, ms)
}

func lost(ts time.Time, id string) types.ProbeResult {
	return types.NewLost(ts, id, true)
}

func TestAggregateEmptyInput(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
	gs := AggregateGroup(nil)
	if gs.AvgLossRate != 0 || gs.AvgLatency != 0 || len(gs.Endpoints) != 0 {
		t.Fatalf("expected zeroed group stats, got %+v", gs)
	}
}

func TestAggregateOnlyLostProbes(t *testing.T) {
	results := []types.ProbeResult{
		lost(at(0), "a"),
		lost(at(1), "a"),
		lost(at(2), "a"),
	}
	es := Aggregate(results)["a"]

	if es.TotalPackets != 3 || es.LostPackets != 3 {
		t.Fatalf("counts wrong: %+v", es)
	}
	if es.PacketLossRate != 100 {
		t.Fatalf("loss rate = %v, want 100", es.PacketLossRate)
	}
	if es.MinLatency != 0 || es.MaxLatency != 0 || es.AvgLatency != 0 || es.Jitter != 0 {
		t.Fatalf("latency fields must be zero with no successful probes: %+v", es)
	}
}

func TestAggregateMixedResults(t *testing.T) {
	results := []types.ProbeResult{
		ok(at(0), "a", 10),
		ok(at(1), "a", 20),
		ok(at(2), "a", 30),
		lost(at(3), "a"),
	}
	es := Aggregate(results)["a"]

	if es.TotalPackets != 4 || es.LostPackets != 1 {
		t.Fatalf("counts wrong: %+v", es)
	}
	if es.PacketLossRate != 25 {
		t.Fatalf("loss rate = %v, want 25", es.PacketLossRate)
	}
	if es.MinLatency != 10 || es.MaxLatency != 30 || es.AvgLatency != 20 {
		t.Fatalf("latency summary wrong: %+v", es)
	}
	// sample stddev of {10,20,30} is 10
	if math.Abs(es.Jitter-10) > 1e-9 {
		t.Fatalf("jitter = %v, want 10", es.Jitter)
	}
}

func TestJitterZeroUnderTwoSamples(t *testing.T) {
	es := Aggregate([]types.ProbeResult{ok(at(0), "a", 42)})["a"]
	if es.Jitter != 0 {
		t.Fatalf("jitter = %v, want 0 for a single sample", es.Jitter)
	}
}

func TestAggregateInvariants(t *testing.T) {
	results := []types.ProbeResult{
		ok(at(0), "a", 5),
		lost(at(1), "a"),
		lost(at(2), "b"),
		ok(at(3), "c", 7),
		ok(at(4), "c", 9),
	}
	for id, es := range Aggregate(results) {
		if es.LostPackets > es.TotalPackets {
			t.Fatalf("%s: lost %d > total %d", id, es.LostPackets, es.TotalPackets)
		}
		if es.PacketLossRate < 0 || es.PacketLossRate > 100 {
			t.Fatalf("%s: loss rate %v out of range", id, es.PacketLossRate)
		}
	}
}

func TestAggregateGroupAverages(t *testing.T) {
	results := []types.ProbeResult{
		ok(at(0), "a", 10),
		ok(at(1), "a", 10),
		lost(at(0), "b"),
		lost(at(1), "b"),
		ok(at(0), "c", 30),
		ok(at(1), "c", 30),
	}
	gs := AggregateGroup(results)

	// per endpoint: a 0%, b 100%, c 0% loss
	if math.Abs(gs.AvgLossRate-100.0/3) > 1e-9 {
		t.Fatalf("avg loss rate = %v, want %v", gs.AvgLossRate, 100.0/3)
	}
	// only a and c carry latency data
	if gs.AvgLatency != 20 {
		t.Fatalf("avg latency = %v, want 20 (b has no latency data)", gs.AvgLatency)
	}
}

func TestWindow(t *testing.T) {
	results := []types.ProbeResult{
		ok(at(0), "a", 1),
		ok(at(10), "a", 2),
		ok(at(20), "a", 3),
	}
	tail := Window(results, at(10))
	if len(tail) != 2 || tail[0].LatencyMs != 2 {
		t.Fatalf("window wrong: %+v", tail)
	}
	if got := Window(results, at(30)); len(got) != 0 {
		t.Fatalf("expected empty window, got %+v", got)
	}
}
