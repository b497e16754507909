package types

// EndpointStats aggregates a set of probe results for one endpoint. It is
// derived data, recomputed on demand from a result log and never mutated
// independently of it. Latency fields are computed over successful probes
// only and stay zero when none exist.
type EndpointStats struct {
	TotalPackets   int     `json:"total_packets" yaml:"total_packets"`
	LostPackets    int     `json:"lost_packets" yaml:"lost_packets"`
	PacketLossRate float64 `json:"packet_loss_rate" yaml:"packet_loss_rate"`
	MinLatency     float64 `json:"min_latency" yaml:"min_latency"`
	MaxLatency     float64 `json:"max_latency" yaml:"max_latency"`
	AvgLatency     float64 `json:"avg_latency" yaml:"avg_latency"`
	Jitter         float64 `json:"jitter" yaml:"jitter"`
}

// GroupStats rolls per-endpoint statistics up to one logical endpoint group.
// The group averages are unweighted means: AvgLatency covers only endpoints
// that produced at least one successful probe.
type GroupStats struct {
	Endpoints   map[string]EndpointStats `json:"endpoints" yaml:"endpoints"`
	AvgLossRate float64                  `json:"avg_loss_rate" yaml:"avg_loss_rate"`
	AvgLatency  float64                  `json:"avg_latency" yaml:"avg_latency"`
}
