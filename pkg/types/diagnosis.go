package types

// ProblemSource classifies where measured degradation originates.
type ProblemSource string

const (
	SourceTargetInfrastructure ProblemSource = "target_infrastructure"
	SourceNetworkGeneral       ProblemSource = "network_general"
	SourceNetworkRouting       ProblemSource = "network_routing"
	SourceTargetLatency        ProblemSource = "target_latency"
	SourceNoSignificantIssue   ProblemSource = "no_significant_issue"
)

// Confidence grades how strongly the evidence supports a classification.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DiagnosisDetails carries the compared scalars behind a classification.
type DiagnosisDetails struct {
	LossDiff         float64 `json:"packet_loss_diff" yaml:"packet_loss_diff"`
	LatencyDiff      float64 `json:"latency_diff" yaml:"latency_diff"`
	TargetLoss       float64 `json:"target_loss" yaml:"target_loss"`
	ReferenceLoss    float64 `json:"reference_loss" yaml:"reference_loss"`
	TargetLatency    float64 `json:"target_latency" yaml:"target_latency"`
	ReferenceLatency float64 `json:"reference_latency" yaml:"reference_latency"`
}

// Diagnosis is the outcome of comparing target-group statistics against a
// reference group. It is created fresh per comparison and never persisted
// as authoritative state.
type Diagnosis struct {
	Source          ProblemSource    `json:"problem_source" yaml:"problem_source"`
	Confidence      Confidence       `json:"confidence" yaml:"confidence"`
	Recommendations []string         `json:"recommendations" yaml:"recommendations"`
	Details         DiagnosisDetails `json:"details" yaml:"details"`
}
