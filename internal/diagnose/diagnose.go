// Package diagnose compares target-group statistics against a reference
// group and classifies the likely source of network degradation. The
// classifier is a fixed threshold decision tree: identical inputs always
// yield the identical classification.
package diagnose

import (
	"errors"

	"github.com/netverdict/netverdict/pkg/types"
)

// ErrInsufficientData is returned when either input set carries no
// endpoint statistics. The engine never defaults to a classification.
var ErrInsufficientData = errors.New("diagnose: insufficient data for comparison")

// Thresholds are the decision constants of the classifier. They are named
// configuration rather than literals so boundary values can be probed in
// tests, but interoperability requires the defaults.
type Thresholds struct {
	// LossDelta: target loss rate exceeding the reference by more than
	// this marks the target side as degraded.
	LossDelta float64
	// CleanReferenceLoss: a reference loss rate below this counts as a
	// clean reference path.
	CleanReferenceLoss float64
	// RoutingDelta: a loss difference below this (reference worse than
	// target) marks an asymmetric routing anomaly.
	RoutingDelta float64
	// AbsoluteLoss: with comparable loss rates, target loss above this
	// still marks a general network problem.
	AbsoluteLoss float64
	// LatencyDelta: a latency difference above this adds a
	// latency-specific finding.
	LatencyDelta float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		LossDelta:          3,
		CleanReferenceLoss: 1,
		RoutingDelta:       -1,
		AbsoluteLoss:       2,
		LatencyDelta:       20,
	}
}

type Engine struct {
	thresholds Thresholds
}

type Option func(*Engine)

func WithThresholds(t Thresholds) Option {
	return func(e *Engine) {
		e.thresholds = t
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Diagnose classifies where degradation originates given target and
// reference group statistics. Both inputs must carry at least one endpoint.
func (e *Engine) Diagnose(target, reference types.GroupStats) (types.Diagnosis, error) {
	if len(target.Endpoints) == 0 || len(reference.Endpoints) == 0 {
		return types.Diagnosis{}, ErrInsufficientData
	}

	t := e.thresholds
	lossDiff := target.AvgLossRate - reference.AvgLossRate
	latencyDiff := target.AvgLatency - reference.AvgLatency

	d := types.Diagnosis{
		Details: types.DiagnosisDetails{
			LossDiff:         lossDiff,
			LatencyDiff:      latencyDiff,
			TargetLoss:       target.AvgLossRate,
			ReferenceLoss:    reference.AvgLossRate,
			TargetLatency:    target.AvgLatency,
			ReferenceLatency: reference.AvgLatency,
		},
	}

	switch {
	case lossDiff > t.LossDelta:
		if reference.AvgLossRate < t.CleanReferenceLoss {
			// Reference is clean, so the degradation is isolated to
			// the target side.
			d.Source = types.SourceTargetInfrastructure
			d.Confidence = types.ConfidenceHigh
		} else {
			d.Source = types.SourceNetworkGeneral
			d.Confidence = types.ConfidenceMedium
		}
	case lossDiff < t.RoutingDelta:
		d.Source = types.SourceNetworkRouting
		d.Confidence = types.ConfidenceMedium
	default:
		if target.AvgLossRate > t.AbsoluteLoss {
			d.Source = types.SourceNetworkGeneral
			d.Confidence = types.ConfidenceHigh
		} else {
			d.Source = types.SourceNoSignificantIssue
			d.Confidence = types.ConfidenceHigh
		}
	}

	d.Recommendations = recommendationsFor(d.Source, d.Confidence)

	if latencyDiff > t.LatencyDelta {
		d.Recommendations = append(d.Recommendations,
			"The route to the target servers adds noticeable latency")
		// Only the clean outcome is demoted by a latency finding; an
		// active loss classification keeps precedence.
		if d.Source == types.SourceNoSignificantIssue {
			d.Source = types.SourceTargetLatency
		}
	}

	return d, nil
}

func recommendationsFor(source types.ProblemSource, confidence types.Confidence) []string {
	switch source {
	case types.SourceTargetInfrastructure:
		return []string{
			"The target servers themselves are most likely degraded",
			"Try a different target region",
			"Check the operator's official status page",
		}
	case types.SourceNetworkGeneral:
		if confidence == types.ConfidenceMedium {
			return []string{
				"A general network problem is likely",
				"Consider contacting your ISP",
			}
		}
		return []string{
			"Overall network quality is degraded",
			"Prefer a wired connection over Wi-Fi",
			"Check bandwidth usage by other devices on the network",
		}
	case types.SourceNetworkRouting:
		return []string{
			"A specific network route is likely degraded",
			"Consider testing through a VPN",
		}
	default:
		return []string{
			"Network quality is within the normal range",
		}
	}
}
