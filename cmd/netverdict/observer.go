package main

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/netverdict/netverdict/internal/progress"
	"github.com/netverdict/netverdict/pkg/types"
)

// consoleObserver renders per-probe progress and periodic live statistics.
// It only consumes what the core publishes; it never mutates core state.
type consoleObserver struct {
	logger *log.Logger
}

func newConsoleObserver(logger *log.Logger) *consoleObserver {
	return &consoleObserver{logger: logger}
}

func (o *consoleObserver) ObserveProbe(obs progress.Observation) {
	status := fmt.Sprintf("%.1fms", obs.Result.LatencyMs)
	if obs.Result.Lost {
		status = "LOSS"
	}
	o.logger.WithFields(log.Fields{
		"endpoint":  obs.Result.EndpointID,
		"status":    status,
		"progress":  fmt.Sprintf("%.1f%%", obs.Percent),
		"elapsed":   formatClock(obs.Elapsed),
		"remaining": formatClock(obs.Remaining),
	}).Info("probe")
}

func (o *consoleObserver) ObserveLiveStats(gs types.GroupStats, elapsed time.Duration) {
	o.logger.WithFields(log.Fields{
		"elapsed":   formatClock(elapsed),
		"loss":      fmt.Sprintf("%.1f%%", gs.AvgLossRate),
		"latency":   fmt.Sprintf("%.1fms", gs.AvgLatency),
		"endpoints": len(gs.Endpoints),
	}).Info("live stats")
}

// formatClock renders a duration as mm:ss.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
