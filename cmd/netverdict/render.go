package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/netverdict/netverdict/internal/groups"
	"github.com/netverdict/netverdict/internal/scheduler"
	"github.com/netverdict/netverdict/pkg/types"
)

func joinOut(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func renderSummary(w io.Writer, s scheduler.Summary) {
	fmt.Fprintf(w, "\nCampaign finished: %d probes in %s", s.Results, s.Elapsed.Round(0))
	if s.Cancelled {
		fmt.Fprint(w, " (interrupted)")
	}
	fmt.Fprintln(w)
}

// renderStats prints per-endpoint statistics as an aligned table. Latency
// columns show "-" for endpoints that never answered.
func renderStats(w io.Writer, perEndpoint map[string]types.EndpointStats) {
	ids := make([]string, 0, len(perEndpoint))
	for id := range perEndpoint {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENDPOINT\tSENT\tLOST\tLOSS\tAVG\tMIN\tMAX\tJITTER")
	for _, id := range ids {
		st := perEndpoint[id]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\t%s\t%s\t%s\t%s\n",
			groups.Address(id), st.TotalPackets, st.LostPackets, st.PacketLossRate,
			ms(st.AvgLatency), ms(st.MinLatency), ms(st.MaxLatency), ms(st.Jitter))
	}
	tw.Flush()
}

func renderDiagnosis(w io.Writer, d types.Diagnosis) {
	fmt.Fprintf(w, "\nDiagnosis: %s (confidence: %s)\n", sourceText(d.Source), d.Confidence)
	fmt.Fprintf(w, "  target:    %.1f%% loss, %.1fms latency\n", d.Details.TargetLoss, d.Details.TargetLatency)
	fmt.Fprintf(w, "  reference: %.1f%% loss, %.1fms latency\n", d.Details.ReferenceLoss, d.Details.ReferenceLatency)
	fmt.Fprintf(w, "  delta:     %+.1f%% loss, %+.1fms latency\n", d.Details.LossDiff, d.Details.LatencyDiff)
	if len(d.Recommendations) > 0 {
		fmt.Fprintln(w, "Recommendations:")
		for _, r := range d.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}

func sourceText(s types.ProblemSource) string {
	switch s {
	case types.SourceTargetInfrastructure:
		return "target infrastructure"
	case types.SourceNetworkGeneral:
		return "general network"
	case types.SourceNetworkRouting:
		return "network routing"
	case types.SourceTargetLatency:
		return "target latency"
	case types.SourceNoSignificantIssue:
		return "no significant issue"
	}
	return string(s)
}

func ms(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1fms", v)
}
