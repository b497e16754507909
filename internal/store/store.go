// Package store serializes the raw probe log and derived statistics to
// durable, re-importable artifacts: a tabular CSV with one row per probe,
// and a JSON statistics document with run metadata. CSV import reconstructs
// the probe sequence losslessly; the statistics document is lossy with
// respect to individual probes and restores metadata only.
package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/netverdict/netverdict/internal/groups"
	"github.com/netverdict/netverdict/internal/session"
	"github.com/netverdict/netverdict/internal/stats"
	"github.com/netverdict/netverdict/pkg/types"
)

var (
	// ErrNotFound is returned when an import source does not exist.
	ErrNotFound = errors.New("store: artifact not found")
	// ErrMalformed is returned when an import source exists but cannot be
	// parsed. The session is left unmodified.
	ErrMalformed = errors.New("store: malformed artifact")
)

// Mode selects how imported results enter a session log. Replacing is
// destructive and must be an explicit caller choice.
type Mode int

const (
	ModeAppend Mode = iota
	ModeReplace
)

const lossSentinel = "N/A"

var csvHeader = []string{"Timestamp", "Server", "Latency(ms)", "Packet_Loss", "Timeout"}

// TestInfo is the run metadata carried by the statistics document.
type TestInfo struct {
	Region          string    `json:"region"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// StatsDocument is the structured statistics artifact.
type StatsDocument struct {
	TestInfo    TestInfo                       `json:"test_info"`
	ServerStats map[string]types.EndpointStats `json:"server_stats"`
}

// ExportCSV writes the raw result log, one row per probe. The latency cell
// carries the "N/A" sentinel for lost probes; booleans are literal
// True/False text.
func ExportCSV(path string, results []types.ProbeResult) error {
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create csv %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range results {
		latency := lossSentinel
		if !r.Lost {
			latency = strconv.FormatFloat(r.LatencyMs, 'g', -1, 64)
		}
		row := []string{
			r.Timestamp.Format(time.RFC3339Nano),
			r.EndpointID,
			latency,
			formatBool(r.Lost),
			formatBool(r.Timeout),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv %q: %w", path, err)
	}
	return nil
}

// ImportCSV reconstructs the probe sequence from a tabular export. Parsing
// is all-or-nothing: any bad row fails the whole import.
func ImportCSV(path string) ([]types.ProbeResult, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open csv %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: missing header", ErrMalformed, path)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("%w: %s: unexpected header %v", ErrMalformed, path, header)
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("%w: %s: unexpected header %v", ErrMalformed, path, header)
		}
	}

	var results []types.ProbeResult
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformed, path, line, err)
		}
		result, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformed, path, line, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// ImportCSVIntoSession imports a tabular artifact into one session log.
// The session is untouched on any failure. After a successful target-log
// import the region label is inferred from the membership table, first
// match winning.
func ImportCSVIntoSession(sess *session.Session, log session.Log, path string, mode Mode) (int, error) {
	results, err := ImportCSV(path)
	if err != nil {
		return 0, err
	}

	switch mode {
	case ModeReplace:
		sess.Replace(log, results)
	default:
		sess.AppendAll(log, results)
	}

	if log == session.Target {
		ids := make([]string, 0, len(results))
		for _, r := range sess.Snapshot(log) {
			ids = append(ids, r.EndpointID)
		}
		if region, ok := groups.InferRegion(ids); ok {
			_ = sess.SetRegion(region)
		}
	}
	return len(results), nil
}

// ExportStats writes the structured statistics document.
func ExportStats(path string, doc StatsDocument) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stats document: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), payload, 0o644); err != nil {
		return fmt.Errorf("write stats document %q: %w", path, err)
	}
	return nil
}

// ImportStats reads a statistics document. Statistics are lossy with
// respect to individual probes, so no result log can be reconstructed from
// them; callers get the document for display and metadata restoration only.
func ImportStats(path string) (StatsDocument, error) {
	var doc StatsDocument
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return doc, fmt.Errorf("read stats document %q: %w", path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return doc, nil
}

// ImportStatsIntoSession restores run metadata (region, start time) from a
// statistics document. The session's result logs are never touched.
func ImportStatsIntoSession(sess *session.Session, path string) (StatsDocument, error) {
	doc, err := ImportStats(path)
	if err != nil {
		return doc, err
	}
	if doc.TestInfo.Region != "" {
		if err := sess.SetRegion(doc.TestInfo.Region); err != nil {
			return doc, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
	}
	if !doc.TestInfo.StartTime.IsZero() {
		sess.SetStartTime(doc.TestInfo.StartTime)
	}
	return doc, nil
}

// Export writes both artifacts for the session's target log under dir,
// returning the CSV and statistics paths.
func Export(sess *session.Session, dir, stem string, now time.Time) (string, string, error) {
	results := sess.Snapshot(session.Target)
	if len(results) == 0 {
		return "", "", errors.New("store: no results to export")
	}
	if stem == "" {
		stem = DefaultStem(now)
	}

	csvPath := filepath.Join(dir, stem+".csv")
	statsPath := filepath.Join(dir, stem+"_stats.json")

	if err := ExportCSV(csvPath, results); err != nil {
		return "", "", err
	}

	doc := StatsDocument{
		TestInfo: TestInfo{
			Region:    sess.Region(),
			StartTime: sess.StartTime(),
		},
		ServerStats: stats.Aggregate(results),
	}
	if !sess.StartTime().IsZero() {
		doc.TestInfo.DurationMinutes = now.Sub(sess.StartTime()).Minutes()
	}
	if err := ExportStats(statsPath, doc); err != nil {
		return "", "", err
	}
	return csvPath, statsPath, nil
}

// DefaultStem names export artifacts after the capture moment.
func DefaultStem(now time.Time) string {
	return "packetloss_" + now.Format("20060102_150405")
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func parseRow(row []string) (types.ProbeResult, error) {
	var zero types.ProbeResult
	if len(row) != len(csvHeader) {
		return zero, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(row))
	}

	ts, err := time.Parse(time.RFC3339Nano, row[0])
	if err != nil {
		return zero, fmt.Errorf("bad timestamp %q: %v", row[0], err)
	}
	lost, err := parseBool(row[3])
	if err != nil {
		return zero, err
	}
	timeout, err := parseBool(row[4])
	if err != nil {
		return zero, err
	}

	r := types.ProbeResult{
		Timestamp:  ts,
		EndpointID: row[1],
		Lost:       lost,
		Timeout:    timeout,
	}
	if row[2] != lossSentinel {
		latency, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return zero, fmt.Errorf("bad latency %q: %v", row[2], err)
		}
		if lost {
			return zero, fmt.Errorf("lost probe carries latency %q", row[2])
		}
		r.LatencyMs = latency
	} else if !lost {
		return zero, fmt.Errorf("successful probe missing latency")
	}
	return r, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("bad boolean %q", s)
	}
}
