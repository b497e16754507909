// Package session owns the process-wide measurement state: the selected
// target region, the raw result logs for the target and reference groups,
// and the campaign start time. The session is passed explicitly into the
// scheduler, aggregator and store rather than living as ambient state, so
// independent sessions can coexist in tests.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/netverdict/netverdict/internal/groups"
	"github.com/netverdict/netverdict/pkg/types"
)

// Log selects one of the two result logs a session keeps.
type Log int

const (
	Target Log = iota
	Reference
)

// ErrCampaignActive is returned when a second campaign is started against a
// session that is already being probed.
var ErrCampaignActive = errors.New("session: a probing campaign is already active")

type Session struct {
	id uuid.UUID

	mu               sync.Mutex
	region           string
	startTime        time.Time
	results          []types.ProbeResult
	referenceResults []types.ProbeResult
	campaignActive   bool
}

func New() *Session {
	return &Session{
		id:     uuid.New(),
		region: groups.DefaultRegion,
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) Region() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

// SetRegion selects the target group. The label must come from the fixed
// region table.
func (s *Session) SetRegion(label string) error {
	if _, err := groups.Region(label); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.region = label
	return nil
}

func (s *Session) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

func (s *Session) SetStartTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = t
}

// BeginCampaign marks the session as actively probed. Only one campaign may
// run against a session at a time.
func (s *Session) BeginCampaign() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.campaignActive {
		return ErrCampaignActive
	}
	s.campaignActive = true
	return nil
}

func (s *Session) EndCampaign() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaignActive = false
}

// Append records one completed probe. Appends are serialized, keeping the
// single-writer discipline over each log.
func (s *Session) Append(log Log, r types.ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch log {
	case Reference:
		s.referenceResults = append(s.referenceResults, r)
	default:
		s.results = append(s.results, r)
	}
}

// AppendAll appends a batch of results in one locked operation.
func (s *Session) AppendAll(log Log, results []types.ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch log {
	case Reference:
		s.referenceResults = append(s.referenceResults, results...)
	default:
		s.results = append(s.results, results...)
	}
}

// Replace swaps a log wholesale. Callers choose it explicitly; it is never
// the default import behavior.
func (s *Session) Replace(log Log, results []types.ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := append([]types.ProbeResult(nil), results...)
	switch log {
	case Reference:
		s.referenceResults = copied
	default:
		s.results = copied
	}
}

// Reset clears a log before a fresh campaign.
func (s *Session) Reset(log Log) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch log {
	case Reference:
		s.referenceResults = nil
	default:
		s.results = nil
	}
}

// Snapshot returns a copy of a log. The copy sees only fully-formed
// entries: it is taken under the same lock the appenders hold.
func (s *Session) Snapshot(log Log) []types.ProbeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch log {
	case Reference:
		return append([]types.ProbeResult(nil), s.referenceResults...)
	default:
		return append([]types.ProbeResult(nil), s.results...)
	}
}

func (s *Session) Len(log Log) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log == Reference {
		return len(s.referenceResults)
	}
	return len(s.results)
}
