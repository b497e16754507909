package session

import (
	"testing"
	"time"

	"github.com/netverdict/netverdict/internal/groups"
	"github.com/netverdict/netverdict/pkg/types"
)

func sample(id string) types.ProbeResult {
	return types.NewSuccess(time.Unix(0, 0).UTC(), id, 10)
}

func TestAppendAndSnapshotAreIndependentLogs(t *testing.T) {
	s := New()

	s.Append(Target, sample("t1"))
	s.Append(Reference, sample("r1"))
	s.Append(Target, sample("t2"))

	if got := s.Len(Target); got != 2 {
		t.Fatalf("target len = %d, want 2", got)
	}
	if got := s.Len(Reference); got != 1 {
		t.Fatalf("reference len = %d, want 1", got)
	}

	snap := s.Snapshot(Target)
	snap[0].EndpointID = "mutated"
	if s.Snapshot(Target)[0].EndpointID != "t1" {
		t.Fatalf("snapshot must be a copy, session log was mutated")
	}
}

func TestReplaceIsWholesale(t *testing.T) {
	s := New()
	s.Append(Target, sample("old"))

	s.Replace(Target, []types.ProbeResult{sample("a"), sample("b")})

	snap := s.Snapshot(Target)
	if len(snap) != 2 || snap[0].EndpointID != "a" || snap[1].EndpointID != "b" {
		t.Fatalf("replace did not swap the log, got %+v", snap)
	}
}

func TestSetRegionRejectsUnknownLabel(t *testing.T) {
	s := New()
	if err := s.SetRegion("Atlantis"); err == nil {
		t.Fatalf("expected error for unknown region")
	}
	if s.Region() != groups.DefaultRegion {
		t.Fatalf("failed SetRegion must leave region unchanged")
	}

	if err := s.SetRegion("Singapore"); err != nil {
		t.Fatalf("SetRegion: %v", err)
	}
	if s.Region() != "Singapore" {
		t.Fatalf("region = %q, want Singapore", s.Region())
	}
}

func TestCampaignExclusivity(t *testing.T) {
	s := New()
	if err := s.BeginCampaign(); err != nil {
		t.Fatalf("BeginCampaign: %v", err)
	}
	if err := s.BeginCampaign(); err != ErrCampaignActive {
		t.Fatalf("expected ErrCampaignActive, got %v", err)
	}
	s.EndCampaign()
	if err := s.BeginCampaign(); err != nil {
		t.Fatalf("BeginCampaign after EndCampaign: %v", err)
	}
}
