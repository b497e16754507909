package groups

import "testing"

func TestRegionLookup(t *testing.T) {
	g, err := Region("Tokyo (Japan)")
	if err != nil {
		t.Fatalf("Region: %v", err)
	}
	if len(g.Endpoints) != 2 || g.Endpoints[0] != "52.77.252.242" {
		t.Fatalf("unexpected endpoints: %v", g.Endpoints)
	}

	if _, err := Region("Atlantis"); err == nil {
		t.Fatalf("expected error for unknown region")
	}
}

func TestServiceLookup(t *testing.T) {
	g, err := Service("Cloudflare")
	if err != nil {
		t.Fatalf("Service: %v", err)
	}
	if g.Endpoints[0] != "1.1.1.1" {
		t.Fatalf("unexpected endpoints: %v", g.Endpoints)
	}
}

func TestServiceSetNamespacesEveryEndpoint(t *testing.T) {
	g, err := ServiceSet("Cloudflare")
	if err != nil {
		t.Fatalf("ServiceSet: %v", err)
	}
	want := []string{"Cloudflare|1.1.1.1", "Cloudflare|1.0.0.1"}
	if len(g.Endpoints) != len(want) {
		t.Fatalf("unexpected endpoints: %v", g.Endpoints)
	}
	for i, e := range want {
		if g.Endpoints[i] != e {
			t.Fatalf("endpoint %d = %q, want %q", i, g.Endpoints[i], e)
		}
	}

	if _, err := ServiceSet("MySpace"); err == nil {
		t.Fatalf("expected error for unknown service")
	}
}

func TestReferenceSetUsesOneNamespacedEndpointPerService(t *testing.T) {
	g := ReferenceSet()
	if len(g.Endpoints) != len(Services()) {
		t.Fatalf("expected one endpoint per service, got %v", g.Endpoints)
	}
	if g.Endpoints[0] != "Discord|162.159.130.232" {
		t.Fatalf("first reference endpoint = %q", g.Endpoints[0])
	}
}

func TestAddress(t *testing.T) {
	if got := Address("Discord|162.159.130.232"); got != "162.159.130.232" {
		t.Fatalf("Address = %q", got)
	}
	if got := Address("8.8.8.8"); got != "8.8.8.8" {
		t.Fatalf("Address without namespace = %q", got)
	}
}

func TestInferRegionFirstMatchWins(t *testing.T) {
	region, ok := InferRegion([]string{"1.2.3.4", "13.230.149.157"})
	if !ok || region != "Tokyo (Japan)" {
		t.Fatalf("InferRegion = %q, %v", region, ok)
	}

	// Endpoints from two regions: table order decides.
	region, ok = InferRegion([]string{"43.201.103.1", "52.77.252.242"})
	if !ok || region != "Tokyo (Japan)" {
		t.Fatalf("InferRegion with two candidates = %q, want table-first Tokyo", region)
	}

	if _, ok := InferRegion([]string{"192.0.2.1"}); ok {
		t.Fatalf("expected no inference for unknown addresses")
	}
}
