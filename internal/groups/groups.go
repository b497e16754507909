// Package groups holds the fixed endpoint-group tables: the labelled
// game-server regions that can be probed as a target group, and the
// well-known public services used as the reference group.
package groups

import "fmt"

// Group is a named collection of endpoints probed together.
type Group struct {
	Label     string
	Endpoints []string
}

var regions = []Group{
	{Label: "Tokyo (Japan)", Endpoints: []string{"52.77.252.242", "13.230.149.157"}},
	{Label: "Seoul (Korea)", Endpoints: []string{"43.201.103.1", "13.124.145.30"}},
	{Label: "Sydney (Australia)", Endpoints: []string{"13.236.8.0", "3.104.90.0"}},
	{Label: "Singapore", Endpoints: []string{"18.143.118.0", "13.229.188.0"}},
	{Label: "Mumbai (India)", Endpoints: []string{"13.234.74.0", "3.109.44.0"}},
	{Label: "Hong Kong", Endpoints: []string{"18.162.190.0", "13.75.118.0"}},
	{Label: "Virginia (US East)", Endpoints: []string{"52.70.118.0", "3.208.28.0"}},
	{Label: "California (US West)", Endpoints: []string{"54.241.191.0", "13.57.254.0"}},
	{Label: "London (EU West)", Endpoints: []string{"18.130.91.0", "3.8.37.0"}},
	{Label: "Frankfurt (EU Central)", Endpoints: []string{"18.196.142.0", "3.122.224.0"}},
}

var services = []Group{
	{Label: "Discord", Endpoints: []string{"162.159.130.232", "162.159.135.232"}},
	{Label: "YouTube (Google)", Endpoints: []string{"8.8.8.8", "8.8.4.4"}},
	{Label: "Cloudflare", Endpoints: []string{"1.1.1.1", "1.0.0.1"}},
	{Label: "Amazon (AWS)", Endpoints: []string{"52.95.110.1", "54.230.0.1"}},
	{Label: "Microsoft", Endpoints: []string{"13.107.42.14", "40.76.4.15"}},
}

// DefaultRegion is the target group selected before any explicit choice.
const DefaultRegion = "Tokyo (Japan)"

// Regions returns the target-group table in its fixed order.
func Regions() []Group {
	return append([]Group(nil), regions...)
}

// Services returns the reference-group table in its fixed order.
func Services() []Group {
	return append([]Group(nil), services...)
}

// Region looks up one target group by label.
func Region(label string) (Group, error) {
	for _, g := range regions {
		if g.Label == label {
			return g, nil
		}
	}
	return Group{}, fmt.Errorf("unknown region %q", label)
}

// Service looks up one reference group by label.
func Service(label string) (Group, error) {
	for _, g := range services {
		if g.Label == label {
			return g, nil
		}
	}
	return Group{}, fmt.Errorf("unknown reference service %q", label)
}

// ReferenceSet returns one endpoint per reference service, in table order.
// Endpoint IDs are namespaced "<service>|<address>" so per-service results
// stay distinguishable in a shared log.
func ReferenceSet() Group {
	g := Group{Label: "reference"}
	for _, svc := range services {
		if len(svc.Endpoints) == 0 {
			continue
		}
		g.Endpoints = append(g.Endpoints, svc.Label+"|"+svc.Endpoints[0])
	}
	return g
}

// ServiceSet returns every endpoint of one reference service, namespaced
// like ReferenceSet, so a single-service baseline shares the log format of
// the full reference set.
func ServiceSet(label string) (Group, error) {
	svc, err := Service(label)
	if err != nil {
		return Group{}, err
	}
	g := Group{Label: svc.Label}
	for _, addr := range svc.Endpoints {
		g.Endpoints = append(g.Endpoints, svc.Label+"|"+addr)
	}
	return g, nil
}

// Address strips the optional "<label>|" namespace from an endpoint ID.
func Address(endpointID string) string {
	for i := 0; i < len(endpointID); i++ {
		if endpointID[i] == '|' {
			return endpointID[i+1:]
		}
	}
	return endpointID
}

// InferRegion tests the probed endpoint addresses against the region table
// and returns the first region owning any of them. Iteration order over the
// table is fixed, so the inference is deterministic.
func InferRegion(endpointIDs []string) (string, bool) {
	probed := make(map[string]struct{}, len(endpointIDs))
	for _, id := range endpointIDs {
		probed[Address(id)] = struct{}{}
	}
	for _, g := range regions {
		for _, addr := range g.Endpoints {
			if _, ok := probed[addr]; ok {
				return g.Label, true
			}
		}
	}
	return "", false
}
