package client

import "strings"

// TargetsResponse represents the response from /netflix/speedtest/v2.
type TargetsResponse struct {
	Client  ClientInfo `json:"client"`
	Targets []Target   `json:"targets"`
}

// ClientInfo describes the caller as seen by the speed-test service.
type ClientInfo struct {
	IP       string   `json:"ip"`
	ASN      string   `json:"asn"`
	ISP      string   `json:"isp"`
	Location Location `json:"location"`
}

// Target is a single test server that payloads are transferred to and from.
type Target struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	Location Location `json:"location"`
}

// Location is a coarse geographic position.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// String renders the location as "City, CC", omitting missing parts.
func (l Location) String() string {
	parts := make([]string, 0, 2)
	if l.City != "" {
		parts = append(parts, l.City)
	}
	if l.Country != "" {
		parts = append(parts, l.Country)
	}
	return strings.Join(parts, ", ")
}

// ServerLocations returns the distinct target locations in response order.
func (r *TargetsResponse) ServerLocations() []string {
	seen := make(map[string]bool, len(r.Targets))
	var out []string
	for _, t := range r.Targets {
		loc := t.Location.String()
		if loc == "" || seen[loc] {
			continue
		}
		seen[loc] = true
		out = append(out, loc)
	}
	return out
}
