package model

// DiscoveryRequest is posted by travellers who have not picked a destination
type DiscoveryRequest struct {
	Vibe    string      `json:"vibe"`
	Pace    string      `json:"pace"`
	Focus   string      `json:"focus"`
	Season  string      `json:"season"`
	Budget  *FlexNumber `json:"budget,omitempty"`
	NumDays *FlexNumber `json:"numDays,omitempty"`
}

// Recommendation is one suggested destination
type Recommendation struct {
	Destination string  `json:"destination"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
}

// DiscoveryResponse lists recommendations, best first
type DiscoveryResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Fallback        bool             `json:"fallback,omitempty"`
}
