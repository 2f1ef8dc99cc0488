package dto

// ScanRequest optionally overrides saved settings before a scan starts.
// Overrides are written back to the settings file.
type ScanRequest struct {
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Niche    string `json:"niche,omitempty"`
	MaxLeads int    `json:"maxLeads,omitempty"`
	// Days is the number of auto mode cycles.
	Days int `json:"days,omitempty"`
}

// HasOverrides reports whether any run setting is set.
func (r ScanRequest) HasOverrides() bool {
	return r.City != "" || r.State != "" || r.Niche != "" || r.MaxLeads > 0
}

// IntentRequest carries a free-form search request.
type IntentRequest struct {
	Text string `json:"text"`
	// Apply saves the parsed settings.
	Apply bool `json:"apply,omitempty"`
}

// ListQuery holds the optional limit of list endpoints.
type ListQuery struct {
	Limit int `query:"limit"`
}
