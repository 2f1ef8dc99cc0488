package entity

import "strings"

// Hotness is the priority tier derived from a lead's score.
type Hotness string

const (
	HotnessPremium Hotness = "premium"
	HotnessHot     Hotness = "hot"
	HotnessWarm    Hotness = "warm"
	HotnessCool    Hotness = "cool"
)

// Hotnesses lists every tier from hottest to coolest.
func Hotnesses() []Hotness {
	return []Hotness{HotnessPremium, HotnessHot, HotnessWarm, HotnessCool}
}

// Label is the capitalised form used on the CRM board.
func (h Hotness) Label() string {
	if h == "" {
		return ""
	}
	return strings.ToUpper(string(h[:1])) + string(h[1:])
}

// Lead is a validated, deduplicated and scored business record.
type Lead struct {
	Fragment
	PhoneE164 string         `json:"phoneE164,omitempty"`
	Verdict   WebsiteVerdict `json:"websiteStatus"`
	Score     int            `json:"score"`
	Hotness   Hotness        `json:"hotness"`
}

// HasPhone reports whether the lead kept a valid phone number.
func (l Lead) HasPhone() bool {
	return l.Phone != nil && *l.Phone != ""
}
