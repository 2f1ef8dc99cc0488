package entity

import "strings"

// WebsiteStatus is the qualitative verdict on a business website.
type WebsiteStatus string

const (
	WebsiteNone        WebsiteStatus = "none"
	WebsiteBroken      WebsiteStatus = "broken"
	WebsitePlaceholder WebsiteStatus = "placeholder"
	WebsiteOutdated    WebsiteStatus = "outdated"
	WebsiteActive      WebsiteStatus = "active"
)

// WebsiteStatuses lists every verdict status in opportunity order.
func WebsiteStatuses() []WebsiteStatus {
	return []WebsiteStatus{WebsiteNone, WebsiteBroken, WebsitePlaceholder, WebsiteOutdated, WebsiteActive}
}

// Label is the capitalised form used on the CRM board.
func (s WebsiteStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// WebsiteVerdict is the classifier's judgment of a website. It is computed once per
// fragment and passed around by value.
type WebsiteVerdict struct {
	Status           WebsiteStatus `json:"status"`
	Reason           string        `json:"reason,omitempty"`
	MobileResponsive *bool         `json:"mobileResponsive,omitempty"`
	HTTPStatus       int           `json:"httpStatus"`
	URL              string        `json:"url,omitempty"`
}

// NoWebsite is the verdict for fragments without a website.
func NoWebsite() WebsiteVerdict {
	return WebsiteVerdict{Status: WebsiteNone}
}
