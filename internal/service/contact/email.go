package contact

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var (
	emailToken  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@(?:[A-Za-z0-9\-]+\.)+[A-Za-z]{2,}`)
	idnaProfile = idna.Lookup
)

// placeholderEmailDomains are template and error-tracking addresses that show up
// in scraped markup but never reach a real person.
var placeholderEmailDomains = []string{
	"example.com",
	"example.org",
	"example.net",
	"domain.com",
	"email.com",
	"yourdomain.com",
	"sentry.io",
	"sentry.wixpress.com",
}

// ExtractEmail returns the first usable email address found in text, lower-cased,
// or "" when there is none.
func ExtractEmail(text string) string {
	for _, match := range emailToken.FindAllString(text, -1) {
		email := strings.ToLower(match)
		at := strings.LastIndexByte(email, '@')
		domain := email[at+1:]
		if isPlaceholderDomain(domain) || !isDomainValid(domain) {
			continue
		}
		if ascii, err := idnaProfile.ToASCII(domain); err != nil || ascii == "" {
			continue
		}
		return email
	}
	return ""
}

// NormalizeEmail applies ExtractEmail to an optional field.
func NormalizeEmail(raw *string) *string {
	if raw == nil {
		return nil
	}
	email := ExtractEmail(*raw)
	if email == "" {
		return nil
	}
	return &email
}

func isPlaceholderDomain(domain string) bool {
	for _, p := range placeholderEmailDomains {
		if domain == p || strings.HasSuffix(domain, "."+p) {
			return true
		}
	}
	return false
}

func isDomainValid(domain string) bool {
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
