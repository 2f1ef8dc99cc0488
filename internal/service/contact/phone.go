package contact

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultPhoneRegion = "US"

// NormalizePhone keeps a phone only when it carries a North American number:
// 10 digits, or 11 digits starting with 1. The original formatting is returned
// untouched; nil means the phone is unusable.
func NormalizePhone(raw *string) *string {
	if raw == nil {
		return nil
	}
	digits := digitsOnly(*raw)
	switch {
	case len(digits) == 10:
	case len(digits) == 11 && digits[0] == '1':
	default:
		return nil
	}
	out := *raw
	return &out
}

// CanonicalPhone renders a phone as E.164 for storage and CRM fields.
// It returns "" when the number does not parse as a valid US number.
func CanonicalPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
