package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
)

// Input length limits
const (
	MaxNameLength = 255
	MaxURLLength  = 2048
)

// DefaultPhoneRegion is used when a number has no leading +.
const DefaultPhoneRegion = "US"

// NormalizePhone parses a phone number written in any common format and
// returns it in E.164 form ("+14155550100"). region is the ISO 3166 country
// assumed for numbers without a country code.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultPhoneRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("invalid phone number %q: %w", raw, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q for region %s", raw, phonenumbers.GetRegionCodeForNumber(num))
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// ValidateName validates an optional display name or username length.
func ValidateName(name string) error {
	if length := utf8.RuneCountInString(name); length > MaxNameLength {
		return fmt.Errorf("name exceeds maximum length of %d characters (got %d)", MaxNameLength, length)
	}
	return nil
}
