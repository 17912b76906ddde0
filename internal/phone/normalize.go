package phone

import (
	"errors"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

var ErrEmptyPhone = errors.New("phone number cannot be empty")

// Key returns the correlation key for a captured phone number: its E.164 form
// when it parses for the region, otherwise the bare digits (prefixed with "+"
// when the input was). Formatting differences such as spaces, dashes or a
// missing country prefix collapse onto the same key.
func Key(raw, defaultRegion string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyPhone
	}

	region := strings.ToUpper(defaultRegion)
	if region == "" {
		region = "IN"
	}

	parsed, err := phonenumbers.Parse(raw, region)
	if err == nil && phonenumbers.IsPossibleNumber(parsed) {
		return phonenumbers.Format(parsed, phonenumbers.E164), nil
	}

	digits := onlyDigits(raw)
	if digits == "" {
		return "", ErrEmptyPhone
	}
	if strings.HasPrefix(raw, "+") {
		return "+" + digits, nil
	}
	return digits, nil
}

// countryNames maps country names commonly typed into the intake forms to
// their ISO 3166 alpha-2 region.
var countryNames = map[string]string{
	"india":                    "IN",
	"united kingdom":           "GB",
	"uk":                       "GB",
	"great britain":            "GB",
	"england":                  "GB",
	"united states":            "US",
	"united states of america": "US",
	"usa":                      "US",
	"canada":                   "CA",
	"australia":                "AU",
	"united arab emirates":     "AE",
	"uae":                      "AE",
	"saudi arabia":             "SA",
	"oman":                     "OM",
	"qatar":                    "QA",
	"kuwait":                   "KW",
	"bangladesh":               "BD",
	"nepal":                    "NP",
	"sri lanka":                "LK",
	"nigeria":                  "NG",
	"kenya":                    "KE",
	"tanzania":                 "TZ",
	"ethiopia":                 "ET",
	"iraq":                     "IQ",
	"afghanistan":              "AF",
	"uzbekistan":               "UZ",
	"maldives":                 "MV",
	"germany":                  "DE",
	"france":                   "FR",
}

// Region picks the region used to parse national-format numbers. country may
// be an ISO 3166 alpha-2 code or a common country name; anything
// unrecognised falls back to fallback.
func Region(country, fallback string) string {
	c := strings.TrimSpace(country)
	if c == "" {
		return fallback
	}
	if code, ok := countryNames[strings.ToLower(c)]; ok {
		return code
	}
	upper := strings.ToUpper(c)
	if len(upper) == 2 && phonenumbers.GetCountryCodeForRegion(upper) != 0 {
		return upper
	}
	return fallback
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
