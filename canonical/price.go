// ABOUTME: Localized price parsing and list-price derivation
// ABOUTME: Comma-decimal text with currency symbols in, numeric base-unit amounts out
package canonical

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var thousandsRe = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// ParsePrice parses localized price text ("1.299,95 €", "799,00€") into
// a numeric amount. Returns 0 when nothing parseable is present.
func ParsePrice(text string) float64 {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return 0
	}

	// "1.299,95": dots are thousand separators, comma is the decimal.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if thousandsRe.MatchString(s) {
		// "1.299" without a comma is a thousands group, not a decimal.
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// DeriveListPrice returns the list (pre-discount) price: the explicit
// strikethrough value when present, else ceil(current * markup).
func DeriveListPrice(current float64, strikeText string, markup float64) float64 {
	if strike := ParsePrice(strikeText); strike > 0 {
		return strike
	}
	if current <= 0 {
		return 0
	}
	return math.Ceil(current * markup)
}

// FormatPrice renders a price for the store wire format, which carries
// prices as strings. Whole amounts drop the decimals.
func FormatPrice(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
