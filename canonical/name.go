// ABOUTME: Display-name normalization for scraped offers
// ABOUTME: Locale-aware casing, duplicate-token collapse and sub-brand prefix correction
package canonical

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	digitRe = regexp.MustCompile(`[0-9]`)

	titleCaser = cases.Title(language.Spanish)
)

// brandRule rewrites a model line that starts with a known sub-brand
// token to carry its parent brand. prefixOnly rules match the start of
// the first token ("iq" matches "iQ90"); others need the whole token.
type brandRule struct {
	token      string
	prefixOnly bool
	parent     string
}

// The sub-brand table is deliberately a static constant; see DESIGN.md.
var brandRules = []brandRule{
	{token: "redmi", parent: "Xiaomi"},
	{token: "poco", parent: "Xiaomi"},
	{token: "iq", prefixOnly: true, parent: "Vivo"},
	{token: "galaxy", parent: "Samsung"},
	{token: "pixel", parent: "Google"},
}

// NormalizeName turns raw scraped text into the canonical display name
// and derives the brand (the leading token after correction).
func NormalizeName(raw string) (name, brand string) {
	clean := html.UnescapeString(raw)
	clean = tagRe.ReplaceAllString(clean, " ")

	tokens := strings.Fields(clean)
	if len(tokens) == 0 {
		return "", ""
	}

	for i, tok := range tokens {
		tokens[i] = caseToken(tok)
	}

	// Collapse an accidentally repeated leading token ("Xiaomi Xiaomi 17").
	if len(tokens) >= 2 && strings.EqualFold(tokens[0], tokens[1]) {
		tokens = tokens[1:]
	}

	tokens = applyBrandRules(tokens)
	return strings.Join(tokens, " "), tokens[0]
}

// caseToken title-cases a word; tokens carrying digits ("5G", "256GB",
// "iQ90") are upper-cased instead.
func caseToken(tok string) string {
	if digitRe.MatchString(tok) {
		return strings.ToUpper(tok)
	}
	return titleCaser.String(strings.ToLower(tok))
}

func applyBrandRules(tokens []string) []string {
	first := strings.ToLower(tokens[0])
	for _, rule := range brandRules {
		matched := first == rule.token
		if rule.prefixOnly {
			// Prefix rules need a model number right after the prefix so
			// that "iq" does not swallow unrelated words.
			rest := strings.TrimPrefix(first, rule.token)
			matched = first != rest && rest != "" && digitRe.MatchString(rest[:1])
		}
		if matched {
			return append([]string{rule.parent}, tokens...)
		}
		// Already prefixed with the parent brand: nothing to do.
		if strings.EqualFold(tokens[0], rule.parent) {
			return tokens
		}
	}
	return tokens
}
