// ABOUTME: Memory-spec (RAM/storage) extraction from offer text
// ABOUTME: Ordered GB/TB token scan with vendor-phrasing fallbacks
package canonical

import (
	"regexp"
	"strings"
)

var (
	// Primary: bare capacity tokens in order of appearance.
	capacityRe = regexp.MustCompile(`(?i)(\d+)\s*(GB|TB)`)

	// Fallbacks for vendor-specific phrasing.
	plusPairRe = regexp.MustCompile(`(?i)(\d+)\s*(?:GB)?\s*\+\s*(\d+)\s*(GB|TB)`)
	ramAdjRe   = regexp.MustCompile(`(?i)(\d+)\s*GB\s*(?:de\s+)?RAM|RAM\s*[:\s]\s*(\d+)\s*GB`)
	dePhraseRe = regexp.MustCompile(`(?i)\bde\s+(\d+)\s*(GB|TB)`)
)

// ExtractMemory locates the RAM and storage capacities in free text.
// The first bare GB/TB token is RAM, the second is storage; fallback
// patterns cover "+"-joined pairs, RAM-keyword adjacency and the
// "de N GB" capacity phrasing. Both fields are mandatory.
func ExtractMemory(text string) (ram, storage string, ok bool) {
	matches := capacityRe.FindAllStringSubmatch(text, -1)
	if len(matches) >= 2 {
		return formatCapacity(matches[0][1], matches[0][2]),
			formatCapacity(matches[1][1], matches[1][2]), true
	}

	if m := plusPairRe.FindStringSubmatch(text); m != nil {
		return formatCapacity(m[1], "GB"), formatCapacity(m[2], m[3]), true
	}

	if m := ramAdjRe.FindStringSubmatch(text); m != nil {
		n := m[1]
		if n == "" {
			n = m[2]
		}
		ram = formatCapacity(n, "GB")

		if d := dePhraseRe.FindStringSubmatch(text); d != nil {
			return ram, formatCapacity(d[1], d[2]), true
		}
		// A single remaining bare token can still be the storage.
		for _, c := range matches {
			candidate := formatCapacity(c[1], c[2])
			if candidate != ram {
				return ram, candidate, true
			}
		}
	}

	return "", "", false
}

// NormalizeCapacity canonicalizes a scraped capacity field ("12 gb",
// "1tb") into the stored form ("12GB", "1TB").
func NormalizeCapacity(raw string) string {
	m := capacityRe.FindStringSubmatch(raw)
	if m == nil {
		return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	}
	return formatCapacity(m[1], m[2])
}

func formatCapacity(n, unit string) string {
	return n + strings.ToUpper(unit)
}
