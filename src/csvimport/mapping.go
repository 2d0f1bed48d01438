package csvimport

import (
	"regexp"
	"strings"

	"github.com/lingesh369/tradelens/backend/src/models"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeHeader lower-cases s and collapses every run of non-alphanumeric
// characters to a single underscore, trimming leading/trailing underscores.
// "Open Price (USD)" and "open_price__usd" normalize identically.
func normalizeHeader(s string) string {
	s = strings.ToLower(s)
	s = nonAlnumRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SmartMappingDefaults proposes a column mapping for the given CSV headers
// without user input. For each canonical field, in claim-priority order, four
// matching layers run against the not-yet-claimed headers, each strictly
// more permissive than the last:
//
//  1. exact: normalized header equals a synonym (synonym order wins)
//  2. contains: header contains a synonym as a substring
//  3. reverse contains: header is itself a substring of a synonym
//  4. token overlap: header and synonym share an underscore token, or one
//     token contains the other
//
// A field with no match at any layer is left unmapped; required-field
// enforcement is the caller's concern. The result is deterministic: it is a
// pure function of the header list.
func SmartMappingDefaults(headers []string) models.ColumnMapping {
	mapping := make(models.ColumnMapping)
	claimed := make(map[string]bool, len(headers))

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	for _, key := range mappingPriority {
		field := fieldsByKey[key]
		if header := matchField(field, headers, normalized, claimed); header != "" {
			mapping[key] = header
			claimed[header] = true
		}
	}

	applySinglePriceFallback(mapping, headers, normalized, claimed)
	return mapping
}

func matchField(field Field, headers, normalized []string, claimed map[string]bool) string {
	synonyms := make([]string, len(field.Synonyms))
	for i, s := range field.Synonyms {
		synonyms[i] = normalizeHeader(s)
	}

	// Layer 1: exact match, synonym list order taking priority.
	for _, syn := range synonyms {
		for i, h := range headers {
			if !claimed[h] && normalized[i] == syn {
				return h
			}
		}
	}

	// Layer 2: header contains synonym.
	for _, syn := range synonyms {
		for i, h := range headers {
			if !claimed[h] && strings.Contains(normalized[i], syn) {
				return h
			}
		}
	}

	// Layer 3: header is a substring of a synonym.
	for _, syn := range synonyms {
		for i, h := range headers {
			if !claimed[h] && normalized[i] != "" && strings.Contains(syn, normalized[i]) {
				return h
			}
		}
	}

	// Layer 4: token overlap.
	for _, syn := range synonyms {
		synTokens := strings.Split(syn, "_")
		for i, h := range headers {
			if claimed[h] {
				continue
			}
			if tokensOverlap(strings.Split(normalized[i], "_"), synTokens) {
				return h
			}
		}
	}

	return ""
}

func tokensOverlap(headerTokens, synTokens []string) bool {
	for _, ht := range headerTokens {
		if ht == "" {
			continue
		}
		for _, st := range synTokens {
			if st == "" {
				continue
			}
			if ht == st || strings.Contains(ht, st) || strings.Contains(st, ht) {
				return true
			}
		}
	}
	return false
}

// applySinglePriceFallback maps a lone price-like header to entry_price when
// neither price field matched. A single price column implies the trades are
// still open, so only an entry price exists.
func applySinglePriceFallback(mapping models.ColumnMapping, headers, normalized []string, claimed map[string]bool) {
	if mapping["entry_price"] != "" || mapping["exit_price"] != "" {
		return
	}
	var candidates []string
	for i, h := range headers {
		if !claimed[h] && strings.Contains(normalized[i], "price") {
			candidates = append(candidates, h)
		}
	}
	if len(candidates) == 1 {
		mapping["entry_price"] = candidates[0]
		claimed[candidates[0]] = true
	}
}
