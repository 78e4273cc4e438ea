package services

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Trailing "<int> <int>" pair left over from internal catalog numbering.
	catalogPairPattern = regexp.MustCompile(`\s+\d+\s+\d+$`)
	// Trailing " - 025/185" style set fraction.
	setFractionPattern = regexp.MustCompile(`\s*-\s*\d+/\d+$`)
	// Leading "Swsh12:" style set code on set names.
	setCodePrefixPattern = regexp.MustCompile(`(?i)^[a-z]+\d*:\s*`)
	// Leading PSA variant code ("Fa/Lugia V"). Closed set of label codes.
	psaVariantPrefixPattern = regexp.MustCompile(`(?i)^(fa|sar|sr|ar|sir|ir|ur|chr|csr|tg|gg|rr|pr|hr)/`)
)

// variantSuffixes are known promotional/variant suffixes stripped from
// card names, most specific first. Order matters: a generic suffix that
// shares a tail word with a more specific one ("Rainbow Rare" vs "Shiny
// Rainbow Rare") must come after it or it strips half a variant name.
var variantSuffixes = []string{
	"Shiny Rainbow Rare",
	"Rainbow Rare",
	"Shiny Secret Rare",
	"Secret Rare",
	"Special Illustration Rare",
	"Illustration Rare",
	"Hyper Rare",
	"Ultra Rare",
	"Full Art",
	"Alt Art",
	"Reverse Holo",
}

// ToTitleCase lower-cases the input and upper-cases the first letter of
// every whitespace-delimited token. ASCII-level casing only; returns ""
// for empty input.
func ToTitleCase(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	startOfWord := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			startOfWord = true
			b.WriteRune(r)
			continue
		}
		if startOfWord {
			b.WriteRune(unicode.ToUpper(unicode.ToLower(r)))
			startOfWord = false
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// CleanCardName strips catalog-numbering artifacts and known variant
// suffixes from a card name. Suffixes are stripped repeatedly until the
// name is stable, so the function is idempotent even for stacked
// variants. Empty input returns "".
func CleanCardName(s string) string {
	if s == "" {
		return ""
	}
	// Strip until stable: removing a variant suffix can expose a
	// numbering artifact underneath it (and vice versa), and idempotence
	// is part of the contract.
	name := strings.TrimSpace(s)
	for {
		prev := name
		name = catalogPairPattern.ReplaceAllString(name, "")
		name = setFractionPattern.ReplaceAllString(name, "")
		name = stripVariantSuffix(strings.TrimSpace(name))
		if name == prev {
			return name
		}
	}
}

func stripVariantSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, suffix := range variantSuffixes {
		sl := strings.ToLower(suffix)
		if lower == sl {
			// A bare variant token is not a card name; leave it alone.
			return name
		}
		if strings.HasSuffix(lower, " "+sl) {
			return strings.TrimSpace(name[:len(name)-len(suffix)-1])
		}
	}
	return name
}

// CleanSetName strips a leading set-code prefix ("Swsh12: Silver
// Tempest" -> "Silver Tempest"). Empty input returns "".
func CleanSetName(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(setCodePrefixPattern.ReplaceAllString(strings.TrimSpace(s), ""))
}

// CleanPSACardName strips a leading grading-label variant code followed
// by a slash ("Fa/Lugia V" -> "Lugia V"). No-op when the prefix is
// absent; empty input returns "".
func CleanPSACardName(s string) string {
	if s == "" {
		return ""
	}
	return psaVariantPrefixPattern.ReplaceAllString(strings.TrimSpace(s), "")
}
