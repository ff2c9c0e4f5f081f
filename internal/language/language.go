package language

import (
	"strings"

	"golang.org/x/text/language"
)

// wordForms maps full language names and ISO 639-2 codes (including the
// bibliographic variants caption listings occasionally carry) to BCP 47
// primary subtags.
var wordForms = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
	"eng":        "en",
	"spa":        "es",
	"fra":        "fr",
	"fre":        "fr",
	"deu":        "de",
	"ger":        "de",
	"ita":        "it",
	"por":        "pt",
	"jpn":        "ja",
	"kor":        "ko",
	"zho":        "zh",
	"chi":        "zh",
	"rus":        "ru",
	"ara":        "ar",
	"hin":        "hi",
	"nld":        "nl",
	"dut":        "nl",
	"pol":        "pl",
	"swe":        "sv",
	"dan":        "da",
	"nor":        "no",
	"fin":        "fi",
}

// Normalize canonicalizes a caption language tag to its lowercase BCP 47
// form. Full names and three-letter codes map to their primary subtag;
// unrecognized input passes through lowercased so callers can still match
// it verbatim.
func Normalize(code string) string {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return ""
	}
	if mapped, ok := wordForms[trimmed]; ok {
		return mapped
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	return strings.ToLower(tag.String())
}

// NormalizeList deduplicates and normalizes a list of language tags,
// preserving order.
func NormalizeList(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		canonical := Normalize(tag)
		if canonical == "" {
			continue
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		normalized = append(normalized, canonical)
	}
	return normalized
}
