package language

import (
	"sort"
	"strings"
)

// flagLanguages maps flag emoji to ISO 639-1 target language codes. Several
// flags intentionally share a code (for example 🇧🇷 and 🇵🇹 both map to "pt").
var flagLanguages = map[string]string{
	"🇻🇳": "vi", "🇨🇳": "zh", "🇯🇵": "ja", "🇰🇷": "ko", "🇹🇭": "th",
	"🇮🇩": "id", "🇵🇭": "tl", "🇲🇾": "ms", "🇸🇬": "en", "🇮🇳": "hi",
	"🇵🇰": "ur", "🇧🇩": "bn", "🇱🇰": "si", "🇲🇲": "my", "🇰🇭": "km",
	"🇱🇦": "lo", "🇹🇼": "zh", "🇭🇰": "zh", "🇲🇴": "zh",
	"🇬🇧": "en", "🇺🇸": "en", "🇫🇷": "fr", "🇩🇪": "de", "🇪🇸": "es",
	"🇮🇹": "it", "🇵🇹": "pt", "🇷🇺": "ru", "🇵🇱": "pl", "🇳🇱": "nl",
	"🇸🇪": "sv", "🇳🇴": "no", "🇩🇰": "da", "🇫🇮": "fi", "🇬🇷": "el",
	"🇹🇷": "tr", "🇨🇿": "cs", "🇭🇺": "hu", "🇷🇴": "ro", "🇧🇬": "bg",
	"🇭🇷": "hr", "🇸🇰": "sk", "🇺🇦": "uk", "🇧🇷": "pt", "🇲🇽": "es",
	"🇦🇷": "es", "🇨🇱": "es", "🇨🇴": "es", "🇵🇪": "es", "🇨🇦": "en",
	"🇸🇦": "ar", "🇦🇪": "ar", "🇮🇷": "fa", "🇮🇱": "he", "🇪🇬": "ar",
	"🇿🇦": "af", "🇳🇬": "en", "🇰🇪": "sw", "🇦🇺": "en", "🇳🇿": "en",
}

// CodeForFlag resolves a flag emoji to its language code.
func CodeForFlag(emoji string) (string, bool) {
	code, ok := flagLanguages[strings.TrimSpace(emoji)]
	return code, ok
}

// Flags returns the full flag-to-language mapping, copied so callers cannot
// mutate the table.
func Flags() map[string]string {
	out := make(map[string]string, len(flagLanguages))
	for flag, code := range flagLanguages {
		out[flag] = code
	}
	return out
}

// Codes returns the sorted set of distinct target language codes.
func Codes() []string {
	seen := make(map[string]struct{}, len(flagLanguages))
	codes := make([]string, 0, len(flagLanguages))
	for _, code := range flagLanguages {
		if _, exists := seen[code]; exists {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
