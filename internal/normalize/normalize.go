// Package normalize provides utilities for normalizing and sanitizing data.
package normalize

import "strings"

// The synthesis engine takes language as a display name from a fixed set.
// Everything below folds user input (ISO codes, locale tags, names in any
// case) onto that set.

//nolint:gochecknoglobals // Static lookup table for language normalization
var codeToEngineLanguage = map[string]string{
	"zh": "Chinese", "en": "English", "ja": "Japanese", "ko": "Korean",
	"de": "German", "fr": "French", "es": "Spanish", "it": "Italian",
	"pt": "Portuguese", "ru": "Russian",
}

// iso639_2to1 maps 3-letter codes of supported languages to 2-letter codes,
// terminological and bibliographic variants both.
//
//nolint:gochecknoglobals // Static lookup table for language normalization
var iso639_2to1 = map[string]string{
	"zho": "zh", "chi": "zh",
	"eng": "en",
	"jpn": "ja",
	"kor": "ko",
	"deu": "de", "ger": "de",
	"fra": "fr", "fre": "fr",
	"spa": "es",
	"ita": "it",
	"por": "pt",
	"rus": "ru",
}

//nolint:gochecknoglobals // Static lookup table for language normalization
var languageNameToCode = map[string]string{
	"chinese": "zh", "mandarin": "zh", "cantonese": "zh",
	"english": "en",
	"japanese": "ja",
	"korean":   "ko",
	"german":   "de",
	"french":   "fr",
	"spanish":  "es",
	"italian":  "it",
	"portuguese": "pt",
	"russian":    "ru",
}

// LanguageCode converts various language representations to ISO 639-1 codes
// of engine-supported languages. It handles:
//   - ISO 639-1 codes: "en" -> "en"
//   - ISO 639-2 codes: "eng" -> "en"
//   - Locale codes: "zh-CN", "en_GB" -> "zh", "en"
//   - Language names: "Chinese", "ENGLISH" -> "zh", "en"
//
// Returns empty string for unsupported or unrecognized values.
func LanguageCode(raw string) string {
	if raw == "" {
		return ""
	}

	// Sanitize and normalize case.
	s := strings.ToLower(strings.TrimSpace(sanitizeString(raw)))
	if s == "" {
		return ""
	}

	// Handle locale codes (e.g., "zh-CN", "en_GB").
	// Split on common separators and use the first part.
	if idx := strings.IndexAny(s, "-_"); idx > 0 {
		s = s[:idx]
	}

	if len(s) == 2 {
		if _, ok := codeToEngineLanguage[s]; ok {
			return s
		}
		return ""
	}

	if len(s) == 3 {
		if code, ok := iso639_2to1[s]; ok {
			return code
		}
	}

	if code, ok := languageNameToCode[s]; ok {
		return code
	}

	return ""
}

// Language converts various language representations to the engine's
// display names. "zh" -> "Chinese", "german" -> "German", "fre" -> "French".
// Returns empty string for unsupported values; callers treat that as
// letting the engine auto-detect.
func Language(raw string) string {
	code := LanguageCode(raw)
	if code == "" {
		return ""
	}
	return codeToEngineLanguage[code]
}

// sanitizeString removes null bytes from strings, which can cause issues in
// databases and JSON parsing.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 { // null byte
			return -1 // drop it
		}
		return r
	}, s)
}
