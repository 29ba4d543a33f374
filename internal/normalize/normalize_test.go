package normalize

import "testing"

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// ISO 639-1 codes (passthrough)
		{"zh", "zh"},
		{"en", "en"},
		{"ja", "ja"},
		// ISO 639-2 codes
		{"zho", "zh"},
		{"chi", "zh"}, // bibliographic variant
		{"eng", "en"},
		{"fre", "fr"}, // bibliographic variant
		// Locale codes
		{"zh-CN", "zh"},
		{"zh_TW", "zh"},
		{"en-US", "en"},
		// Language names
		{"chinese", "zh"},
		{"Chinese", "zh"},
		{"MANDARIN", "zh"},
		{"english", "en"},
		// Edge cases
		{"", ""},
		{"  zh  ", "zh"},
		{"xyz", ""},
		// Valid ISO code but not an engine language
		{"sv", ""},
		{"swedish", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := LanguageCode(tt.input)
			if result != tt.expected {
				t.Errorf("LanguageCode(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLanguage(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// ISO codes to display names
		{"zh", "Chinese"},
		{"en", "English"},
		{"ja", "Japanese"},
		{"ko", "Korean"},
		// Names normalized
		{"chinese", "Chinese"},
		{"ENGLISH", "English"},
		{"  french  ", "French"},
		// ISO 639-2 codes
		{"zho", "Chinese"},
		{"por", "Portuguese"},
		// Locale codes
		{"zh-CN", "Chinese"},
		{"en-US", "English"},
		// Edge cases
		{"", ""},
		{"xyz", ""},
		{"swedish", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Language(tt.input)
			if result != tt.expected {
				t.Errorf("Language(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	if got := sanitizeString("zh\x00"); got != "zh" {
		t.Errorf("sanitizeString removed nothing: %q", got)
	}
}
