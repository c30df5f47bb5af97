package ocr

import "strings"

var tesseractCodes = map[string]string{
	"en": "eng",
	"es": "spa",
	"fr": "fra",
	"de": "deu",
	"it": "ita",
	"pt": "por",
	"ja": "jpn",
	"zh": "chi_sim",
	"ko": "kor",
	"ru": "rus",
}

// MapLanguages converts two-letter codes to Tesseract codes. Unknown codes are
// passed through unchanged, blanks are dropped and duplicates are removed.
func MapLanguages(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if mapped, ok := tesseractCodes[c]; ok {
			c = mapped
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
