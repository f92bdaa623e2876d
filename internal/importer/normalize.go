package importer

import "strings"

// Normalize canonicalizes a header or free-text value for comparison.
// It lowercases, trims, unifies the Arabic letter variants that differ
// only by hamza or dots (all Alif forms to bare Alif, Ta-Marbuta to Ha,
// Alif-Maksura to Ya), then strips everything that is not a Latin
// letter, a digit, or a letter in the core Arabic block. The result of
// normalizing a normalized string is the string itself.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch r {
		case 'أ', 'إ', 'آ':
			r = 'ا'
		case 'ة':
			r = 'ه'
		case 'ى':
			r = 'ي'
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || (r >= 0x0621 && r <= 0x064A) {
			b.WriteRune(r)
		}
	}

	return b.String()
}
