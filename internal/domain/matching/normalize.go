// Package matching links registered clients to loan applications filed under
// slightly different names, phone formats or ID spellings.
package matching

import (
	"strings"
	"unicode"
)

var titles = map[string]struct{}{
	"mr":   {},
	"mrs":  {},
	"ms":   {},
	"dr":   {},
	"prof": {},
}

// NormalizeName lowercases a name, drops punctuation and honorifics, and
// collapses whitespace: "Dr.  John  Mukasa" → "john mukasa".
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if _, ok := titles[w]; !ok {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// NormalizePhone reduces a phone number to digits in Ugandan international
// form where the local shape is recognisable:
//
//	256XXXXXXXXX   kept as is
//	0XXXXXXXXX     → 256XXXXXXXXX
//	XXXXXXXXX      → 256XXXXXXXXX
//
// Anything else is returned as bare digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "256"):
		return digits
	case len(digits) == 10 && digits[0] == '0':
		return "256" + digits[1:]
	case len(digits) == 9:
		return "256" + digits
	}
	return digits
}

// NormalizeID lowercases and trims a national ID number.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
