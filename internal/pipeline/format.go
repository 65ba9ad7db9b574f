package pipeline

import "strings"

const (
	// AltColorChar marks a color or style code in rule text.
	AltColorChar = '&'
	// ColorChar is the section sign used by clients for formatting codes.
	ColorChar = '§'
)

const colorCodes = "0123456789abcdefklmnor"

func isColorCode(r rune) bool {
	return strings.ContainsRune(colorCodes, r)
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// TranslateColorCodes rewrites "&x" to the client formatting code "§x" for
// every valid code letter x. Other ampersands are left alone.
func TranslateColorCodes(s string) string {
	if !strings.ContainsRune(s, AltColorChar) {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == AltColorChar && i+1 < len(runes) {
			if code := toLowerASCII(runes[i+1]); isColorCode(code) {
				b.WriteRune(ColorChar)
				b.WriteRune(code)
				i++
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StripColorCodes removes "§x" formatting codes.
func StripColorCodes(s string) string {
	if !strings.ContainsRune(s, ColorChar) {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); i++ {
		if runes[i] == ColorChar && i+1 < len(runes) && isColorCode(toLowerASCII(runes[i+1])) {
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
