// Package textnorm folds and sanitizes free text coming from bank exports so
// that keyword tests, category names and descriptions are stable.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownName is returned by SanitizeName when nothing usable remains.
const UnknownName = "Unknown"

// EmptyDescription replaces blank descriptions.
const EmptyDescription = "Sem descricao"

const (
	maxDescription = 60
	keepOnTruncate = 57
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// StripAccents removes combining marks: "Alimentação" -> "Alimentacao".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold returns s accent-stripped, lower-cased and trimmed. Every keyword test
// in the classifier compares folded strings.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(StripAccents(s)))
}

// ContainsAny reports whether folded text contains any folded keyword.
func ContainsAny(text string, keywords ...string) bool {
	folded := Fold(text)
	for _, kw := range keywords {
		if kw = Fold(kw); kw != "" && strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether folded text contains every folded keyword.
func ContainsAll(text string, keywords ...string) bool {
	folded := Fold(text)
	for _, kw := range keywords {
		if !strings.Contains(folded, Fold(kw)) {
			return false
		}
	}
	return len(keywords) > 0
}

// EqualFold compares two strings ignoring case and accents.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// SanitizeName turns a free-form label into an account path segment:
// accents stripped, punctuation removed, words capitalized and joined.
func SanitizeName(name string) string {
	name = StripAccents(strings.TrimSpace(name))
	name = nonAlphanumeric.ReplaceAllString(name, "")
	words := strings.Fields(name)
	if len(words) == 0 {
		return UnknownName
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}
	return b.String()
}

// SanitizeDescription makes a description safe for a quoted ledger string and
// truncates it to 60 characters.
func SanitizeDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return EmptyDescription
	}
	desc = strings.NewReplacer(`"`, "'", "\n", " ", "\r", " ").Replace(desc)
	r := []rune(desc)
	if len(r) > maxDescription {
		return string(r[:keepOnTruncate]) + "..."
	}
	return desc
}
