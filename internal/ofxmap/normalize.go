// Package ofxmap classifies bank-statement transactions with a pattern table
// and turns them into postings.
package ofxmap

import (
	"regexp"
	"strings"

	"github.com/pla-ledger/pla/internal/textnorm"
)

type replacement struct {
	re   *regexp.Regexp
	with string
}

// Applied in order to the upper-cased, accent-folded text.
var cleanups = []replacement{
	{regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`), ""},
	{regexp.MustCompile(`\s*\d+/\d+\s*`), " "},
	{regexp.MustCompile(`\s*\bUNICA\b\s*`), " "},
	{regexp.MustCompile(`\b\d{6,}\b`), ""},
	{regexp.MustCompile(`\bSAO\s*PAULO\s*BR\b`), ""},
	{regexp.MustCompile(`\bNITEROI\s*BRA?\b`), ""},
	{regexp.MustCompile(`\bRIO\s*DE\s*JANEIRO\s*BR\b`), ""},
	{regexp.MustCompile(`\bBR\b$`), ""},
	{regexp.MustCompile(`[^\w\s]`), " "},
}

// Normalize prepares payee or memo text for pattern lookup: accents folded,
// upper-cased, dates, installment markers, long digit runs and city suffixes
// removed, punctuation dropped, whitespace collapsed.
func Normalize(s string) string {
	s = strings.ToUpper(textnorm.StripAccents(strings.TrimSpace(s)))
	if s == "" {
		return ""
	}
	for _, c := range cleanups {
		s = c.re.ReplaceAllString(s, c.with)
	}
	return strings.Join(strings.Fields(s), " ")
}
