package ofxmap

import (
	"strings"
)

// MatchKind names the step that picked the target account.
type MatchKind string

const (
	MatchExact        MatchKind = "exact"
	MatchSubstring    MatchKind = "substring"
	MatchRelaxed      MatchKind = "relaxed"
	MatchFallback     MatchKind = "fallback"
	MatchSelfTransfer MatchKind = "self-transfer"
)

// Match is the outcome of classifying one transaction.
type Match struct {
	Account string
	Kind    MatchKind
	Pattern string
}

// Config holds the accounts and owner name used by the classifier.
type Config struct {
	Holder          string `yaml:"holder"`
	PendingTransfer string `yaml:"-"`
	NeedsReview     string `yaml:"-"`
	MinRelaxed      int    `yaml:"min_relaxed"` // minimum pattern length for the relaxed step
}

// DefaultConfig returns the default holder and fallback accounts.
func DefaultConfig() Config {
	return Config{
		Holder:          "Jose Eduardo",
		PendingTransfer: "Equity:TransferenciasPendentes",
		NeedsReview:     "Expenses:Ajustes",
		MinRelaxed:      5,
	}
}

var transferWords = []string{"TRANSFERENCIA", "ENTRE", "CONTAS"}

// Classifier assigns target accounts to statement transactions.
type Classifier struct {
	cfg    Config
	holder string
	exact  map[string]Rule
	rules  []Rule // longest first
}

// NewClassifier creates a Classifier from a rule table.
func NewClassifier(rules []Rule, cfg Config) *Classifier {
	exact := make(map[string]Rule, len(rules))
	for _, r := range rules {
		exact[r.Pattern] = r
	}
	return &Classifier{
		cfg:    cfg,
		holder: Normalize(cfg.Holder),
		exact:  exact,
		rules:  byLength(rules),
	}
}

// SearchText returns the normalized memo, or the normalized payee when the
// memo is empty.
func SearchText(payee, memo string) string {
	if m := Normalize(memo); m != "" {
		return m
	}
	return Normalize(payee)
}

// IsSelfTransfer reports whether the memo names the account holder or reads
// like a transfer between own accounts.
func (c *Classifier) IsSelfTransfer(memo string) bool {
	m := Normalize(memo)
	if m == "" {
		return false
	}
	if c.holder != "" && strings.Contains(m, c.holder) {
		return true
	}
	for _, w := range transferWords {
		if !strings.Contains(m, w) {
			return false
		}
	}
	return true
}

// Classify picks the target account for a transaction.
func (c *Classifier) Classify(payee, memo string) Match {
	if c.IsSelfTransfer(memo) {
		return Match{Account: c.cfg.PendingTransfer, Kind: MatchSelfTransfer}
	}

	text := SearchText(payee, memo)
	if text == "" {
		return Match{Account: c.cfg.NeedsReview, Kind: MatchFallback}
	}
	if r, ok := c.exact[text]; ok {
		return Match{Account: r.Account, Kind: MatchExact, Pattern: r.Pattern}
	}

	// Longest pattern contained anywhere in the text wins.
	for _, r := range c.rules {
		if strings.Contains(text, r.Pattern) {
			return Match{Account: r.Account, Kind: MatchSubstring, Pattern: r.Pattern}
		}
	}
	for _, r := range c.rules {
		if len(r.Pattern) >= c.cfg.MinRelaxed && strings.Contains(text, r.Pattern) {
			return Match{Account: r.Account, Kind: MatchRelaxed, Pattern: r.Pattern}
		}
	}
	return Match{Account: c.cfg.NeedsReview, Kind: MatchFallback}
}
