package ofxmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Rule maps a normalized pattern to a target ledger account.
type Rule struct {
	Pattern string
	Account string
}

// MappingHeader is the header of the mapping CSV.
var MappingHeader = []string{"padrao", "conta_alvo"}

// ReadRules reads a mapping CSV with a padrao,conta_alvo header. Patterns are
// normalized with Normalize; rows with an empty pattern or account are
// skipped, and a later row for the same pattern replaces an earlier one.
func ReadRules(r io.Reader) ([]Rule, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading mapping CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	patternCol, accountCol := -1, -1
	for i, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case MappingHeader[0]:
			patternCol = i
		case MappingHeader[1]:
			accountCol = i
		}
	}
	if patternCol < 0 || accountCol < 0 {
		return nil, fmt.Errorf("mapping CSV: header must contain %s", strings.Join(MappingHeader, ","))
	}

	var rules []Rule
	pos := make(map[string]int)
	for i, rec := range records[1:] {
		if len(rec) <= patternCol || len(rec) <= accountCol {
			return nil, fmt.Errorf("mapping row %d: expected at least %d fields", i+2, max(patternCol, accountCol)+1)
		}
		pattern := Normalize(rec[patternCol])
		account := strings.TrimSpace(rec[accountCol])
		if pattern == "" || account == "" {
			continue
		}
		if p, ok := pos[pattern]; ok {
			rules[p].Account = account
			continue
		}
		pos[pattern] = len(rules)
		rules = append(rules, Rule{Pattern: pattern, Account: account})
	}
	return rules, nil
}

// LoadRules reads the mapping file at path.
func LoadRules(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mapping: %w", err)
	}
	defer f.Close()
	return ReadRules(f)
}

// byLength returns rules sorted longest pattern first, file order on ties.
func byLength(rules []Rule) []Rule {
	out := append([]Rule(nil), rules...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].Pattern) > len(out[j].Pattern) })
	return out
}
