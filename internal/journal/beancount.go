package journal

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pla-ledger/pla/internal/model"
)

const (
	dateFormat   = "2006-01-02"
	accountWidth = 40
	amountWidth  = 10
)

// DefaultCurrency is the commodity written on every line.
const DefaultCurrency = "BRL"

// OpenDate is the date written on generated open directives.
var OpenDate = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	originPattern = regexp.MustCompile(`origem_id:\s*"([^"]+)"`)
	openPattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s+open\s+(\S+)`)
)

// MarshalPosting renders one posting as Beancount text: header, the two
// lines, then metadata, and a trailing blank line.
func MarshalPosting(p model.Posting, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %q\n", p.Date.Format(dateFormat), p.Flag, p.Description)
	for _, l := range p.Lines {
		fmt.Fprintf(&b, "  %-*s %*s %s\n", accountWidth, l.Account, amountWidth, l.Amount.StringFixed(2), currency)
	}
	for _, m := range p.Meta {
		fmt.Fprintf(&b, "  %s: %q\n", m.Key, m.Value)
	}
	b.WriteString("\n")
	return b.String()
}

// WritePostings writes postings in order.
func WritePostings(w io.Writer, postings []model.Posting, currency string) error {
	bw := bufio.NewWriter(w)
	for i, p := range postings {
		if _, err := bw.WriteString(MarshalPosting(p, currency)); err != nil {
			return fmt.Errorf("writing posting %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ReadOrigins collects every origem_id value found in ledger text.
func ReadOrigins(r io.Reader) (map[string]bool, error) {
	origins := make(map[string]bool)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, m := range originPattern.FindAllStringSubmatch(sc.Text(), -1) {
			origins[m[1]] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning ledger: %w", err)
	}
	return origins, nil
}

// ReadOpenAccounts collects the accounts of every open directive.
func ReadOpenAccounts(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if m := openPattern.FindStringSubmatch(strings.TrimSpace(sc.Text())); m != nil {
			out = append(out, m[1])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning open directives: %w", err)
	}
	return out, nil
}

// AccountsUsed returns the sorted set of accounts referenced by postings.
func AccountsUsed(postings []model.Posting) []string {
	seen := make(map[string]bool)
	for _, p := range postings {
		for _, l := range p.Lines {
			seen[l.Account] = true
		}
	}
	return sortedKeys(seen)
}

// WriteOpenDirectives writes one open directive per account, sorted.
func WriteOpenDirectives(w io.Writer, accounts []string, date time.Time, currency string) error {
	set := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		if a != "" {
			set[a] = true
		}
	}
	bw := bufio.NewWriter(w)
	for _, a := range sortedKeys(set) {
		if _, err := fmt.Fprintf(bw, "%s open %s %s \"STRICT\"\n", date.Format(dateFormat), a, currency); err != nil {
			return fmt.Errorf("writing open directive for %s: %w", a, err)
		}
	}
	return bw.Flush()
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
