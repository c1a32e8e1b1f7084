package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pla-ledger/pla/internal/model"
)

const (
	numFields = 3
	colID     = 0
	colKind   = 1
	colPath   = 2
)

// Header is the CSV header for accounts.csv.
var Header = []string{"account_id", "kind", "ledger_path"}

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colKind] = string(acct.Kind)
	row[colPath] = acct.Path
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id := strings.TrimSpace(record[colID])
	if id == "" {
		return model.Account{}, fmt.Errorf("empty account_id")
	}

	kind := model.AccountKind(strings.ToLower(strings.TrimSpace(record[colKind])))
	if !kind.Valid() {
		return model.Account{}, fmt.Errorf("account %s: unknown kind %q", id, record[colKind])
	}

	return model.Account{
		ID:   id,
		Kind: kind,
		Path: strings.TrimSpace(record[colPath]),
	}, nil
}
