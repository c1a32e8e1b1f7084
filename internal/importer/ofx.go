package importer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/pla-ledger/pla/internal/model"
)

// brokenEncodingHeader appears in statements from some Brazilian banks.
const brokenEncodingHeader = "ENCODING: UTF - 8"

// RepairOFX fixes known header defects and converts latin-1 bodies to UTF-8.
func RepairOFX(data []byte) ([]byte, error) {
	data = bytes.ReplaceAll(data, []byte(brokenEncodingHeader), []byte("ENCODING:UTF-8"))
	if utf8.Valid(data) {
		return data, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding latin-1 statement: %w", err)
	}
	return out, nil
}

// ParseOFX reads every bank and credit-card statement in an OFX file.
func ParseOFX(r io.Reader) ([]model.StatementTransaction, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading ofx: %w", err)
	}
	data, err := RepairOFX(raw)
	if err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing ofx: %w", err)
	}
	if len(resp.Bank) == 0 && len(resp.CreditCard) == 0 {
		return nil, fmt.Errorf("%w: ofx has no bank or credit card statements", ErrUnknownFormat)
	}

	var out []model.StatementTransaction
	for _, msg := range append(resp.Bank, resp.CreditCard...) {
		var list *ofxgo.TransactionList
		switch stmt := msg.(type) {
		case *ofxgo.StatementResponse:
			list = stmt.BankTranList
		case *ofxgo.CCStatementResponse:
			list = stmt.BankTranList
		default:
			return nil, fmt.Errorf("%w: unexpected ofx message %T", ErrUnknownFormat, msg)
		}
		if list == nil {
			continue
		}
		for i, tx := range list.Transactions {
			st, err := statementTransaction(tx)
			if err != nil {
				return nil, fmt.Errorf("transaction %d: %w", i+1, err)
			}
			out = append(out, st)
		}
	}
	return out, nil
}

// ParseOFXFile opens and parses an OFX file.
func ParseOFXFile(path string) ([]model.StatementTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	txs, err := ParseOFX(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return txs, nil
}

func statementTransaction(tx ofxgo.Transaction) (model.StatementTransaction, error) {
	amount, err := decimal.NewFromString(tx.TrnAmt.String())
	if err != nil {
		return model.StatementTransaction{}, fmt.Errorf("%w: amount %q: %v", ErrMalformedRow, tx.TrnAmt.String(), err)
	}
	if !amount.Equal(amount.Round(2)) {
		return model.StatementTransaction{}, fmt.Errorf("%w: amount %q has more than 2 decimal places", ErrMalformedRow, tx.TrnAmt.String())
	}
	if tx.DtPosted.IsZero() {
		return model.StatementTransaction{}, fmt.Errorf("%w: missing DTPOSTED", ErrMalformedRow)
	}

	payee := strings.TrimSpace(string(tx.Name))
	if payee == "" && tx.Payee != nil {
		payee = strings.TrimSpace(string(tx.Payee.Name))
	}

	y, m, d := tx.DtPosted.Date()
	return model.StatementTransaction{
		FITID:  strings.TrimSpace(string(tx.FiTID)),
		Date:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Amount: amount,
		Payee:  payee,
		Memo:   strings.TrimSpace(string(tx.Memo)),
	}, nil
}
