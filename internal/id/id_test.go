package id

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/pla-ledger/pla/internal/model"
)

func row(date, desc, amount, account string) model.Row {
	d, _ := time.Parse("2006-01-02", date)
	return model.Row{Date: d, Description: desc, Amount: decimal.RequireFromString(amount), Account: account}
}

func TestForRowStable(t *testing.T) {
	a := row("2024-01-15", "Mercado", "-150.5", "BbCorrente")
	b := row("2024-01-15", "Mercado", "-150.50", "BbCorrente")
	b.Index = 42
	b.Category = "Alimentação"

	assert.Equal(t, ForRow(a), ForRow(b))
	assert.Len(t, ForRow(a), Length)
}

func TestForRowDistinguishesFields(t *testing.T) {
	base := row("2024-01-15", "Mercado", "-150.50", "BbCorrente")
	variants := []model.Row{
		row("2024-01-16", "Mercado", "-150.50", "BbCorrente"),
		row("2024-01-15", "Padaria", "-150.50", "BbCorrente"),
		row("2024-01-15", "Mercado", "-150.51", "BbCorrente"),
		row("2024-01-15", "Mercado", "-150.50", "C6Bank"),
		row("2024-01-15", "Mercado", "150.50", "BbCorrente"),
	}
	for _, v := range variants {
		assert.NotEqual(t, ForRow(base), ForRow(v))
	}
}

func TestForPair(t *testing.T) {
	d := row("2024-01-15", "TED", "-200.00", "AcctX")
	c := row("2024-01-15", "TED", "200.00", "AcctY")

	assert.Equal(t, ForPair(d, c), ForPair(d, c))
	assert.NotEqual(t, ForPair(d, c), ForPair(c, d))
	assert.NotEqual(t, ForRow(d), ForPair(d, c))
}

func TestForStatement(t *testing.T) {
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		tx   model.StatementTransaction
		want string
	}{
		{"fitid", model.StatementTransaction{FITID: " 202403050001 ", Date: date}, "202403050001"},
		{"fallback", model.StatementTransaction{Date: date, Amount: decimal.RequireFromString("-42.9"), Payee: "PADARIA"}, "2024-03-05_-42.90_PADARIA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForStatement(tt.tx))
		})
	}
}
