package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pla-ledger/pla/internal/config"
	"github.com/pla-ledger/pla/internal/importlog"
)

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runPla(t, "init", dir, "--no-git")
	require.NoError(t, err)
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestImportOrganizze(t *testing.T) {
	dir := newProject(t)
	for _, name := range []string{"bb-corrente_2024.csv", "c6-bank_2024.csv"} {
		copyFile(t, filepath.Join("../../testdata", name), filepath.Join(dir, "import", name))
	}

	out, err := runPla(t, "import", "organizze", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Transfer pairs")
	assert.Contains(t, out, "Wrote 6 postings")

	ledger := readFile(t, filepath.Join(dir, "ledger", "historico.beancount"))
	assert.Equal(t, 6, strings.Count(ledger, "origem_id:"))
	assert.Contains(t, ledger, "Equity:SaldoInicial")
	assert.Contains(t, ledger, "Liabilities:Cartao:Saraiva")
	assert.Contains(t, ledger, "Assets:BR:C6Bank")
	assert.Contains(t, ledger, "Expenses:Alimentacao")
	assert.Contains(t, ledger, "Income:Salario")
	assert.Contains(t, ledger, `2024-01-25 ! "Conta de luz"`)

	opens := readFile(t, filepath.Join(dir, "ledger", "accounts.beancount"))
	assert.Contains(t, opens, "open Assets:BR:BbCorrente")
	assert.Contains(t, opens, "open Liabilities:Cartao:Saraiva")

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, importlog.SourceOrganizze, entries[0].Source)
	assert.Equal(t, 7, entries[0].Rows)
	assert.Equal(t, 6, entries[0].Postings)

	// A second run rebuilds the same history.
	_, err = runPla(t, "import", "organizze", "--repo", dir)
	require.NoError(t, err)
	assert.Equal(t, ledger, readFile(t, filepath.Join(dir, "ledger", "historico.beancount")))
}

func TestImportOrganizze_DryRun(t *testing.T) {
	dir := newProject(t)
	src, err := filepath.Abs("../../testdata/bb-corrente_2024.csv")
	require.NoError(t, err)

	out, err := runPla(t, "import", "organizze", "--repo", dir, "--dry-run", src)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Dry run")

	_, err = os.Stat(filepath.Join(dir, "ledger", "historico.beancount"))
	assert.True(t, os.IsNotExist(err))
}

func TestImportOrganizze_NoExports(t *testing.T) {
	dir := newProject(t)
	out, err := runPla(t, "import", "organizze", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "no exports found")
}

func TestImportOrganizze_MalformedRowWritesNothing(t *testing.T) {
	dir := newProject(t)
	bad := "Data;Descrição;Categoria;Valor;Situação\n15/01/2024;Ok;Casa;-1,00;Pago\n15/01/2024;Sem valor;Casa;;Pago\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "carteira.csv"), []byte(bad), 0o644))

	out, err := runPla(t, "import", "organizze", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "carteira.csv")
	assert.Contains(t, out, "row 3")

	_, err = os.Stat(filepath.Join(dir, "ledger", "historico.beancount"))
	assert.True(t, os.IsNotExist(err))
}

func TestImportOFX_Idempotent(t *testing.T) {
	dir := newProject(t)
	copyFile(t, "../../testdata/mapping.csv", filepath.Join(dir, "mapping.csv"))
	statement, err := filepath.Abs("../../testdata/inter_2024-03.ofx")
	require.NoError(t, err)

	out, err := runPla(t, "import", "ofx", statement, "--account", "BancoInter", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Appended 3 postings")

	imports := filepath.Join(dir, "ledger", "importado.beancount")
	ledger := readFile(t, imports)
	assert.Equal(t, 3, strings.Count(ledger, "origem_id:"))
	assert.Contains(t, ledger, "Expenses:Alimentacao:Padaria")
	assert.Contains(t, ledger, "Expenses:Transporte:Uber")
	assert.Contains(t, ledger, "Equity:TransferenciasPendentes")
	assert.Contains(t, ledger, "Assets:BR:BancoInter")
	assert.Contains(t, ledger, `origem_id: "202403050001"`)

	out, err = runPla(t, "import", "ofx", statement, "--account", "BancoInter", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Appended 0 postings")
	assert.Equal(t, ledger, readFile(t, imports))

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[1].Duplicates)

	out, err = runPla(t, "history", "--repo", dir)
	require.NoError(t, err, out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, "header plus two runs")
	assert.Contains(t, lines[1], entries[0].RunID[:8])
	assert.Contains(t, lines[2], "inter_2024-03.ofx")

	out, err = runPla(t, "history", "--repo", dir, "--limit", "1")
	require.NoError(t, err, out)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestHistory_Empty(t *testing.T) {
	dir := newProject(t)
	out, err := runPla(t, "history", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "No imports yet.")
}

func TestImportOrganizze_UnregisteredCard(t *testing.T) {
	dir := newProject(t)
	path := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.CardPayments.Fixed["Nubank"] = "NubankCartao"
	require.NoError(t, config.Save(path, cfg))
	copyFile(t, "../../testdata/bb-corrente_2024.csv", filepath.Join(dir, "import", "bb-corrente_2024.csv"))

	out, err := runPla(t, "import", "organizze", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, `card "NubankCartao" is not in accounts/accounts.csv`)

	_, err = os.Stat(filepath.Join(dir, "ledger", "historico.beancount"))
	assert.True(t, os.IsNotExist(err))
}

func TestImportOFX_UnknownAccount(t *testing.T) {
	dir := newProject(t)
	statement, err := filepath.Abs("../../testdata/inter_2024-03.ofx")
	require.NoError(t, err)

	out, err := runPla(t, "import", "ofx", statement, "--account", "Nubank", "--repo", dir)
	require.Error(t, err)
	assert.Contains(t, out, "unknown account")
}

func TestAccounts(t *testing.T) {
	dir := newProject(t)

	out, err := runPla(t, "accounts", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Assets:BR:BbCorrente")
	assert.Contains(t, out, "Liabilities:Cartao:Saraiva")

	out, err = runPla(t, "accounts", "--repo", dir, "--kind", "liability")
	require.NoError(t, err, out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 6, "header plus five cards")
}
