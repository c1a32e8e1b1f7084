package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pla-ledger/pla/internal/model"
)

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry(DefaultAccounts())

	acct, ok := reg.Get("Saraiva")
	require.True(t, ok)
	assert.Equal(t, model.AccountKindLiability, acct.Kind)

	_, ok = reg.Get("Nubank")
	assert.False(t, ok)
	assert.True(t, reg.Exists("BbCorrente"))
	assert.False(t, reg.Exists("Nubank"))
}

func TestRegistryKindDefaultsToAsset(t *testing.T) {
	reg := NewRegistry(DefaultAccounts())
	assert.Equal(t, model.AccountKindAsset, reg.Kind("Nubank"))
	assert.True(t, reg.IsAsset("Nubank"))
	assert.False(t, reg.IsLiability("Nubank"))
	assert.True(t, reg.IsLiability("LatamPass"))
}

func TestRegistryPath(t *testing.T) {
	reg := NewRegistry([]model.Account{
		{ID: "BbCorrente", Kind: model.AccountKindAsset},
		{ID: "Saraiva", Kind: model.AccountKindLiability},
		{ID: "Carteira", Kind: model.AccountKindAsset, Path: "Assets:Dinheiro:Carteira"},
	})
	assert.Equal(t, "Assets:BR:BbCorrente", reg.Path("BbCorrente"))
	assert.Equal(t, "Liabilities:Cartao:Saraiva", reg.Path("Saraiva"))
	assert.Equal(t, "Assets:Dinheiro:Carteira", reg.Path("Carteira"))
	assert.Equal(t, "Assets:BR:Desconhecida", reg.Path("Desconhecida"))
}

func TestByKind(t *testing.T) {
	reg := NewRegistry(DefaultAccounts())
	cards := reg.ByKind(model.AccountKindLiability)
	assert.Len(t, cards, 5)
	for _, c := range cards {
		assert.Equal(t, model.AccountKindLiability, c.Kind)
	}
	assert.Len(t, reg.ByKind(model.AccountKindAsset), 14)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	reg := NewRegistry(DefaultAccounts())

	dir := t.TempDir()
	require.NoError(t, reg.Save(dir))

	_, err := os.Stat(filepath.Join(dir, "accounts", "accounts.csv"))
	require.NoError(t, err)

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, reg.All(), loaded.All())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
