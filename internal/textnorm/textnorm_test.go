package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Alimentação", "Alimentacao"},
		{"", "Unknown"},
		{"   ", "Unknown"},
		{"!!!", "Unknown"},
		{"bb corrente", "BbCorrente"},
		{"Saúde & Bem-estar", "SaudeBemestar"},
		{"TRANSFERÊNCIAS", "Transferencias"},
		{"Cartão de crédito Inter", "CartaoDeCreditoInter"},
		{"Casa 2", "Casa2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.input), "SanitizeName(%q)", tt.input)
	}
}

func TestSanitizeDescription(t *testing.T) {
	assert.Equal(t, "Sem descricao", SanitizeDescription(""))
	assert.Equal(t, "Sem descricao", SanitizeDescription("  \n"))
	assert.Equal(t, "Padaria 'Pão Quente'", SanitizeDescription(`Padaria "Pão Quente"`))
	assert.Equal(t, "linha um linha dois", SanitizeDescription("linha um\nlinha dois"))

	exact := strings.Repeat("a", 60)
	assert.Equal(t, exact, SanitizeDescription(exact))

	long := strings.Repeat("b", 61)
	got := SanitizeDescription(long)
	assert.Equal(t, strings.Repeat("b", 57)+"...", got)
	assert.Len(t, []rune(got), 60)
}

func TestSanitizeDescription_CountsRunes(t *testing.T) {
	accented := strings.Repeat("ç", 60)
	assert.Equal(t, accented, SanitizeDescription(accented))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "pagamento de titulo", Fold("  Pagamento de Título "))
	assert.Equal(t, "transferencias", Fold("Transferências"))
}

func TestContainsAnyAll(t *testing.T) {
	assert.True(t, ContainsAny("PAGAMENTO DE TÍTULO 123", "pagamento de título"))
	assert.True(t, ContainsAny("Boleto Enel", "saque", "boleto"))
	assert.False(t, ContainsAny("Mercado", "saque", "boleto"))
	assert.False(t, ContainsAny("Mercado"))

	assert.True(t, ContainsAll("Ajuste de Saldo", "ajuste", "saldo"))
	assert.False(t, ContainsAll("Ajuste", "ajuste", "saldo"))
	assert.False(t, ContainsAll("anything"))
}

func TestEqualFold(t *testing.T) {
	assert.True(t, EqualFold("Transferência", "transferencia"))
	assert.False(t, EqualFold("Outros", "Outras"))
}
