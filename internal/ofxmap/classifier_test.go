package ofxmap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mappingCSV = `padrao,conta_alvo
uber,Expenses:Transporte:Uber
UBER EATS,Expenses:Alimentacao:Delivery
padaria,Expenses:Alimentacao:Padaria
netflix.com,Expenses:Assinaturas
spotify,Expenses:Assinaturas:Musica
,Expenses:Vazio
pix,
`

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	rules, err := ReadRules(strings.NewReader(mappingCSV))
	require.NoError(t, err)
	return NewClassifier(rules, DefaultConfig())
}

func TestReadRules(t *testing.T) {
	rules, err := ReadRules(strings.NewReader(mappingCSV))
	require.NoError(t, err)
	require.Len(t, rules, 5)
	assert.Equal(t, Rule{Pattern: "UBER", Account: "Expenses:Transporte:Uber"}, rules[0])
	assert.Equal(t, "NETFLIX COM", rules[3].Pattern)
}

func TestReadRules_DuplicateLaterWins(t *testing.T) {
	rules, err := ReadRules(strings.NewReader("padrao,conta_alvo\nuber,A\nUBER,B\n"))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "B", rules[0].Account)
}

func TestReadRules_BadHeader(t *testing.T) {
	_, err := ReadRules(strings.NewReader("pattern,account\nuber,A\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "padrao,conta_alvo")
}

func TestClassify(t *testing.T) {
	c := newClassifier(t)
	tests := []struct {
		name    string
		payee   string
		memo    string
		account string
		kind    MatchKind
	}{
		{"exact", "", "Padaria", "Expenses:Alimentacao:Padaria", MatchExact},
		{"longest pattern wins", "", "UBER EATS PEDIDO 1234", "Expenses:Alimentacao:Delivery", MatchSubstring},
		{"shorter pattern", "", "UBER TRIP SAO PAULO BR", "Expenses:Transporte:Uber", MatchSubstring},
		{"payee when memo empty", "Netflix.com", "", "Expenses:Assinaturas", MatchExact},
		{"pattern inside a word", "", "PGTOSPOTIFYPREMIUM", "Expenses:Assinaturas:Musica", MatchSubstring},
		{"short pattern inside a word", "", "SUPERUBER", "Expenses:Transporte:Uber", MatchSubstring},
		{"no match", "", "LOJA QUALQUER", "Expenses:Ajustes", MatchFallback},
		{"empty", "", "", "Expenses:Ajustes", MatchFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := c.Classify(tt.payee, tt.memo)
			assert.Equal(t, tt.account, m.Account)
			assert.Equal(t, tt.kind, m.Kind)
		})
	}
}

func TestClassify_LongestSubstringFirst(t *testing.T) {
	rules, err := ReadRules(strings.NewReader("padrao,conta_alvo\nuber,Expenses:Transporte\nsupermercado,Expenses:Mercado\npao,Expenses:Padaria\n"))
	require.NoError(t, err)
	c := NewClassifier(rules, DefaultConfig())

	m := c.Classify("", "UBERTRIP 12345")
	assert.Equal(t, "Expenses:Transporte", m.Account)
	assert.Equal(t, MatchSubstring, m.Kind)

	m = c.Classify("", "SUPERMERCADOXYZ PAO")
	assert.Equal(t, "Expenses:Mercado", m.Account)
	assert.Equal(t, "SUPERMERCADO", m.Pattern)
}

func TestSelfTransfer(t *testing.T) {
	c := newClassifier(t)

	assert.True(t, c.IsSelfTransfer("PIX enviado José Eduardo Silva"))
	assert.True(t, c.IsSelfTransfer("Transferência entre contas"))
	assert.False(t, c.IsSelfTransfer("Transferência para terceiros"))
	assert.False(t, c.IsSelfTransfer(""))

	m := c.Classify("UBER", "Transferencia entre contas")
	assert.Equal(t, "Equity:TransferenciasPendentes", m.Account)
	assert.Equal(t, MatchSelfTransfer, m.Kind)
}

func TestSelfTransferHolderConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Holder = "Maria Souza"
	c := NewClassifier(nil, cfg)
	assert.True(t, c.IsSelfTransfer("TED MARIA SOUZA"))
	assert.False(t, c.IsSelfTransfer("TED JOSE EDUARDO"))
}
