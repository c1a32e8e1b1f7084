package accounts

import "github.com/pla-ledger/pla/internal/model"

// DefaultAccounts returns the registry shipped by `pla init`: the bank
// accounts and credit cards of the Organizze exports.
func DefaultAccounts() []model.Account {
	asset := func(id string) model.Account { return model.Account{ID: id, Kind: model.AccountKindAsset} }
	card := func(id string) model.Account { return model.Account{ID: id, Kind: model.AccountKindLiability} }
	return []model.Account{
		asset("BancoInter"),
		asset("BbCorrente"),
		asset("C6Bank"),
		asset("Carteira"),
		asset("Caixa"),
		asset("BancoDoBrasilPoupanca"),
		asset("ItauPersonalite"),
		asset("RendaVariavelInter"),
		asset("CdbC6"),
		asset("CdbInter"),
		asset("CdbEFundosDaycoval"),
		asset("TesouroDiretoInter"),
		asset("TesouroEasyinvest"),
		asset("Pagol"),
		card("CartaoDeCreditoInter"),
		card("MastercardC6Bank"),
		card("Saraiva"),
		card("SmilesBbPlatinum"),
		card("LatamPass"),
	}
}
