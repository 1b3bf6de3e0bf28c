package dto

import "github.com/shopspring/decimal"

// PerCapitaResponse exposes the read-only reference row with all six
// meal-period columns.
type PerCapitaResponse struct {
	ProdutoID     string          `json:"produto_id"`
	ProdutoNome   string          `json:"produto_nome"`
	Grupo         string          `json:"grupo"`
	UnidadeMedida string          `json:"unidade_medida"`
	ParcialManha  decimal.Decimal `json:"parcial_manha"`
	ParcialTarde  decimal.Decimal `json:"parcial_tarde"`
	LancheManha   decimal.Decimal `json:"lanche_manha"`
	LancheTarde   decimal.Decimal `json:"lanche_tarde"`
	Almoco        decimal.Decimal `json:"almoco"`
	EJA           decimal.Decimal `json:"eja"`
}

type PerCapitaListResponse struct {
	Data   []PerCapitaResponse `json:"data"`
	Grupos []string            `json:"grupos"`
}
