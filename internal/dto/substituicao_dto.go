package dto

import "github.com/shopspring/decimal"

type ProporSubstituicaoRequest struct {
	ItemID              string `json:"item_id"               validate:"required,uuid"`
	ProdutoSubstitutoID string `json:"produto_substituto_id" validate:"required,uuid"`
	Versao              int    `json:"versao"                validate:"required,min=1"`
}

type ResolverSubstituicaoRequest struct {
	Aceitar bool `json:"aceitar"`
	Versao  int  `json:"versao" validate:"required,min=1"`
}

type SubstituicaoResponse struct {
	ID                    string  `json:"id"`
	NecessidadeID         string  `json:"necessidade_id"`
	ItemID                string  `json:"item_id"`
	ProdutoOriginalID     string  `json:"produto_original_id"`
	ProdutoOriginalNome   string  `json:"produto_original_nome"`
	ProdutoSubstitutoID   string  `json:"produto_substituto_id"`
	ProdutoSubstitutoNome string  `json:"produto_substituto_nome"`
	UnidadeMedida         string  `json:"unidade_medida"`
	Status                string  `json:"status"`
	Autor                 string  `json:"autor"`
	ResolvidoPor          *string `json:"resolvido_por,omitempty"`
	ResolvidoEm           *string `json:"resolvido_em,omitempty"`
	CreatedAt             string  `json:"created_at"`
}

// CandidatoResponse is one suggestion from GET /v1/substituicoes/candidatos:
// same product group, same unit of measure, active per-capita row.
type CandidatoResponse struct {
	ProdutoID     string          `json:"produto_id"`
	ProdutoNome   string          `json:"produto_nome"`
	UnidadeMedida string          `json:"unidade_medida"`
	PerCapita     decimal.Decimal `json:"per_capita"`
}
