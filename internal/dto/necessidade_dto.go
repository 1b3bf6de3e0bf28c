package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// NecessidadeFilter is bound from the query string of GET /v1/necessidades.
type NecessidadeFilter struct {
	EscolaID     string `form:"escola_id"          validate:"omitempty,uuid"`
	Grupo        string `form:"grupo"`
	Status       string `form:"status,default=all"`
	Ano          int    `form:"ano"                validate:"omitempty,min=2000,max=2100"`
	SemanaNumero int    `form:"semana"             validate:"omitempty,min=1"`
	Page         int    `form:"page,default=1"     validate:"min=1"`
	Limit        int    `form:"limit,default=50"   validate:"min=1,max=200"`
}

type NecessidadeListResponse struct {
	Data  []NecessidadeResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarNecessidadeRequest struct {
	EscolaID     string `json:"escola_id"     validate:"required,uuid"`
	Grupo        string `json:"grupo"         validate:"required,min=2"`
	Periodo      string `json:"periodo"       validate:"required"`
	Ano          int    `json:"ano"           validate:"required,min=2000,max=2100"`
	SemanaNumero int    `json:"semana_numero" validate:"required,min=1"`
}

// Every mutation carries the version the client read; the write fails when
// another actor bumped it in between.
type IncluirProdutoExtraRequest struct {
	ProdutoID  string          `json:"produto_id" validate:"required,uuid"`
	Quantidade decimal.Decimal `json:"quantidade" validate:"required"`
	Versao     int             `json:"versao"     validate:"required,min=1"`
}

type AjustarItemRequest struct {
	Etapa     string          `json:"etapa"      validate:"required,oneof=nutricionista coordenacao logistica"`
	ValorNovo decimal.Decimal `json:"valor_novo" validate:"required"`
	Motivo    string          `json:"motivo"     validate:"required,min=5"`
	Versao    int             `json:"versao"     validate:"required,min=1"`
}

type TransicaoRequest struct {
	Versao int `json:"versao" validate:"required,min=1"`
}

type RejeitarRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
	Versao int    `json:"versao" validate:"required,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type NecessidadeItemResponse struct {
	ID                 string           `json:"id"`
	ProdutoID          string           `json:"produto_id"`
	ProdutoNome        string           `json:"produto_nome"`
	UnidadeMedida      string           `json:"unidade_medida"`
	PerCapita          decimal.Decimal  `json:"per_capita"`
	Frequencia         int              `json:"frequencia"`
	FrequenciaEstimada bool             `json:"frequencia_estimada"`
	MediaPeriodo       decimal.Decimal  `json:"media_periodo"`
	SemHistorico       bool             `json:"sem_historico"`
	QuantidadeBase     decimal.Decimal  `json:"quantidade_base"`
	QuantidadeFinal    decimal.Decimal  `json:"quantidade_final"`
	QuantidadeLiberada *decimal.Decimal `json:"quantidade_liberada,omitempty"`
	Origem             string           `json:"origem"`
	SubstituicaoID     *string          `json:"substituicao_id,omitempty"`
}

type NecessidadeResponse struct {
	ID                      string                    `json:"id"`
	EscolaID                string                    `json:"escola_id"`
	Grupo                   string                    `json:"grupo"`
	Periodo                 string                    `json:"periodo"`
	Ano                     int                       `json:"ano"`
	SemanaNumero            int                       `json:"semana_numero"`
	SemanaRotulo            string                    `json:"semana_rotulo"`
	Status                  string                    `json:"status"`
	Versao                  int                       `json:"versao"`
	CalendarioDesatualizado bool                      `json:"calendario_desatualizado"`
	MotivoRejeicao          *string                   `json:"motivo_rejeicao,omitempty"`
	CriadoPor               string                    `json:"criado_por"`
	AtualizadoPor           string                    `json:"atualizado_por"`
	Itens                   []NecessidadeItemResponse `json:"itens"`
	CreatedAt               string                    `json:"created_at"`
	UpdatedAt               string                    `json:"updated_at"`
}

type AjusteResponse struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	Etapa         string          `json:"etapa"`
	ValorAnterior decimal.Decimal `json:"valor_anterior"`
	ValorNovo     decimal.Decimal `json:"valor_novo"`
	Autor         string          `json:"autor"`
	Motivo        string          `json:"motivo"`
	CreatedAt     string          `json:"created_at"`
}
