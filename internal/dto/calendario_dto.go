package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ClassificarAnoRequest carries the weekday sets (1=segunda … 7=domingo) for
// PUT /v1/calendario/:ano/classificacao.
type ClassificarAnoRequest struct {
	DiasUteis         []int `json:"dias_uteis"         validate:"dive,min=1,max=7"`
	DiasAbastecimento []int `json:"dias_abastecimento" validate:"dive,min=1,max=7"`
	DiasConsumo       []int `json:"dias_consumo"       validate:"dive,min=1,max=7"`
}

type FeriadoRequest struct {
	Data        string  `json:"data" validate:"required,datetime=2006-01-02"`
	Nome        string  `json:"nome" validate:"required,min=3"`
	Observacoes *string `json:"observacoes" validate:"omitempty,max=500"`
}

type RecomputoRequest struct {
	// Force rebuilds the weeks even when non-draft Necessidades reference the
	// year; every one of them gets flagged for revalidation.
	Force bool `json:"force"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type FeriadoResponse struct {
	Data        string  `json:"data"`
	Nome        string  `json:"nome"`
	Observacoes *string `json:"observacoes,omitempty"`
}

type ConfiguracaoResponse struct {
	Ano               int               `json:"ano"`
	DiasUteis         []int             `json:"dias_uteis"`
	DiasAbastecimento []int             `json:"dias_abastecimento"`
	DiasConsumo       []int             `json:"dias_consumo"`
	Feriados          []FeriadoResponse `json:"feriados"`
}

type SemanaResponse struct {
	Numero     int      `json:"numero"`
	Rotulo     string   `json:"rotulo"`
	DataInicio string   `json:"data_inicio"`
	DataFim    string   `json:"data_fim"`
	Dias       []string `json:"dias"`
}

type RecomputoResponse struct {
	Semanas                 []SemanaResponse `json:"semanas"`
	NecessidadesInvalidadas int64            `json:"necessidades_invalidadas"`
}
