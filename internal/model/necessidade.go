package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Workflow statuses of a Necessidade. The original system compared free-form
// strings ('NEC', 'NEC NUTRI', 'CONF COORD', …) ad hoc in every screen; here
// the set is closed and transitions live in one table below.
const (
	StatusRascunho            = "RASCUNHO"
	StatusEmAnalise           = "EM_ANALISE"
	StatusAjustadaCoordenacao = "AJUSTADA_COORDENACAO"
	StatusLiberadaLogistica   = "LIBERADA_LOGISTICA"
	StatusRejeitada           = "REJEITADA"
)

// Workflow actions.
const (
	AcaoEnviar             = "enviar_para_coordenacao"
	AcaoAjustarCoordenacao = "ajustar_coordenacao"
	AcaoLiberar            = "liberar_para_logistica"
	AcaoRejeitar           = "rejeitar"
)

// Adjustment stages, in pipeline order.
const (
	EtapaNutricionista = "nutricionista"
	EtapaCoordenacao   = "coordenacao"
	EtapaLogistica     = "logistica"
)

// transicoes is the single source of truth for (status, acao) → next status.
// No caller can invent an edge that is not listed here.
var transicoes = map[string]map[string]string{
	StatusRascunho: {
		AcaoEnviar:   StatusEmAnalise,
		AcaoRejeitar: StatusRejeitada,
	},
	StatusEmAnalise: {
		AcaoAjustarCoordenacao: StatusAjustadaCoordenacao,
		AcaoRejeitar:           StatusRejeitada,
	},
	StatusAjustadaCoordenacao: {
		AcaoLiberar:  StatusLiberadaLogistica,
		AcaoRejeitar: StatusRejeitada,
	},
}

// ProximoStatus resolves the transition table. ok=false means the edge does
// not exist and the caller must fail without touching the aggregate.
func ProximoStatus(atual, acao string) (string, bool) {
	next, ok := transicoes[atual][acao]
	return next, ok
}

// StatusTerminal reports whether no further transitions leave the status.
func StatusTerminal(status string) bool {
	return status == StatusLiberadaLogistica || status == StatusRejeitada
}

// etapaStatus maps each adjustment stage to the statuses in which that stage
// is allowed to record adjustments.
var etapaStatus = map[string][]string{
	EtapaNutricionista: {StatusRascunho},
	EtapaCoordenacao:   {StatusEmAnalise, StatusAjustadaCoordenacao},
	EtapaLogistica:     {StatusAjustadaCoordenacao},
}

// EtapaPermitida reports whether the stage may adjust while the Necessidade
// is in the given status.
func EtapaPermitida(etapa, status string) bool {
	for _, s := range etapaStatus[etapa] {
		if s == status {
			return true
		}
	}
	return false
}

// Line origins.
const (
	OrigemCalculada = "calculada"
	OrigemManual    = "manual"
)

// Necessidade is the aggregate requirement of products for one school,
// product group and consumption week. Versao is the optimistic-concurrency
// counter: every mutation bumps it and fails when the read version is stale.
type Necessidade struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EscolaID     uuid.UUID `gorm:"type:uuid;index;not null"`
	Grupo        string    `gorm:"index;not null"`
	Periodo      string    `gorm:"not null"`
	Ano          int       `gorm:"index;not null"`
	SemanaNumero int       `gorm:"not null"`
	SemanaRotulo string    `gorm:"not null"`
	Status       string    `gorm:"type:varchar(30);not null;default:'RASCUNHO'"`
	Versao       int       `gorm:"not null;default:1"`
	// CalendarioDesatualizado is set when a forced week recompute invalidates
	// the referenced week boundaries; mutations stay blocked until an operator
	// revalidates the aggregate.
	CalendarioDesatualizado bool `gorm:"not null;default:false"`
	MotivoRejeicao          *string
	CriadoPor               string `gorm:"not null"`
	AtualizadoPor           string `gorm:"not null"`
	CreatedAt               time.Time
	UpdatedAt               time.Time

	Itens []NecessidadeItem `gorm:"foreignKey:NecessidadeID;constraint:OnDelete:CASCADE"`
}

// NecessidadeItem is one product row within a Necessidade.
// QuantidadeFinal is derived: the base quantity unless an Ajuste overrode it.
type NecessidadeItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NecessidadeID uuid.UUID `gorm:"type:uuid;index;not null"`
	ProdutoID     uuid.UUID `gorm:"type:uuid;not null"`
	ProdutoNome   string    `gorm:"not null"`
	UnidadeMedida string    `gorm:"not null"`

	PerCapita decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	// Frequencia: attendance-qualifying days within the consumption week.
	// FrequenciaEstimada marks the calendar-only fallback.
	Frequencia         int  `gorm:"not null;default:0"`
	FrequenciaEstimada bool `gorm:"not null;default:false"`
	// MediaPeriodo: rolling average served count over the trailing window.
	MediaPeriodo decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	SemHistorico bool            `gorm:"not null;default:false"`

	QuantidadeBase  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	QuantidadeFinal decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	// QuantidadeLiberada is stamped on every line inside the release
	// transaction — all lines or none.
	QuantidadeLiberada *decimal.Decimal `gorm:"type:decimal(12,3)"`

	Origem         string     `gorm:"type:varchar(20);not null;default:'calculada'"`
	SubstituicaoID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
