package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ajuste is an immutable entry in the quantity ledger. Entries are NEVER
// updated or deleted — every change to a line's quantity appends a new row,
// and the ledger survives even when the line's product is later substituted.
type Ajuste struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NecessidadeID uuid.UUID `gorm:"type:uuid;index;not null"`
	ItemID        uuid.UUID `gorm:"type:uuid;index;not null"`
	// Etapa: nutricionista | coordenacao | logistica
	Etapa         string          `gorm:"type:varchar(20);not null"`
	ValorAnterior decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	ValorNovo     decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Autor         string          `gorm:"not null"`
	Motivo        string          `gorm:"not null"`
	CreatedAt     time.Time
}

// Substitution statuses.
const (
	SubstituicaoProposta  = "proposta"
	SubstituicaoAceita    = "aceita"
	SubstituicaoRejeitada = "rejeitada"
)

// Substituicao records the replacement of one product by another on a specific
// need line. A line holds at most one non-rejected Substituicao at a time;
// rejected ones are retained for the audit trail.
type Substituicao struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ItemID                uuid.UUID `gorm:"type:uuid;index;not null"`
	NecessidadeID         uuid.UUID `gorm:"type:uuid;index;not null"`
	ProdutoOriginalID     uuid.UUID `gorm:"type:uuid;not null"`
	ProdutoOriginalNome   string    `gorm:"not null"`
	ProdutoSubstitutoID   uuid.UUID `gorm:"type:uuid;not null"`
	ProdutoSubstitutoNome string    `gorm:"not null"`
	UnidadeMedida         string    `gorm:"not null"`
	Status                string    `gorm:"type:varchar(20);not null;default:'proposta'"`
	Autor                 string    `gorm:"not null"`
	ResolvidoPor          *string
	ResolvidoEm           *time.Time
	CreatedAt             time.Time
}
