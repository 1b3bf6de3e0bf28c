package model

import (
	"time"

	"github.com/google/uuid"
)

// CalendarioDia is one calendar date within a year. Role flags are derived
// from the weekday sets configured for the year; a feriado keeps all roles
// cleared regardless of configuration.
type CalendarioDia struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Data time.Time `gorm:"type:date;uniqueIndex;not null"`
	Ano  int       `gorm:"index;not null"`
	// DiaSemanaNumero: 1=segunda … 7=domingo (ISO weekday)
	DiaSemanaNumero  int  `gorm:"not null"`
	DiaUtil          bool `gorm:"not null;default:false"`
	DiaAbastecimento bool `gorm:"not null;default:false"`
	DiaConsumo       bool `gorm:"not null;default:false"`
	Feriado          bool `gorm:"not null;default:false"`
	NomeFeriado      *string
	Observacoes      *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SemanaConsumo groups contiguous consumption days of a year under a sequential
// number. Weeks are rebuilt as a whole by an explicit recompute — never
// implicitly on read — because Necessidades reference the week number.
type SemanaConsumo struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Ano    int       `gorm:"index:idx_semana_ano_numero,unique;not null"`
	Numero int       `gorm:"index:idx_semana_ano_numero,unique;not null"`
	// Rotulo: "DD/MM a DD/MM"
	Rotulo     string    `gorm:"not null"`
	DataInicio time.Time `gorm:"type:date;not null"`
	DataFim    time.Time `gorm:"type:date;not null"`
	CreatedAt  time.Time

	Dias []SemanaConsumoDia `gorm:"foreignKey:SemanaID;constraint:OnDelete:CASCADE"`
}

// SemanaConsumoDia is one member date of a SemanaConsumo, kept in date order.
type SemanaConsumoDia struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SemanaID uuid.UUID `gorm:"type:uuid;index;not null"`
	Data     time.Time `gorm:"type:date;not null"`
	Posicao  int       `gorm:"not null"`
}
