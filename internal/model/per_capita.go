package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Meal periods recognized by the per-capita reference table.
const (
	PeriodoParcialManha = "parcial_manha"
	PeriodoParcialTarde = "parcial_tarde"
	PeriodoLancheManha  = "lanche_manha"
	PeriodoLancheTarde  = "lanche_tarde"
	PeriodoAlmoco       = "almoco"
	PeriodoEJA          = "eja"
)

// PeriodoValido reports whether periodo names a known meal period.
func PeriodoValido(periodo string) bool {
	switch periodo {
	case PeriodoParcialManha, PeriodoParcialTarde, PeriodoLancheManha,
		PeriodoLancheTarde, PeriodoAlmoco, PeriodoEJA:
		return true
	}
	return false
}

// ProdutoPerCapita is the immutable reference row for one product: its group,
// unit of measure and per-person quantity for each meal period. This core
// only reads it — maintenance lives in the master-data application.
type ProdutoPerCapita struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	ProdutoCodigo string    `gorm:"not null"`
	ProdutoNome   string    `gorm:"index;not null"`
	UnidadeMedida string    `gorm:"not null"`
	Grupo         string    `gorm:"index;not null"`

	PerCapitaParcialManha decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	PerCapitaParcialTarde decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	PerCapitaLancheManha  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	PerCapitaLancheTarde  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	PerCapitaAlmoco       decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	PerCapitaEJA          decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`

	Ativo     bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PerCapita returns the quantity-per-person for the given meal period and
// whether the row defines a value (> 0) for it.
func (p *ProdutoPerCapita) PerCapita(periodo string) (decimal.Decimal, bool) {
	var v decimal.Decimal
	switch periodo {
	case PeriodoParcialManha:
		v = p.PerCapitaParcialManha
	case PeriodoParcialTarde:
		v = p.PerCapitaParcialTarde
	case PeriodoLancheManha:
		v = p.PerCapitaLancheManha
	case PeriodoLancheTarde:
		v = p.PerCapitaLancheTarde
	case PeriodoAlmoco:
		v = p.PerCapitaAlmoco
	case PeriodoEJA:
		v = p.PerCapitaEJA
	default:
		return decimal.Zero, false
	}
	return v, v.IsPositive()
}

// RegistroDiario is one day of registered served meals for a school. The
// attendance registry derives frequency counts and rolling averages from it.
type RegistroDiario struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EscolaID          uuid.UUID `gorm:"type:uuid;index:idx_registro_escola_data,unique;not null"`
	Data              time.Time `gorm:"type:date;index:idx_registro_escola_data,unique;not null"`
	RefeicoesServidas int       `gorm:"not null;default:0"`
	CreatedAt         time.Time
}
