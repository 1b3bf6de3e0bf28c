package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario is the actor identity referenced by every mutating operation.
// Rol: "nutricionista" | "coordenacao" | "logistica" | "administrador".
// Sessions and login live in the central foods backend; this service only
// seeds operators and validates their tokens.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nome         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Ativo        bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
