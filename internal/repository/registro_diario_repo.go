package repository

import (
	"context"
	"time"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistroDiarioRepository is the attendance registry: registered served-meal
// counts per school and date. Read-only from this core's point of view.
type RegistroDiarioRepository interface {
	// Frequencia counts the attendance-qualifying dates for the school within
	// [de, ate]. Zero rows is a valid answer — the caller decides whether to
	// fall back to a calendar estimate.
	Frequencia(ctx context.Context, escolaID uuid.UUID, de, ate time.Time) (int, error)
	// MediaPeriodo is the rolling average served count over [de, ate].
	// ok=false means no history exists for the window.
	MediaPeriodo(ctx context.Context, escolaID uuid.UUID, de, ate time.Time) (float64, bool, error)
}

type registroDiarioRepo struct{ db *gorm.DB }

func NewRegistroDiarioRepository(db *gorm.DB) RegistroDiarioRepository {
	return &registroDiarioRepo{db: db}
}

func (r *registroDiarioRepo) Frequencia(ctx context.Context, escolaID uuid.UUID, de, ate time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RegistroDiario{}).
		Where("escola_id = ? AND data BETWEEN ? AND ? AND refeicoes_servidas > 0",
			escolaID, de.Format("2006-01-02"), ate.Format("2006-01-02")).
		Count(&count).Error
	return int(count), err
}

func (r *registroDiarioRepo) MediaPeriodo(ctx context.Context, escolaID uuid.UUID, de, ate time.Time) (float64, bool, error) {
	var result struct {
		Media float64
		N     int64
	}
	err := r.db.WithContext(ctx).Model(&model.RegistroDiario{}).
		Select("COALESCE(AVG(refeicoes_servidas), 0) AS media, COUNT(*) AS n").
		Where("escola_id = ? AND data BETWEEN ? AND ?",
			escolaID, de.Format("2006-01-02"), ate.Format("2006-01-02")).
		Scan(&result).Error
	if err != nil {
		return 0, false, err
	}
	return result.Media, result.N > 0, nil
}
