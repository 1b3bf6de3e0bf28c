package repository

import (
	"context"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AjusteRepository persists the append-only quantity ledger. There is no
// Update or Delete on purpose — corrections append new entries.
type AjusteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, a *model.Ajuste) error
	ListByNecessidade(ctx context.Context, necessidadeID uuid.UUID) ([]model.Ajuste, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.Ajuste, error)
}

type ajusteRepo struct{ db *gorm.DB }

func NewAjusteRepository(db *gorm.DB) AjusteRepository { return &ajusteRepo{db: db} }

func (r *ajusteRepo) Create(ctx context.Context, tx *gorm.DB, a *model.Ajuste) error {
	return tx.WithContext(ctx).Create(a).Error
}

func (r *ajusteRepo) ListByNecessidade(ctx context.Context, necessidadeID uuid.UUID) ([]model.Ajuste, error) {
	var ajustes []model.Ajuste
	err := r.db.WithContext(ctx).
		Where("necessidade_id = ?", necessidadeID).
		Order("created_at ASC").
		Find(&ajustes).Error
	return ajustes, err
}

func (r *ajusteRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]model.Ajuste, error) {
	var ajustes []model.Ajuste
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&ajustes).Error
	return ajustes, err
}
