package repository

import (
	"context"
	"time"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubstituicaoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Substituicao) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Substituicao, error)
	// FindAtivaPorItem returns the line's non-rejected Substituicao, if any.
	FindAtivaPorItem(ctx context.Context, itemID uuid.UUID) (*model.Substituicao, error)
	HasPendentePorNecessidade(ctx context.Context, necessidadeID uuid.UUID) (bool, error)
	Resolver(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, resolvidoPor string, em time.Time) error
	ListByNecessidade(ctx context.Context, necessidadeID uuid.UUID) ([]model.Substituicao, error)
}

type substituicaoRepo struct{ db *gorm.DB }

func NewSubstituicaoRepository(db *gorm.DB) SubstituicaoRepository {
	return &substituicaoRepo{db: db}
}

func (r *substituicaoRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Substituicao) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *substituicaoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Substituicao, error) {
	var s model.Substituicao
	err := r.db.WithContext(ctx).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *substituicaoRepo) FindAtivaPorItem(ctx context.Context, itemID uuid.UUID) (*model.Substituicao, error) {
	var s model.Substituicao
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND status <> ?", itemID, model.SubstituicaoRejeitada).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *substituicaoRepo) HasPendentePorNecessidade(ctx context.Context, necessidadeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Substituicao{}).
		Where("necessidade_id = ? AND status = ?", necessidadeID, model.SubstituicaoProposta).
		Count(&count).Error
	return count > 0, err
}

func (r *substituicaoRepo) Resolver(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, resolvidoPor string, em time.Time) error {
	return tx.WithContext(ctx).Model(&model.Substituicao{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        status,
			"resolvido_por": resolvidoPor,
			"resolvido_em":  em,
		}).Error
}

func (r *substituicaoRepo) ListByNecessidade(ctx context.Context, necessidadeID uuid.UUID) ([]model.Substituicao, error) {
	var subs []model.Substituicao
	err := r.db.WithContext(ctx).
		Where("necessidade_id = ?", necessidadeID).
		Order("created_at ASC").
		Find(&subs).Error
	return subs, err
}
