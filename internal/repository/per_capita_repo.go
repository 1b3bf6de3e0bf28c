package repository

import (
	"context"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProdutoPerCapitaRepository is the read-only per-capita reference lookup.
// Rows are maintained by the master-data application; this core never writes.
type ProdutoPerCapitaRepository interface {
	FindByProdutoID(ctx context.Context, produtoID uuid.UUID) (*model.ProdutoPerCapita, error)
	ListarPorGrupo(ctx context.Context, grupo string) ([]model.ProdutoPerCapita, error)
	ListarCompativeis(ctx context.Context, grupo, unidadeMedida string) ([]model.ProdutoPerCapita, error)
	ListarGrupos(ctx context.Context) ([]string, error)
}

type perCapitaRepo struct{ db *gorm.DB }

func NewProdutoPerCapitaRepository(db *gorm.DB) ProdutoPerCapitaRepository {
	return &perCapitaRepo{db: db}
}

func (r *perCapitaRepo) FindByProdutoID(ctx context.Context, produtoID uuid.UUID) (*model.ProdutoPerCapita, error) {
	var p model.ProdutoPerCapita
	err := r.db.WithContext(ctx).
		Where("produto_id = ? AND ativo = true", produtoID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *perCapitaRepo) ListarPorGrupo(ctx context.Context, grupo string) ([]model.ProdutoPerCapita, error) {
	var produtos []model.ProdutoPerCapita
	err := r.db.WithContext(ctx).
		Where("grupo = ? AND ativo = true", grupo).
		Order("produto_nome ASC").
		Find(&produtos).Error
	return produtos, err
}

func (r *perCapitaRepo) ListarCompativeis(ctx context.Context, grupo, unidadeMedida string) ([]model.ProdutoPerCapita, error) {
	var produtos []model.ProdutoPerCapita
	err := r.db.WithContext(ctx).
		Where("grupo = ? AND unidade_medida = ? AND ativo = true", grupo, unidadeMedida).
		Order("produto_nome ASC").
		Find(&produtos).Error
	return produtos, err
}

func (r *perCapitaRepo) ListarGrupos(ctx context.Context) ([]string, error) {
	var grupos []string
	err := r.db.WithContext(ctx).Model(&model.ProdutoPerCapita{}).
		Distinct("grupo").
		Where("ativo = true").
		Order("grupo").
		Pluck("grupo", &grupos).Error
	return grupos, err
}
