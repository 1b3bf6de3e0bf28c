package repository

import (
	"context"
	"errors"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NecessidadeFilter narrows listings for the role screens.
type NecessidadeFilter struct {
	EscolaID     *uuid.UUID
	Grupo        string
	Status       string
	Ano          *int
	SemanaNumero *int
	Page         int
	Limit        int
}

type NecessidadeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, n *model.Necessidade) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Necessidade, error)
	// FindAtiva returns the non-REJEITADA Necessidade for the key, if any.
	FindAtiva(ctx context.Context, escolaID uuid.UUID, grupo string, ano, semana int) (*model.Necessidade, error)
	List(ctx context.Context, filter NecessidadeFilter) ([]model.Necessidade, int64, error)

	CreateItem(ctx context.Context, tx *gorm.DB, item *model.NecessidadeItem) error
	FindItem(ctx context.Context, itemID uuid.UUID) (*model.NecessidadeItem, error)
	UpdateItemQuantidadeFinal(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, quantidade string) error
	UpdateItemProduto(ctx context.Context, tx *gorm.DB, itemID, produtoID uuid.UUID, nome, unidadeMedida string, substituicaoID uuid.UUID) error

	// BumpVersion is the optimistic read-check-write: applies updates and
	// increments versao, guarded by WHERE versao = versaoLida. Zero rows
	// affected means another actor won the race.
	BumpVersion(ctx context.Context, tx *gorm.DB, id uuid.UUID, versaoLida int, updates map[string]any) (int64, error)

	// Liberar stamps quantidade_liberada on every line and moves the header to
	// LIBERADA_LOGISTICA in one transaction — all lines transition or none.
	Liberar(ctx context.Context, id uuid.UUID, versaoLida int, atualizadoPor string) (int64, error)

	CountNaoRascunhoPorAno(ctx context.Context, ano int) (int64, error)
	// MarcarCalendarioDesatualizado flags every non-draft Necessidade of the
	// year after a forced week recompute.
	MarcarCalendarioDesatualizado(ctx context.Context, tx *gorm.DB, ano int) (int64, error)

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type necessidadeRepo struct{ db *gorm.DB }

func NewNecessidadeRepository(db *gorm.DB) NecessidadeRepository { return &necessidadeRepo{db: db} }

func (r *necessidadeRepo) DB() *gorm.DB { return r.db }

func (r *necessidadeRepo) Create(ctx context.Context, tx *gorm.DB, n *model.Necessidade) error {
	return tx.WithContext(ctx).Create(n).Error
}

func (r *necessidadeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Necessidade, error) {
	var n model.Necessidade
	err := r.db.WithContext(ctx).
		Preload("Itens", func(db *gorm.DB) *gorm.DB { return db.Order("produto_nome ASC") }).
		First(&n, id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *necessidadeRepo) FindAtiva(ctx context.Context, escolaID uuid.UUID, grupo string, ano, semana int) (*model.Necessidade, error) {
	var n model.Necessidade
	err := r.db.WithContext(ctx).
		Where("escola_id = ? AND grupo = ? AND ano = ? AND semana_numero = ? AND status <> ?",
			escolaID, grupo, ano, semana, model.StatusRejeitada).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *necessidadeRepo) List(ctx context.Context, filter NecessidadeFilter) ([]model.Necessidade, int64, error) {
	var necessidades []model.Necessidade
	var total int64

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Necessidade{})
	if filter.EscolaID != nil {
		q = q.Where("escola_id = ?", *filter.EscolaID)
	}
	if filter.Grupo != "" {
		q = q.Where("grupo = ?", filter.Grupo)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Ano != nil {
		q = q.Where("ano = ?", *filter.Ano)
	}
	if filter.SemanaNumero != nil {
		q = q.Where("semana_numero = ?", *filter.SemanaNumero)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Itens").
		Order("updated_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&necessidades).Error
	return necessidades, total, err
}

func (r *necessidadeRepo) CreateItem(ctx context.Context, tx *gorm.DB, item *model.NecessidadeItem) error {
	return tx.WithContext(ctx).Create(item).Error
}

func (r *necessidadeRepo) FindItem(ctx context.Context, itemID uuid.UUID) (*model.NecessidadeItem, error) {
	var item model.NecessidadeItem
	err := r.db.WithContext(ctx).First(&item, itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *necessidadeRepo) UpdateItemQuantidadeFinal(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, quantidade string) error {
	return tx.WithContext(ctx).Model(&model.NecessidadeItem{}).
		Where("id = ?", itemID).
		Update("quantidade_final", quantidade).Error
}

func (r *necessidadeRepo) UpdateItemProduto(ctx context.Context, tx *gorm.DB, itemID, produtoID uuid.UUID, nome, unidadeMedida string, substituicaoID uuid.UUID) error {
	return tx.WithContext(ctx).Model(&model.NecessidadeItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"produto_id":      produtoID,
			"produto_nome":    nome,
			"unidade_medida":  unidadeMedida,
			"substituicao_id": substituicaoID,
		}).Error
}

func (r *necessidadeRepo) BumpVersion(ctx context.Context, tx *gorm.DB, id uuid.UUID, versaoLida int, updates map[string]any) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["versao"] = gorm.Expr("versao + 1")
	result := tx.WithContext(ctx).Model(&model.Necessidade{}).
		Where("id = ? AND versao = ?", id, versaoLida).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// errVersaoObsoleta aborts the release transaction when the optimistic check
// fails, forcing a rollback of the line stamps.
var errVersaoObsoleta = errors.New("versao obsoleta")

func (r *necessidadeRepo) Liberar(ctx context.Context, id uuid.UUID, versaoLida int, atualizadoPor string) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.NecessidadeItem{}).
			Where("necessidade_id = ?", id).
			Update("quantidade_liberada", gorm.Expr("quantidade_final")).Error; err != nil {
			return err
		}
		result := tx.Model(&model.Necessidade{}).
			Where("id = ? AND versao = ?", id, versaoLida).
			Updates(map[string]any{
				"status":         model.StatusLiberadaLogistica,
				"versao":         gorm.Expr("versao + 1"),
				"atualizado_por": atualizadoPor,
			})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 {
			return errVersaoObsoleta
		}
		return nil
	})
	if errors.Is(err, errVersaoObsoleta) {
		return 0, nil
	}
	return affected, err
}

func (r *necessidadeRepo) CountNaoRascunhoPorAno(ctx context.Context, ano int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Necessidade{}).
		Where("ano = ? AND status NOT IN (?, ?)", ano, model.StatusRascunho, model.StatusRejeitada).
		Count(&count).Error
	return count, err
}

func (r *necessidadeRepo) MarcarCalendarioDesatualizado(ctx context.Context, tx *gorm.DB, ano int) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Necessidade{}).
		Where("ano = ? AND status NOT IN (?, ?)", ano, model.StatusRascunho, model.StatusRejeitada).
		Update("calendario_desatualizado", true)
	return result.RowsAffected, result.Error
}
