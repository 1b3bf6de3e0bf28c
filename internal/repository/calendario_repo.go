package repository

import (
	"context"
	"time"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfiguracaoAno holds the weekday sets currently in effect for a year,
// derived from the stored day flags (same shape the original configuration
// screen reads back).
type ConfiguracaoAno struct {
	DiasUteis         []int
	DiasAbastecimento []int
	DiasConsumo       []int
}

type CalendarioRepository interface {
	DB() *gorm.DB
	UpsertDias(ctx context.Context, tx *gorm.DB, dias []model.CalendarioDia) error
	FindDia(ctx context.Context, data time.Time) (*model.CalendarioDia, error)
	UpdateDia(ctx context.Context, dia *model.CalendarioDia) error
	ListDiasConsumo(ctx context.Context, ano int) ([]model.CalendarioDia, error)
	ListFeriados(ctx context.Context, ano int) ([]model.CalendarioDia, error)
	Configuracao(ctx context.Context, ano int) (*ConfiguracaoAno, error)
	LimparRolesFeriados(ctx context.Context, tx *gorm.DB, ano int) error

	DeleteSemanas(ctx context.Context, tx *gorm.DB, ano int) error
	CreateSemana(ctx context.Context, tx *gorm.DB, semana *model.SemanaConsumo) error
	ListSemanas(ctx context.Context, ano int) ([]model.SemanaConsumo, error)
	FindSemana(ctx context.Context, ano, numero int) (*model.SemanaConsumo, error)
}

type calendarioRepo struct{ db *gorm.DB }

func NewCalendarioRepository(db *gorm.DB) CalendarioRepository { return &calendarioRepo{db: db} }

func (r *calendarioRepo) DB() *gorm.DB { return r.db }

func (r *calendarioRepo) UpsertDias(ctx context.Context, tx *gorm.DB, dias []model.CalendarioDia) error {
	// Role flags are overwritten on conflict; feriado and its metadata are
	// preserved so reclassifying a year never silently drops holidays.
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "data"}},
		DoUpdates: clause.AssignmentColumns([]string{"dia_util", "dia_abastecimento", "dia_consumo", "updated_at"}),
	}).CreateInBatches(dias, 200).Error
}

func (r *calendarioRepo) FindDia(ctx context.Context, data time.Time) (*model.CalendarioDia, error) {
	var d model.CalendarioDia
	err := r.db.WithContext(ctx).Where("data = ?", data.Format("2006-01-02")).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *calendarioRepo) UpdateDia(ctx context.Context, dia *model.CalendarioDia) error {
	// Save with Select so clearing booleans and nil pointers is persisted.
	return r.db.WithContext(ctx).Model(dia).
		Select("dia_util", "dia_abastecimento", "dia_consumo", "feriado", "nome_feriado", "observacoes").
		Updates(dia).Error
}

func (r *calendarioRepo) ListDiasConsumo(ctx context.Context, ano int) ([]model.CalendarioDia, error) {
	var dias []model.CalendarioDia
	err := r.db.WithContext(ctx).
		Where("ano = ? AND dia_consumo = true AND feriado = false", ano).
		Order("data ASC").
		Find(&dias).Error
	return dias, err
}

func (r *calendarioRepo) ListFeriados(ctx context.Context, ano int) ([]model.CalendarioDia, error) {
	var dias []model.CalendarioDia
	err := r.db.WithContext(ctx).
		Where("ano = ? AND feriado = true", ano).
		Order("data ASC").
		Find(&dias).Error
	return dias, err
}

func (r *calendarioRepo) Configuracao(ctx context.Context, ano int) (*ConfiguracaoAno, error) {
	cfg := &ConfiguracaoAno{}
	queries := []struct {
		flag string
		dest *[]int
	}{
		{"dia_util", &cfg.DiasUteis},
		{"dia_abastecimento", &cfg.DiasAbastecimento},
		{"dia_consumo", &cfg.DiasConsumo},
	}
	for _, q := range queries {
		err := r.db.WithContext(ctx).Model(&model.CalendarioDia{}).
			Distinct("dia_semana_numero").
			Where("ano = ? AND "+q.flag+" = true AND feriado = false", ano).
			Order("dia_semana_numero").
			Pluck("dia_semana_numero", q.dest).Error
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (r *calendarioRepo) LimparRolesFeriados(ctx context.Context, tx *gorm.DB, ano int) error {
	// UpsertDias reassigns role flags on conflict; holidays must stay inert.
	return tx.WithContext(ctx).Model(&model.CalendarioDia{}).
		Where("ano = ? AND feriado = true", ano).
		Updates(map[string]interface{}{
			"dia_util":          false,
			"dia_abastecimento": false,
			"dia_consumo":       false,
		}).Error
}

func (r *calendarioRepo) DeleteSemanas(ctx context.Context, tx *gorm.DB, ano int) error {
	// Member dates cascade via FK.
	return tx.WithContext(ctx).Where("ano = ?", ano).Delete(&model.SemanaConsumo{}).Error
}

func (r *calendarioRepo) CreateSemana(ctx context.Context, tx *gorm.DB, semana *model.SemanaConsumo) error {
	return tx.WithContext(ctx).Create(semana).Error
}

func (r *calendarioRepo) ListSemanas(ctx context.Context, ano int) ([]model.SemanaConsumo, error) {
	var semanas []model.SemanaConsumo
	err := r.db.WithContext(ctx).
		Preload("Dias", func(db *gorm.DB) *gorm.DB { return db.Order("posicao ASC") }).
		Where("ano = ?", ano).
		Order("numero ASC").
		Find(&semanas).Error
	return semanas, err
}

func (r *calendarioRepo) FindSemana(ctx context.Context, ano, numero int) (*model.SemanaConsumo, error) {
	var s model.SemanaConsumo
	err := r.db.WithContext(ctx).
		Preload("Dias", func(db *gorm.DB) *gorm.DB { return db.Order("posicao ASC") }).
		Where("ano = ? AND numero = ?", ano, numero).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
