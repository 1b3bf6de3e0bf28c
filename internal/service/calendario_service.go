package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/dto"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/repository"

	"gorm.io/gorm"
)

// RecomputoLock serializes week recomputation per year. The redis-backed
// implementation lives in infra; tests plug an in-memory one.
type RecomputoLock interface {
	TryLock(ctx context.Context, ano int) (bool, error)
	Unlock(ctx context.Context, ano int) error
	Locked(ctx context.Context, ano int) (bool, error)
}

type CalendarioService interface {
	ClassificarAno(ctx context.Context, ano int, req dto.ClassificarAnoRequest) error
	AdicionarFeriado(ctx context.Context, req dto.FeriadoRequest) error
	RemoverFeriado(ctx context.Context, data time.Time) error
	RecomputarSemanasConsumo(ctx context.Context, ano int, force bool) (*dto.RecomputoResponse, error)
	ObterConfiguracao(ctx context.Context, ano int) (*dto.ConfiguracaoResponse, error)
	ListarSemanas(ctx context.Context, ano int) ([]dto.SemanaResponse, error)
}

type calendarioService struct {
	repo         repository.CalendarioRepository
	necessidades repository.NecessidadeRepository
	lock         RecomputoLock
}

func NewCalendarioService(repo repository.CalendarioRepository, necessidades repository.NecessidadeRepository, lock RecomputoLock) CalendarioService {
	return &calendarioService{repo: repo, necessidades: necessidades, lock: lock}
}

// ── ClassificarAno ────────────────────────────────────────────────────────────
// Assigns role flags to every day of the year from three weekday sets
// (1=segunda … 7=domingo). Feriados keep their roles cleared no matter what
// the weekday sets say.

func (s *calendarioService) ClassificarAno(ctx context.Context, ano int, req dto.ClassificarAnoRequest) error {
	if len(req.DiasUteis) == 0 && len(req.DiasAbastecimento) == 0 && len(req.DiasConsumo) == 0 {
		return fmt.Errorf("%w: nenhum dia da semana configurado", ErrConfiguracaoInvalida)
	}
	for _, set := range [][]int{req.DiasUteis, req.DiasAbastecimento, req.DiasConsumo} {
		for _, n := range set {
			if n < 1 || n > 7 {
				return fmt.Errorf("%w: dia da semana %d fora de 1..7", ErrConfiguracaoInvalida, n)
			}
		}
	}

	uteis := make(map[int]bool, len(req.DiasUteis))
	for _, n := range req.DiasUteis {
		uteis[n] = true
	}
	abastecimento := make(map[int]bool, len(req.DiasAbastecimento))
	for _, n := range req.DiasAbastecimento {
		abastecimento[n] = true
	}
	consumo := make(map[int]bool, len(req.DiasConsumo))
	for _, n := range req.DiasConsumo {
		consumo[n] = true
	}

	var dias []model.CalendarioDia
	for d := time.Date(ano, time.January, 1, 0, 0, 0, 0, time.UTC); d.Year() == ano; d = d.AddDate(0, 0, 1) {
		semana := diaSemanaISO(d)
		dias = append(dias, model.CalendarioDia{
			Data:             d,
			Ano:              ano,
			DiaSemanaNumero:  semana,
			DiaUtil:          uteis[semana],
			DiaAbastecimento: abastecimento[semana],
			DiaConsumo:       consumo[semana],
		})
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpsertDias(ctx, tx, dias); err != nil {
			return err
		}
		return s.repo.LimparRolesFeriados(ctx, tx, ano)
	})
}

// diaSemanaISO converts time.Weekday to 1=segunda … 7=domingo.
func diaSemanaISO(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ── Feriados ──────────────────────────────────────────────────────────────────

func (s *calendarioService) AdicionarFeriado(ctx context.Context, req dto.FeriadoRequest) error {
	data, err := time.Parse("2006-01-02", req.Data)
	if err != nil {
		return fmt.Errorf("data invalida: %w", err)
	}
	dia, err := s.repo.FindDia(ctx, data)
	if err != nil {
		return errors.New("data nao encontrada no calendario")
	}
	if dia.Feriado {
		return ErrFeriadoDuplicado
	}

	dia.Feriado = true
	dia.NomeFeriado = &req.Nome
	dia.Observacoes = req.Observacoes
	dia.DiaUtil = false
	dia.DiaAbastecimento = false
	dia.DiaConsumo = false
	return s.repo.UpdateDia(ctx, dia)
}

func (s *calendarioService) RemoverFeriado(ctx context.Context, data time.Time) error {
	dia, err := s.repo.FindDia(ctx, data)
	if err != nil {
		return errors.New("data nao encontrada no calendario")
	}
	if !dia.Feriado {
		return errors.New("data nao esta cadastrada como feriado")
	}

	// Re-derive roles from the year's current weekday configuration.
	cfg, err := s.repo.Configuracao(ctx, dia.Ano)
	if err != nil {
		return err
	}
	dia.Feriado = false
	dia.NomeFeriado = nil
	dia.Observacoes = nil
	dia.DiaUtil = contemDia(cfg.DiasUteis, dia.DiaSemanaNumero)
	dia.DiaAbastecimento = contemDia(cfg.DiasAbastecimento, dia.DiaSemanaNumero)
	dia.DiaConsumo = contemDia(cfg.DiasConsumo, dia.DiaSemanaNumero)
	return s.repo.UpdateDia(ctx, dia)
}

func contemDia(set []int, n int) bool {
	for _, v := range set {
		if v == n {
			return true
		}
	}
	return false
}

// ── RecomputarSemanasConsumo ──────────────────────────────────────────────────
// Destructive by design and only ever explicit: Necessidades reference week
// numbers, so a silent renumbering would corrupt approved aggregates. The
// year-scoped lock also blocks Necessidade mutations for its duration.

func (s *calendarioService) RecomputarSemanasConsumo(ctx context.Context, ano int, force bool) (*dto.RecomputoResponse, error) {
	ok, err := s.lock.TryLock(ctx, ano)
	if err != nil {
		return nil, fmt.Errorf("%w: lock de recomputo: %v", ErrUpstreamIndisponivel, err)
	}
	if !ok {
		return nil, ErrRecomputoEmAndamento
	}
	defer func() { _ = s.lock.Unlock(ctx, ano) }()

	if !force {
		vinculadas, err := s.necessidades.CountNaoRascunhoPorAno(ctx, ano)
		if err != nil {
			return nil, err
		}
		if vinculadas > 0 {
			return nil, fmt.Errorf("%w: %d necessidade(s) no ano %d", ErrNecessidadesVinculadas, vinculadas, ano)
		}
	}

	diasConsumo, err := s.repo.ListDiasConsumo(ctx, ano)
	if err != nil {
		return nil, err
	}
	semanas := agruparSemanas(ano, diasConsumo)

	var invalidadas int64
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteSemanas(ctx, tx, ano); err != nil {
			return err
		}
		for i := range semanas {
			if err := s.repo.CreateSemana(ctx, tx, &semanas[i]); err != nil {
				return err
			}
		}
		if force {
			invalidadas, err = s.necessidades.MarcarCalendarioDesatualizado(ctx, tx, ano)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.RecomputoResponse{NecessidadesInvalidadas: invalidadas}
	for i := range semanas {
		resp.Semanas = append(resp.Semanas, semanaToResponse(&semanas[i]))
	}
	return resp, nil
}

// agruparSemanas walks consumption days in strict date order. A new week
// starts when more than one calendar day was skipped since the previous
// qualifying day, or when the week would span more than 7 calendar days.
func agruparSemanas(ano int, dias []model.CalendarioDia) []model.SemanaConsumo {
	var semanas []model.SemanaConsumo
	var atual []time.Time

	flush := func() {
		if len(atual) == 0 {
			return
		}
		numero := len(semanas) + 1
		inicio, fim := atual[0], atual[len(atual)-1]
		semana := model.SemanaConsumo{
			Ano:        ano,
			Numero:     numero,
			Rotulo:     fmt.Sprintf("%s a %s", inicio.Format("02/01"), fim.Format("02/01")),
			DataInicio: inicio,
			DataFim:    fim,
		}
		for pos, d := range atual {
			semana.Dias = append(semana.Dias, model.SemanaConsumoDia{Data: d, Posicao: pos + 1})
		}
		semanas = append(semanas, semana)
		atual = nil
	}

	for _, dia := range dias {
		d := dia.Data
		if len(atual) > 0 {
			anterior := atual[len(atual)-1]
			gap := int(d.Sub(anterior).Hours() / 24)
			span := int(d.Sub(atual[0]).Hours()/24) + 1
			if gap > 2 || span > 7 {
				flush()
			}
		}
		atual = append(atual, d)
	}
	flush()
	return semanas
}

// ── Leitura ───────────────────────────────────────────────────────────────────

func (s *calendarioService) ObterConfiguracao(ctx context.Context, ano int) (*dto.ConfiguracaoResponse, error) {
	cfg, err := s.repo.Configuracao(ctx, ano)
	if err != nil {
		return nil, err
	}
	feriados, err := s.repo.ListFeriados(ctx, ano)
	if err != nil {
		return nil, err
	}

	resp := &dto.ConfiguracaoResponse{
		Ano:               ano,
		DiasUteis:         cfg.DiasUteis,
		DiasAbastecimento: cfg.DiasAbastecimento,
		DiasConsumo:       cfg.DiasConsumo,
	}
	for _, f := range feriados {
		nome := ""
		if f.NomeFeriado != nil {
			nome = *f.NomeFeriado
		}
		resp.Feriados = append(resp.Feriados, dto.FeriadoResponse{
			Data:        f.Data.Format("2006-01-02"),
			Nome:        nome,
			Observacoes: f.Observacoes,
		})
	}
	return resp, nil
}

func (s *calendarioService) ListarSemanas(ctx context.Context, ano int) ([]dto.SemanaResponse, error) {
	semanas, err := s.repo.ListSemanas(ctx, ano)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SemanaResponse, len(semanas))
	for i := range semanas {
		resp[i] = semanaToResponse(&semanas[i])
	}
	return resp, nil
}

func semanaToResponse(s *model.SemanaConsumo) dto.SemanaResponse {
	resp := dto.SemanaResponse{
		Numero:     s.Numero,
		Rotulo:     s.Rotulo,
		DataInicio: s.DataInicio.Format("2006-01-02"),
		DataFim:    s.DataFim.Format("2006-01-02"),
	}
	for _, d := range s.Dias {
		resp.Dias = append(resp.Dias, d.Data.Format("2006-01-02"))
	}
	return resp
}
