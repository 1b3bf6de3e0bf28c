package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/dto"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/repository"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NecessidadeService interface {
	CriarRascunho(ctx context.Context, usuario string, req dto.CriarNecessidadeRequest) (*dto.NecessidadeResponse, error)
	ObterNecessidade(ctx context.Context, id uuid.UUID) (*dto.NecessidadeResponse, error)
	ListarNecessidades(ctx context.Context, filter dto.NecessidadeFilter) (*dto.NecessidadeListResponse, error)
	ListarAjustes(ctx context.Context, id uuid.UUID) ([]dto.AjusteResponse, error)

	IncluirProdutoExtra(ctx context.Context, usuario string, id uuid.UUID, req dto.IncluirProdutoExtraRequest) (*dto.NecessidadeResponse, error)
	AjustarItem(ctx context.Context, usuario string, id, itemID uuid.UUID, req dto.AjustarItemRequest) (*dto.NecessidadeResponse, error)
	EnviarParaCoordenacao(ctx context.Context, usuario string, id uuid.UUID, req dto.TransicaoRequest) (*dto.NecessidadeResponse, error)
	LiberarParaLogistica(ctx context.Context, usuario string, id uuid.UUID, req dto.TransicaoRequest) (*dto.NecessidadeResponse, error)
	Rejeitar(ctx context.Context, usuario string, id uuid.UUID, req dto.RejeitarRequest) (*dto.NecessidadeResponse, error)
	RevalidarCalendario(ctx context.Context, usuario string, id uuid.UUID, req dto.TransicaoRequest) (*dto.NecessidadeResponse, error)
}

type necessidadeService struct {
	repo          repository.NecessidadeRepository
	calendario    repository.CalendarioRepository
	perCapita     repository.ProdutoPerCapitaRepository
	ajustes       repository.AjusteRepository
	substituicoes repository.SubstituicaoRepository
	calculo       CalculoService
	lock          RecomputoLock
	dispatcher    *worker.Dispatcher
}

func NewNecessidadeService(
	repo repository.NecessidadeRepository,
	calendario repository.CalendarioRepository,
	perCapita repository.ProdutoPerCapitaRepository,
	ajustes repository.AjusteRepository,
	substituicoes repository.SubstituicaoRepository,
	calculo CalculoService,
	lock RecomputoLock,
	dispatcher *worker.Dispatcher,
) NecessidadeService {
	return &necessidadeService{
		repo:          repo,
		calendario:    calendario,
		perCapita:     perCapita,
		ajustes:       ajustes,
		substituicoes: substituicoes,
		calculo:       calculo,
		lock:          lock,
		dispatcher:    dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Guards ────────────────────────────────────────────────────────────────────

// carregarParaMutacao loads the aggregate and applies the guards every
// mutation shares: terminal status, year lock held by a week recompute and,
// when exigirAtualizado, the stale-calendar flag.
func (s *necessidadeService) carregarParaMutacao(ctx context.Context, id uuid.UUID, exigirAtualizado bool) (*model.Necessidade, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.StatusTerminal(n.Status) {
		return nil, fmt.Errorf("%w: %s", ErrNecessidadeEncerrada, n.Status)
	}
	bloqueado, err := s.lock.Locked(ctx, n.Ano)
	if err != nil {
		return nil, fmt.Errorf("%w: lock de recomputo: %v", ErrUpstreamIndisponivel, err)
	}
	if bloqueado {
		return nil, ErrRecomputoEmAndamento
	}
	if exigirAtualizado && n.CalendarioDesatualizado {
		return nil, ErrCalendarioDesatualizado
	}
	return n, nil
}

// ── CriarRascunho ─────────────────────────────────────────────────────────────
// One line per product of the group that defines a per-capita for the meal
// period. Products without a per-capita for the period are skipped, not
// errored — the reference table mixes periods freely.

func (s *necessidadeService) CriarRascunho(ctx context.Context, usuario string, req dto.CriarNecessidadeRequest) (*dto.NecessidadeResponse, error) {
	escolaID, err := uuid.Parse(req.EscolaID)
	if err != nil {
		return nil, fmt.Errorf("escola_id invalido: %w", err)
	}
	if !model.PeriodoValido(req.Periodo) {
		return nil, fmt.Errorf("%w: %s", ErrPeriodoInvalido, req.Periodo)
	}

	bloqueado, err := s.lock.Locked(ctx, req.Ano)
	if err != nil {
		return nil, fmt.Errorf("%w: lock de recomputo: %v", ErrUpstreamIndisponivel, err)
	}
	if bloqueado {
		return nil, ErrRecomputoEmAndamento
	}

	if existente, err := s.repo.FindAtiva(ctx, escolaID, req.Grupo, req.Ano, req.SemanaNumero); err == nil && existente != nil {
		return nil, fmt.Errorf("%w: necessidade %s em %s", ErrNecessidadeDuplicada, existente.ID, existente.Status)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	semana, err := s.calendario.FindSemana(ctx, req.Ano, req.SemanaNumero)
	if err != nil {
		return nil, fmt.Errorf("semana %d/%d nao encontrada no calendario", req.SemanaNumero, req.Ano)
	}

	produtos, err := s.perCapita.ListarPorGrupo(ctx, req.Grupo)
	if err != nil {
		return nil, err
	}

	n := &model.Necessidade{
		EscolaID:      escolaID,
		Grupo:         req.Grupo,
		Periodo:       req.Periodo,
		Ano:           req.Ano,
		SemanaNumero:  req.SemanaNumero,
		SemanaRotulo:  semana.Rotulo,
		Status:        model.StatusRascunho,
		Versao:        1,
		CriadoPor:     usuario,
		AtualizadoPor: usuario,
	}
	for i := range produtos {
		p := &produtos[i]
		if _, ok := p.PerCapita(req.Periodo); !ok {
			continue
		}
		item, err := s.calculo.CalcularRascunho(ctx, escolaID, p, req.Periodo, semana)
		if err != nil {
			return nil, err
		}
		n.Itens = append(n.Itens, *item)
	}
	if len(n.Itens) == 0 {
		return nil, fmt.Errorf("%w: grupo %s sem per capita para %s", ErrNecessidadeVazia, req.Grupo, req.Periodo)
	}

	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, n)
	}); err != nil {
		return nil, err
	}
	return necessidadeToResponse(n), nil
}

// ── IncluirProdutoExtra ───────────────────────────────────────────────────────

func (s *necessidadeService) IncluirProdutoExtra(ctx context.Context, usuario string, id uuid.UUID, req dto.IncluirProdutoExtraRequest) (*dto.NecessidadeResponse, error) {
	n, err := s.carregarParaMutacao(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if n.Status != model.StatusRascunho && n.Status != model.StatusEmAnalise {
		return nil, fmt.Errorf("%w: inclusao manual apenas em %s ou %s, status atual %s",
			ErrTransicaoInvalida, model.StatusRascunho, model.StatusEmAnalise, n.Status)
	}
	if req.Quantidade.IsNegative() || req.Quantidade.IsZero() {
		return nil, errors.New("quantidade deve ser positiva")
	}

	produtoID, err := uuid.Parse(req.ProdutoID)
	if err != nil {
		return nil, fmt.Errorf("produto_id invalido: %w", err)
	}
	produto, err := s.perCapita.FindByProdutoID(ctx, produtoID)
	if err != nil {
		return nil, errors.New("produto nao encontrado na referencia per capita")
	}
	for _, item := range n.Itens {
		if item.ProdutoID == produtoID {
			return nil, errors.New("produto ja presente na necessidade")
		}
	}

	quantidade := Arredondar(req.Quantidade)
	item := &model.NecessidadeItem{
		NecessidadeID:   n.ID,
		ProdutoID:       produtoID,
		ProdutoNome:     produto.ProdutoNome,
		UnidadeMedida:   produto.UnidadeMedida,
		QuantidadeBase:  quantidade,
		QuantidadeFinal: quantidade,
		Origem:          model.OrigemManual,
	}
	if pc, ok := produto.PerCapita(n.Periodo); ok {
		item.PerCapita = pc
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateItem(ctx, tx, item); err != nil {
			return err
		}
		affected, err := s.repo.BumpVersion(ctx, tx, n.ID, req.Versao, map[string]any{
			"atualizado_por": usuario,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrModificacaoConcorrente
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ObterNecessidade(ctx, n.ID)
}

// ── AjustarItem ───────────────────────────────────────────────────────────────
// Appends a ledger entry and rewrites quantidade_final in one transaction.
// A coordination adjustment on EM_ANALISE also advances the workflow, per the
// transition table.

func (s *necessidadeService) AjustarItem(ctx context.Context, usuario string, id, itemID uuid.UUID, req dto.AjustarItemRequest) (*dto.NecessidadeResponse, error) {
	n, err := s.carregarParaMutacao(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !model.EtapaPermitida(req.Etapa, n.Status) {
		return nil, fmt.Errorf("%w: etapa %s nao ajusta em %s", ErrTransicaoInvalida, req.Etapa, n.Status)
	}
	if req.ValorNovo.IsNegative() {
		return nil, errors.New("valor_novo nao pode ser negativo")
	}

	var item *model.NecessidadeItem
	for i := range n.Itens {
		if n.Itens[i].ID == itemID {
			item = &n.Itens[i]
			break
		}
	}
	if item == nil {
		return nil, gorm.ErrRecordNotFound
	}

	valorNovo := Arredondar(req.ValorNovo)
	updates := map[string]any{"atualizado_por": usuario}
	if req.Etapa == model.EtapaCoordenacao {
		if next, ok := model.ProximoStatus(n.Status, model.AcaoAjustarCoordenacao); ok {
			updates["status"] = next
		}
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ajuste := &model.Ajuste{
			NecessidadeID: n.ID,
			ItemID:        itemID,
			Etapa:         req.Etapa,
			ValorAnterior: item.QuantidadeFinal,
			ValorNovo:     valorNovo,
			Autor:         usuario,
			Motivo:        req.Motivo,
		}
		if err := s.ajustes.Create(ctx, tx, ajuste); err != nil {
			return err
		}
		if err := s.repo.UpdateItemQuantidadeFinal(ctx, tx, itemID, valorNovo.String()); err != nil {
			return err
		}
		affected, err := s.repo.BumpVersion(ctx, tx, n.ID, req.Versao, updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrModificacaoConcorrente
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ObterNecessidade(ctx, n.ID)
}

// ── Transicoes ────────────────────────────────────────────────────────────────

func (s *necessidadeService) EnviarParaCoordenacao(ctx context.Context, usuario string, id uuid.UUID, req dto.TransicaoRequest) (*dto.NecessidadeResponse, error) {
	n, err := s.carregarParaMutacao(ctx, id, true)
	if err != nil {
		return nil, err
	}
	next, ok := model.ProximoStatus(n.Status, model.AcaoEnviar)
	if !ok {
		return nil, fmt.Errorf("%w: %s em %s", ErrTransicaoInvalida, model.AcaoEnviar, n.Status)
	}
	if len(n.Itens) == 0 {
		return nil, ErrNecessidadeVazia
	}
	if err := s.exigirSemSubstituicaoPendente(ctx, n.ID); err != nil {
		return nil, err
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		affected, err := s.repo.BumpVersion(ctx, tx, n.ID, req.Versao, map[string]any{
			"status":         next,
			"atualizado_por": usuario,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrModificacaoConcorrente
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ObterNecessidade(ctx, n.ID)
}

func (s *necessidadeService) LiberarParaLogistica(ctx context.Context, usuario string, id uuid.UUID, req dto.TransicaoRequest) (*dto.NecessidadeResponse, error) {
	n, err := s.carregarParaMutacao(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if _, ok := model.ProximoStatus(n.Status, model.AcaoLiberar); !ok {
		return nil, fmt.Errorf("%w: %s em %s", ErrTransicaoInvalida, model.AcaoLiberar, n.Status)
	}
	if err := s.exigirSemSubstituicaoPendente(ctx, n.ID); err != nil {
		return nil, err
	}

	// Single repository transaction: every line gets quantidade_liberada
	// stamped and the header transitions, or nothing happens at all.
	affected, err := s.repo.Liberar(ctx, n.ID, req.Versao, usuario)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrModificacaoConcorrente
	}

	// Async hand-off to logistics (best-effort — fire & forget).
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueLiberacao(ctx, map[string]interface{}{
			"necessidade_id": n.ID.String(),
		})
	}
	return s.ObterNecessidade(ctx, n.ID)
}

func (s *necessidadeService) Rejeitar(ctx context.Context, usuario string, id uuid.UUID, req dto.RejeitarRequest) (*dto.NecessidadeResponse, error) {
	// Rejection stays available on a stale calendar — it is how an operator
	// discards an aggregate that no longer matches the recomputed weeks.
	n, err := s.carregarParaMutacao(ctx, id, false)
	if err != nil {
		return nil, err
	}
	next, ok := model.ProximoStatus(n.Status, model.AcaoRejeitar)
	if !ok {
		return nil, fmt.Errorf("%w: %s em %s", ErrTransicaoInvalida, model.AcaoRejeitar, n.Status)
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		affected, err := s.repo.BumpVersion(ctx, tx, n.ID, req.Versao, map[string]any{
			"status":          next,
			"motivo_rejeicao": req.Motivo,
			"atualizado_por":  usuario,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrModificacaoConcorrente
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ObterNecessidade(ctx, n.ID)
}

// RevalidarCalendario clears the stale flag after an operator confirmed the
// aggregate against the recomputed weeks. Fails when the referenced week
// number no longer exists for the year.
func (s *necessidadeService) RevalidarCalendario(ctx context.Context, usuario string, id uuid.UUID, req dto.TransicaoRequest) (*dto.NecessidadeResponse, error) {
	n, err := s.carregarParaMutacao(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !n.CalendarioDesatualizado {
		return nil, errors.New("necessidade nao esta marcada como desatualizada")
	}

	semana, err := s.calendario.FindSemana(ctx, n.Ano, n.SemanaNumero)
	if err != nil {
		return nil, fmt.Errorf("semana %d/%d nao existe apos o recomputo; rejeite a necessidade",
			n.SemanaNumero, n.Ano)
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		affected, err := s.repo.BumpVersion(ctx, tx, n.ID, req.Versao, map[string]any{
			"calendario_desatualizado": false,
			"semana_rotulo":            semana.Rotulo,
			"atualizado_por":           usuario,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrModificacaoConcorrente
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ObterNecessidade(ctx, n.ID)
}

func (s *necessidadeService) exigirSemSubstituicaoPendente(ctx context.Context, id uuid.UUID) error {
	pendente, err := s.substituicoes.HasPendentePorNecessidade(ctx, id)
	if err != nil {
		return err
	}
	if pendente {
		return ErrSubstituicaoPendente
	}
	return nil
}

// ── Leitura ───────────────────────────────────────────────────────────────────

func (s *necessidadeService) ObterNecessidade(ctx context.Context, id uuid.UUID) (*dto.NecessidadeResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return necessidadeToResponse(n), nil
}

func (s *necessidadeService) ListarNecessidades(ctx context.Context, filter dto.NecessidadeFilter) (*dto.NecessidadeListResponse, error) {
	repoFilter := repository.NecessidadeFilter{
		Grupo:  filter.Grupo,
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.EscolaID != "" {
		escolaID, err := uuid.Parse(filter.EscolaID)
		if err != nil {
			return nil, fmt.Errorf("escola_id invalido: %w", err)
		}
		repoFilter.EscolaID = &escolaID
	}
	if filter.Ano != 0 {
		ano := filter.Ano
		repoFilter.Ano = &ano
	}
	if filter.SemanaNumero != 0 {
		semana := filter.SemanaNumero
		repoFilter.SemanaNumero = &semana
	}

	necessidades, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	resp := &dto.NecessidadeListResponse{
		Data:  make([]dto.NecessidadeResponse, len(necessidades)),
		Total: total,
		Page:  repoFilter.Page,
		Limit: repoFilter.Limit,
	}
	if resp.Page == 0 {
		resp.Page = 1
	}
	if resp.Limit == 0 {
		resp.Limit = 50
	}
	for i := range necessidades {
		resp.Data[i] = *necessidadeToResponse(&necessidades[i])
	}
	return resp, nil
}

func (s *necessidadeService) ListarAjustes(ctx context.Context, id uuid.UUID) ([]dto.AjusteResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	ajustes, err := s.ajustes.ListByNecessidade(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.AjusteResponse, len(ajustes))
	for i, a := range ajustes {
		resp[i] = dto.AjusteResponse{
			ID:            a.ID.String(),
			ItemID:        a.ItemID.String(),
			Etapa:         a.Etapa,
			ValorAnterior: a.ValorAnterior,
			ValorNovo:     a.ValorNovo,
			Autor:         a.Autor,
			Motivo:        a.Motivo,
			CreatedAt:     a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return resp, nil
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func necessidadeToResponse(n *model.Necessidade) *dto.NecessidadeResponse {
	resp := &dto.NecessidadeResponse{
		ID:                      n.ID.String(),
		EscolaID:                n.EscolaID.String(),
		Grupo:                   n.Grupo,
		Periodo:                 n.Periodo,
		Ano:                     n.Ano,
		SemanaNumero:            n.SemanaNumero,
		SemanaRotulo:            n.SemanaRotulo,
		Status:                  n.Status,
		Versao:                  n.Versao,
		CalendarioDesatualizado: n.CalendarioDesatualizado,
		MotivoRejeicao:          n.MotivoRejeicao,
		CriadoPor:               n.CriadoPor,
		AtualizadoPor:           n.AtualizadoPor,
		CreatedAt:               n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:               n.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, item := range n.Itens {
		ir := dto.NecessidadeItemResponse{
			ID:                 item.ID.String(),
			ProdutoID:          item.ProdutoID.String(),
			ProdutoNome:        item.ProdutoNome,
			UnidadeMedida:      item.UnidadeMedida,
			PerCapita:          item.PerCapita,
			Frequencia:         item.Frequencia,
			FrequenciaEstimada: item.FrequenciaEstimada,
			MediaPeriodo:       item.MediaPeriodo,
			SemHistorico:       item.SemHistorico,
			QuantidadeBase:     item.QuantidadeBase,
			QuantidadeFinal:    item.QuantidadeFinal,
			QuantidadeLiberada: item.QuantidadeLiberada,
			Origem:             item.Origem,
		}
		if item.SubstituicaoID != nil {
			sid := item.SubstituicaoID.String()
			ir.SubstituicaoID = &sid
		}
		resp.Itens = append(resp.Itens, ir)
	}
	return resp
}
