package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/dto"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubstituicaoService interface {
	ProporSubstituicao(ctx context.Context, usuario string, req dto.ProporSubstituicaoRequest) (*dto.SubstituicaoResponse, error)
	ResolverSubstituicao(ctx context.Context, usuario string, id uuid.UUID, req dto.ResolverSubstituicaoRequest) (*dto.SubstituicaoResponse, error)
	SugerirCandidatos(ctx context.Context, itemID uuid.UUID) ([]dto.CandidatoResponse, error)
	ListarPorNecessidade(ctx context.Context, necessidadeID uuid.UUID) ([]dto.SubstituicaoResponse, error)
}

type substituicaoService struct {
	repo         repository.SubstituicaoRepository
	necessidades repository.NecessidadeRepository
	perCapita    repository.ProdutoPerCapitaRepository
	ajustes      repository.AjusteRepository
	lock         RecomputoLock
}

func NewSubstituicaoService(
	repo repository.SubstituicaoRepository,
	necessidades repository.NecessidadeRepository,
	perCapita repository.ProdutoPerCapitaRepository,
	ajustes repository.AjusteRepository,
	lock RecomputoLock,
) SubstituicaoService {
	return &substituicaoService{
		repo:         repo,
		necessidades: necessidades,
		perCapita:    perCapita,
		ajustes:      ajustes,
		lock:         lock,
	}
}

// mesma disciplina de guarda das mutacoes de Necessidade
func (s *substituicaoService) guardarNecessidade(ctx context.Context, id uuid.UUID) (*model.Necessidade, error) {
	n, err := s.necessidades.FindByID(ctx, id)
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
	if n.CalendarioDesatualizado {
		return nil, ErrCalendarioDesatualizado
	}
	return n, nil
}

// ── ProporSubstituicao ────────────────────────────────────────────────────────
// Group and unit compatibility only drive SugerirCandidatos; a proposal may
// name any catalogued product. A line carries at most one non-rejected
// Substituicao.

func (s *substituicaoService) ProporSubstituicao(ctx context.Context, usuario string, req dto.ProporSubstituicaoRequest) (*dto.SubstituicaoResponse, error) {
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("item_id invalido: %w", err)
	}
	substitutoID, err := uuid.Parse(req.ProdutoSubstitutoID)
	if err != nil {
		return nil, fmt.Errorf("produto_substituto_id invalido: %w", err)
	}

	item, err := s.necessidades.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	n, err := s.guardarNecessidade(ctx, item.NecessidadeID)
	if err != nil {
		return nil, err
	}

	if existente, err := s.repo.FindAtivaPorItem(ctx, itemID); err == nil && existente != nil {
		return nil, fmt.Errorf("%w: substituicao %s em %s", ErrSubstituicaoAtiva, existente.ID, existente.Status)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if substitutoID == item.ProdutoID {
		return nil, errors.New("produto substituto igual ao original")
	}
	substituto, err := s.perCapita.FindByProdutoID(ctx, substitutoID)
	if err != nil {
		return nil, errors.New("produto substituto nao encontrado na referencia per capita")
	}

	sub := &model.Substituicao{
		ItemID:                itemID,
		NecessidadeID:         n.ID,
		ProdutoOriginalID:     item.ProdutoID,
		ProdutoOriginalNome:   item.ProdutoNome,
		ProdutoSubstitutoID:   substitutoID,
		ProdutoSubstitutoNome: substituto.ProdutoNome,
		UnidadeMedida:         substituto.UnidadeMedida,
		Status:                model.SubstituicaoProposta,
		Autor:                 usuario,
	}
	err = runTx(ctx, s.necessidades.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, sub); err != nil {
			return err
		}
		affected, err := s.necessidades.BumpVersion(ctx, tx, n.ID, req.Versao, map[string]any{
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
	return substituicaoToResponse(sub), nil
}

// ── ResolverSubstituicao ──────────────────────────────────────────────────────
// Acceptance rewrites the line's product in place and appends a ledger entry
// carrying the current quantity over to the new product; the ledger keeps
// referring to the same line either way.

func (s *substituicaoService) ResolverSubstituicao(ctx context.Context, usuario string, id uuid.UUID, req dto.ResolverSubstituicaoRequest) (*dto.SubstituicaoResponse, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubstituicaoProposta {
		return nil, fmt.Errorf("%w: status %s", ErrSubstituicaoResolvida, sub.Status)
	}
	n, err := s.guardarNecessidade(ctx, sub.NecessidadeID)
	if err != nil {
		return nil, err
	}
	item, err := s.necessidades.FindItem(ctx, sub.ItemID)
	if err != nil {
		return nil, err
	}

	status := model.SubstituicaoRejeitada
	if req.Aceitar {
		status = model.SubstituicaoAceita
	}
	agora := time.Now().UTC()

	err = runTx(ctx, s.necessidades.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Resolver(ctx, tx, sub.ID, status, usuario, agora); err != nil {
			return err
		}
		if req.Aceitar {
			if err := s.necessidades.UpdateItemProduto(ctx, tx, sub.ItemID,
				sub.ProdutoSubstitutoID, sub.ProdutoSubstitutoNome, sub.UnidadeMedida, sub.ID); err != nil {
				return err
			}
			// Resolution is a coordination act; the entry records the quantity
			// carried unchanged from the original product to the substitute.
			if err := s.ajustes.Create(ctx, tx, &model.Ajuste{
				NecessidadeID: n.ID,
				ItemID:        sub.ItemID,
				Etapa:         model.EtapaCoordenacao,
				ValorAnterior: item.QuantidadeFinal,
				ValorNovo:     item.QuantidadeFinal,
				Autor:         usuario,
				Motivo: fmt.Sprintf("substituicao %s: %s -> %s",
					sub.ID, sub.ProdutoOriginalNome, sub.ProdutoSubstitutoNome),
			}); err != nil {
				return err
			}
		}
		affected, err := s.necessidades.BumpVersion(ctx, tx, n.ID, req.Versao, map[string]any{
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

	sub.Status = status
	sub.ResolvidoPor = &usuario
	sub.ResolvidoEm = &agora
	return substituicaoToResponse(sub), nil
}

// ── SugerirCandidatos ─────────────────────────────────────────────────────────

func (s *substituicaoService) SugerirCandidatos(ctx context.Context, itemID uuid.UUID) ([]dto.CandidatoResponse, error) {
	item, err := s.necessidades.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	n, err := s.necessidades.FindByID(ctx, item.NecessidadeID)
	if err != nil {
		return nil, err
	}

	compativeis, err := s.perCapita.ListarCompativeis(ctx, n.Grupo, item.UnidadeMedida)
	if err != nil {
		return nil, err
	}
	var candidatos []dto.CandidatoResponse
	for i := range compativeis {
		p := &compativeis[i]
		if p.ProdutoID == item.ProdutoID {
			continue
		}
		pc, ok := p.PerCapita(n.Periodo)
		if !ok {
			continue
		}
		candidatos = append(candidatos, dto.CandidatoResponse{
			ProdutoID:     p.ProdutoID.String(),
			ProdutoNome:   p.ProdutoNome,
			UnidadeMedida: p.UnidadeMedida,
			PerCapita:     pc,
		})
	}
	return candidatos, nil
}

func (s *substituicaoService) ListarPorNecessidade(ctx context.Context, necessidadeID uuid.UUID) ([]dto.SubstituicaoResponse, error) {
	subs, err := s.repo.ListByNecessidade(ctx, necessidadeID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SubstituicaoResponse, len(subs))
	for i := range subs {
		resp[i] = *substituicaoToResponse(&subs[i])
	}
	return resp, nil
}

func substituicaoToResponse(s *model.Substituicao) *dto.SubstituicaoResponse {
	resp := &dto.SubstituicaoResponse{
		ID:                    s.ID.String(),
		NecessidadeID:         s.NecessidadeID.String(),
		ItemID:                s.ItemID.String(),
		ProdutoOriginalID:     s.ProdutoOriginalID.String(),
		ProdutoOriginalNome:   s.ProdutoOriginalNome,
		ProdutoSubstitutoID:   s.ProdutoSubstitutoID.String(),
		ProdutoSubstitutoNome: s.ProdutoSubstitutoNome,
		UnidadeMedida:         s.UnidadeMedida,
		Status:                s.Status,
		Autor:                 s.Autor,
		CreatedAt:             s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if s.ResolvidoPor != nil {
		resp.ResolvidoPor = s.ResolvidoPor
	}
	if s.ResolvidoEm != nil {
		em := s.ResolvidoEm.Format("2006-01-02T15:04:05Z07:00")
		resp.ResolvidoEm = &em
	}
	return resp
}
