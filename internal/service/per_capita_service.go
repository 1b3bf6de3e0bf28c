package service

import (
	"context"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/dto"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/repository"

	"github.com/google/uuid"
)

// PerCapitaService exposes the read-only reference table to the HTTP surface.
type PerCapitaService interface {
	ListarPerCapita(ctx context.Context, grupo string) (*dto.PerCapitaListResponse, error)
	ObterPerCapita(ctx context.Context, produtoID uuid.UUID) (*dto.PerCapitaResponse, error)
}

type perCapitaService struct {
	repo repository.ProdutoPerCapitaRepository
}

func NewPerCapitaService(repo repository.ProdutoPerCapitaRepository) PerCapitaService {
	return &perCapitaService{repo: repo}
}

func (s *perCapitaService) ListarPerCapita(ctx context.Context, grupo string) (*dto.PerCapitaListResponse, error) {
	grupos, err := s.repo.ListarGrupos(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.PerCapitaListResponse{Grupos: grupos}
	if grupo == "" {
		return resp, nil
	}
	produtos, err := s.repo.ListarPorGrupo(ctx, grupo)
	if err != nil {
		return nil, err
	}
	for i := range produtos {
		resp.Data = append(resp.Data, perCapitaToResponse(&produtos[i]))
	}
	return resp, nil
}

func (s *perCapitaService) ObterPerCapita(ctx context.Context, produtoID uuid.UUID) (*dto.PerCapitaResponse, error) {
	p, err := s.repo.FindByProdutoID(ctx, produtoID)
	if err != nil {
		return nil, err
	}
	resp := perCapitaToResponse(p)
	return &resp, nil
}

func perCapitaToResponse(p *model.ProdutoPerCapita) dto.PerCapitaResponse {
	return dto.PerCapitaResponse{
		ProdutoID:     p.ProdutoID.String(),
		ProdutoNome:   p.ProdutoNome,
		Grupo:         p.Grupo,
		UnidadeMedida: p.UnidadeMedida,
		ParcialManha:  p.PerCapitaParcialManha,
		ParcialTarde:  p.PerCapitaParcialTarde,
		LancheManha:   p.PerCapitaLancheManha,
		LancheTarde:   p.PerCapitaLancheTarde,
		Almoco:        p.PerCapitaAlmoco,
		EJA:           p.PerCapitaEJA,
	}
}
