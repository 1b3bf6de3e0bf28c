package handler

import (
	"net/http"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/apierror"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/dto"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/middleware"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubstituicoesHandler struct{ svc service.SubstituicaoService }

func NewSubstituicoesHandler(svc service.SubstituicaoService) *SubstituicoesHandler {
	return &SubstituicoesHandler{svc: svc}
}

// Propor godoc
// @Summary      Propor substituicao de produto
// @Description  Propoe trocar o produto de uma linha por outro do catalogo per capita. Grupo e unidade de medida so filtram as sugestoes; a proposta explicita aceita qualquer produto. Uma linha admite no maximo uma substituicao nao-rejeitada.
// @Tags         substituicoes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ProporSubstituicaoRequest true "Linha e produto substituto"
// @Success      201  {object} dto.SubstituicaoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/substituicoes [post]
func (h *SubstituicoesHandler) Propor(c *gin.Context) {
	var req dto.ProporSubstituicaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.ProporSubstituicao(c.Request.Context(), claims.Username, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Resolver godoc
// @Summary      Resolver substituicao proposta
// @Description  Aceita (reescreve o produto da linha e registra a quantidade transportada no historico de ajustes) ou rejeita a proposta. Resolucao e definitiva.
// @Tags         substituicoes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                          true "UUID da substituicao"
// @Param        body body dto.ResolverSubstituicaoRequest true "Decisao e versao lida"
// @Success      200  {object} dto.SubstituicaoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/substituicoes/{id}/resolver [post]
func (h *SubstituicoesHandler) Resolver(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ResolverSubstituicaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.ResolverSubstituicao(c.Request.Context(), claims.Username, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Candidatos godoc
// @Summary      Sugerir produtos substitutos
// @Description  Lista produtos do mesmo grupo e unidade de medida da linha, com per capita definido para o periodo da necessidade.
// @Tags         substituicoes
// @Produce      json
// @Security     BearerAuth
// @Param        item_id query string true "UUID do item"
// @Success      200     {array} dto.CandidatoResponse
// @Failure      404     {object} apierror.APIError
// @Router       /v1/substituicoes/candidatos [get]
func (h *SubstituicoesHandler) Candidatos(c *gin.Context) {
	itemID, err := uuid.Parse(c.Query("item_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("item_id invalido"))
		return
	}
	resp, err := h.svc.SugerirCandidatos(c.Request.Context(), itemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
