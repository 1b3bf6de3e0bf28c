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

type NecessidadesHandler struct {
	svc  service.NecessidadeService
	subs service.SubstituicaoService
}

func NewNecessidadesHandler(svc service.NecessidadeService, subs service.SubstituicaoService) *NecessidadesHandler {
	return &NecessidadesHandler{svc: svc, subs: subs}
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// CriarRascunho godoc
// @Summary      Criar rascunho de necessidade
// @Description  Calcula uma linha por produto do grupo com per capita definido para o periodo: quantidade = per_capita x frequencia, com media movel de refeicoes como referencia.
// @Tags         necessidades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CriarNecessidadeRequest true "Escola, grupo, periodo e semana"
// @Success      201  {object} dto.NecessidadeResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/necessidades [post]
func (h *NecessidadesHandler) CriarRascunho(c *gin.Context) {
	var req dto.CriarNecessidadeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.CriarRascunho(c.Request.Context(), claims.Username, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obter godoc
// @Summary      Detalhe da necessidade
// @Tags         necessidades
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da necessidade"
// @Success      200 {object} dto.NecessidadeResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/necessidades/{id} [get]
func (h *NecessidadesHandler) Obter(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObterNecessidade(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar necessidades
// @Description  Lista paginada filtrada por escola, grupo, status, ano e semana.
// @Tags         necessidades
// @Produce      json
// @Security     BearerAuth
// @Param        escola_id query string false "UUID da escola"
// @Param        grupo     query string false "Grupo de produtos"
// @Param        status    query string false "Status do workflow | all"
// @Param        ano       query int    false "Ano"
// @Param        semana    query int    false "Numero da semana"
// @Param        page      query int    false "Pagina (default 1)"
// @Param        limit     query int    false "Registros por pagina (default 50)"
// @Success      200       {object} dto.NecessidadeListResponse
// @Router       /v1/necessidades [get]
func (h *NecessidadesHandler) Listar(c *gin.Context) {
	var filter dto.NecessidadeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListarNecessidades(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// IncluirProdutoExtra godoc
// @Summary      Incluir produto extra no rascunho
// @Description  Acrescenta uma linha manual ao rascunho. O produto precisa existir na referencia per capita e nao pode repetir linha existente.
// @Tags         necessidades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                         true "UUID da necessidade"
// @Param        body body dto.IncluirProdutoExtraRequest true "Produto e quantidade"
// @Success      200  {object} dto.NecessidadeResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/necessidades/{id}/itens [post]
func (h *NecessidadesHandler) IncluirProdutoExtra(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.IncluirProdutoExtraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.IncluirProdutoExtra(c.Request.Context(), claims.Username, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AjustarItem godoc
// @Summary      Ajustar quantidade de um item
// @Description  Registra o ajuste no razao imutavel e reescreve a quantidade final. Ajuste da coordenacao em EM_ANALISE avanca o workflow.
// @Tags         necessidades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path string                 true "UUID da necessidade"
// @Param        itemId path string                 true "UUID do item"
// @Param        body   body dto.AjustarItemRequest true "Etapa, novo valor e motivo"
// @Success      200    {object} dto.NecessidadeResponse
// @Failure      409    {object} apierror.APIError
// @Router       /v1/necessidades/{id}/itens/{itemId} [put]
func (h *NecessidadesHandler) AjustarItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}
	var req dto.AjustarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.AjustarItem(c.Request.Context(), claims.Username, id, itemID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Enviar godoc
// @Summary      Enviar para coordenacao
// @Tags         necessidades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string               true "UUID da necessidade"
// @Param        body body dto.TransicaoRequest true "Versao lida"
// @Success      200  {object} dto.NecessidadeResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/necessidades/{id}/enviar [post]
func (h *NecessidadesHandler) Enviar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TransicaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.EnviarParaCoordenacao(c.Request.Context(), claims.Username, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Liberar godoc
// @Summary      Liberar para logistica
// @Description  Transicao atomica: carimba a quantidade liberada em todas as linhas e despacha o hand-off assincrono para a plataforma de logistica.
// @Tags         necessidades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string               true "UUID da necessidade"
// @Param        body body dto.TransicaoRequest true "Versao lida"
// @Success      200  {object} dto.NecessidadeResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/necessidades/{id}/liberar [post]
func (h *NecessidadesHandler) Liberar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TransicaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.LiberarParaLogistica(c.Request.Context(), claims.Username, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Rejeitar godoc
// @Summary      Rejeitar necessidade
// @Tags         necessidades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string              true "UUID da necessidade"
// @Param        body body dto.RejeitarRequest true "Motivo e versao lida"
// @Success      200  {object} dto.NecessidadeResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/necessidades/{id}/rejeitar [post]
func (h *NecessidadesHandler) Rejeitar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.RejeitarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Rejeitar(c.Request.Context(), claims.Username, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Revalidar godoc
// @Summary      Revalidar apos recomputo do calendario
// @Description  Confirma a necessidade contra as semanas recomputadas, atualiza o rotulo da semana e limpa a marca de desatualizacao.
// @Tags         necessidades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string               true "UUID da necessidade"
// @Param        body body dto.TransicaoRequest true "Versao lida"
// @Success      200  {object} dto.NecessidadeResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/necessidades/{id}/revalidar [post]
func (h *NecessidadesHandler) Revalidar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TransicaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.RevalidarCalendario(c.Request.Context(), claims.Username, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarAjustes godoc
// @Summary      Razao de ajustes da necessidade
// @Tags         necessidades
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da necessidade"
// @Success      200 {array} dto.AjusteResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/necessidades/{id}/ajustes [get]
func (h *NecessidadesHandler) ListarAjustes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarAjustes(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarSubstituicoes godoc
// @Summary      Substituicoes da necessidade
// @Tags         necessidades
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID da necessidade"
// @Success      200 {array} dto.SubstituicaoResponse
// @Router       /v1/necessidades/{id}/substituicoes [get]
func (h *NecessidadesHandler) ListarSubstituicoes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.subs.ListarPorNecessidade(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
