package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/apierror"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/dto"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type CalendarioHandler struct{ svc service.CalendarioService }

func NewCalendarioHandler(svc service.CalendarioService) *CalendarioHandler {
	return &CalendarioHandler{svc: svc}
}

func parseAno(c *gin.Context) (int, bool) {
	ano, err := strconv.Atoi(c.Param("ano"))
	if err != nil || ano < 2000 || ano > 2100 {
		c.JSON(http.StatusBadRequest, apierror.New("Ano invalido"))
		return 0, false
	}
	return ano, true
}

// ClassificarAno godoc
// @Summary      Classificar os dias do ano
// @Description  Atribui os papeis (util, abastecimento, consumo) a cada dia do ano a partir dos conjuntos de dias da semana. Feriados permanecem sem papel.
// @Tags         calendario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ano  path int                       true "Ano do calendario"
// @Param        body body dto.ClassificarAnoRequest true "Conjuntos de dias da semana (1=segunda ... 7=domingo)"
// @Success      204
// @Failure      422  {object} apierror.APIError
// @Router       /v1/calendario/{ano}/classificacao [put]
func (h *CalendarioHandler) ClassificarAno(c *gin.Context) {
	ano, ok := parseAno(c)
	if !ok {
		return
	}
	var req dto.ClassificarAnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ClassificarAno(c.Request.Context(), ano, req); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ObterConfiguracao godoc
// @Summary      Configuracao vigente do ano
// @Description  Retorna os conjuntos de dias da semana derivados dos dias classificados, mais os feriados cadastrados.
// @Tags         calendario
// @Produce      json
// @Security     BearerAuth
// @Param        ano path int true "Ano do calendario"
// @Success      200 {object} dto.ConfiguracaoResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/calendario/{ano} [get]
func (h *CalendarioHandler) ObterConfiguracao(c *gin.Context) {
	ano, ok := parseAno(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObterConfiguracao(c.Request.Context(), ano)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdicionarFeriado godoc
// @Summary      Cadastrar feriado
// @Description  Marca a data como feriado e limpa os papeis do dia. Duplicata retorna 409.
// @Tags         calendario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.FeriadoRequest true "Data e nome do feriado"
// @Success      201
// @Failure      409  {object} apierror.APIError
// @Router       /v1/calendario/feriados [post]
func (h *CalendarioHandler) AdicionarFeriado(c *gin.Context) {
	var req dto.FeriadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.AdicionarFeriado(c.Request.Context(), req); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// RemoverFeriado godoc
// @Summary      Remover feriado
// @Description  Desfaz o feriado e rederiva os papeis do dia a partir da configuracao vigente do ano.
// @Tags         calendario
// @Produce      json
// @Security     BearerAuth
// @Param        data path string true "Data YYYY-MM-DD"
// @Success      204
// @Failure      400  {object} apierror.APIError
// @Router       /v1/calendario/feriados/{data} [delete]
func (h *CalendarioHandler) RemoverFeriado(c *gin.Context) {
	data, err := time.Parse("2006-01-02", c.Param("data"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Data invalida, use YYYY-MM-DD"))
		return
	}
	if err := h.svc.RemoverFeriado(c.Request.Context(), data); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListarSemanas godoc
// @Summary      Semanas de consumo do ano
// @Tags         calendario
// @Produce      json
// @Security     BearerAuth
// @Param        ano path int true "Ano do calendario"
// @Success      200 {array} dto.SemanaResponse
// @Router       /v1/calendario/{ano}/semanas [get]
func (h *CalendarioHandler) ListarSemanas(c *gin.Context) {
	ano, ok := parseAno(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarSemanas(c.Request.Context(), ano)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecomputarSemanas godoc
// @Summary      Recomputar semanas de consumo
// @Description  Reconstroi destrutivamente as semanas do ano sob lock exclusivo. Sem force, recusa quando ha necessidades nao-rascunho vinculadas; com force, marca todas para revalidacao.
// @Tags         calendario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        ano  path int                  true  "Ano do calendario"
// @Param        body body dto.RecomputoRequest false "Opcoes do recomputo"
// @Success      200  {object} dto.RecomputoResponse
// @Failure      409  {object} apierror.APIError
// @Failure      423  {object} apierror.APIError
// @Router       /v1/calendario/{ano}/semanas/recomputar [post]
func (h *CalendarioHandler) RecomputarSemanas(c *gin.Context) {
	ano, ok := parseAno(c)
	if !ok {
		return
	}
	var req dto.RecomputoRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecomputarSemanasConsumo(c.Request.Context(), ano, req.Force)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
