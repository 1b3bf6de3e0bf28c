package handler

import (
	"net/http"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/apierror"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PerCapitaHandler struct{ svc service.PerCapitaService }

func NewPerCapitaHandler(svc service.PerCapitaService) *PerCapitaHandler {
	return &PerCapitaHandler{svc: svc}
}

// Listar godoc
// @Summary      Consultar referencia per capita
// @Description  Retorna os grupos disponiveis e, quando informado o grupo, as linhas da referencia com os seis periodos de refeicao.
// @Tags         per-capita
// @Produce      json
// @Security     BearerAuth
// @Param        grupo query string false "Grupo de produtos"
// @Success      200   {object} dto.PerCapitaListResponse
// @Router       /v1/per-capita [get]
func (h *PerCapitaHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarPerCapita(c.Request.Context(), c.Query("grupo"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter godoc
// @Summary      Referencia per capita de um produto
// @Tags         per-capita
// @Produce      json
// @Security     BearerAuth
// @Param        produtoId path string true "UUID do produto"
// @Success      200       {object} dto.PerCapitaResponse
// @Failure      404       {object} apierror.APIError
// @Router       /v1/per-capita/{produtoId} [get]
func (h *PerCapitaHandler) Obter(c *gin.Context) {
	produtoID, err := uuid.Parse(c.Param("produtoId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObterPerCapita(c.Request.Context(), produtoID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
