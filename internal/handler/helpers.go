package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/apierror"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondServiceError maps the service error taxonomy onto HTTP codes.
// Anything unrecognized becomes a 400 with the error message — services never
// surface raw DB or infra errors.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Registro nao encontrado"))

	case errors.Is(err, service.ErrPerCapitaAusente),
		errors.Is(err, service.ErrNecessidadeVazia),
		errors.Is(err, service.ErrConfiguracaoInvalida),
		errors.Is(err, service.ErrPeriodoInvalido):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewCode(codeFor(err), err.Error()))

	case errors.Is(err, service.ErrTransicaoInvalida),
		errors.Is(err, service.ErrNecessidadeEncerrada),
		errors.Is(err, service.ErrNecessidadeDuplicada),
		errors.Is(err, service.ErrFeriadoDuplicado),
		errors.Is(err, service.ErrSubstituicaoPendente),
		errors.Is(err, service.ErrSubstituicaoAtiva),
		errors.Is(err, service.ErrSubstituicaoResolvida),
		errors.Is(err, service.ErrModificacaoConcorrente),
		errors.Is(err, service.ErrNecessidadesVinculadas),
		errors.Is(err, service.ErrCalendarioDesatualizado):
		c.JSON(http.StatusConflict, apierror.NewCode(codeFor(err), err.Error()))

	case errors.Is(err, service.ErrRecomputoEmAndamento):
		c.JSON(http.StatusLocked, apierror.NewCode(codeFor(err), err.Error()))

	case errors.Is(err, service.ErrUpstreamIndisponivel):
		c.JSON(http.StatusBadGateway, apierror.NewCode(codeFor(err), "Dependencia externa indisponivel"))

	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}

// codeFor returns the machine-readable identifier the role screens key on.
func codeFor(err error) string {
	for sentinel, code := range map[error]string{
		service.ErrPerCapitaAusente:        "PER_CAPITA_AUSENTE",
		service.ErrNecessidadeVazia:        "NECESSIDADE_VAZIA",
		service.ErrNecessidadeDuplicada:    "NECESSIDADE_DUPLICADA",
		service.ErrFeriadoDuplicado:        "FERIADO_DUPLICADO",
		service.ErrConfiguracaoInvalida:    "CONFIGURACAO_INVALIDA",
		service.ErrPeriodoInvalido:         "PERIODO_INVALIDO",
		service.ErrTransicaoInvalida:       "TRANSICAO_INVALIDA",
		service.ErrNecessidadeEncerrada:    "NECESSIDADE_ENCERRADA",
		service.ErrSubstituicaoPendente:    "SUBSTITUICAO_PENDENTE",
		service.ErrSubstituicaoAtiva:       "SUBSTITUICAO_ATIVA",
		service.ErrSubstituicaoResolvida:   "SUBSTITUICAO_RESOLVIDA",
		service.ErrModificacaoConcorrente:  "MODIFICACAO_CONCORRENTE",
		service.ErrRecomputoEmAndamento:    "RECOMPUTO_EM_ANDAMENTO",
		service.ErrCalendarioDesatualizado: "CALENDARIO_DESATUALIZADO",
		service.ErrNecessidadesVinculadas:  "NECESSIDADES_VINCULADAS",
		service.ErrUpstreamIndisponivel:    "UPSTREAM_INDISPONIVEL",
	} {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ""
}
