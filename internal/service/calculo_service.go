package service

import (
	"context"
	"fmt"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculoService is the single home of the necessity formula. Every caller —
// draft creation, role screens, exports — consumes this result; nobody
// reimplements the arithmetic (the original spread it across UI hooks).
type CalculoService interface {
	CalcularRascunho(ctx context.Context, escolaID uuid.UUID, produto *model.ProdutoPerCapita, periodo string, semana *model.SemanaConsumo) (*model.NecessidadeItem, error)
}

type calculoService struct {
	registros     repository.RegistroDiarioRepository
	janelaSemanas int
}

// NewCalculoService builds the calculator. janelaSemanas is the trailing
// window, in weeks, for the rolling served-meals average.
func NewCalculoService(registros repository.RegistroDiarioRepository, janelaSemanas int) CalculoService {
	if janelaSemanas <= 0 {
		janelaSemanas = 4
	}
	return &calculoService{registros: registros, janelaSemanas: janelaSemanas}
}

// Arredondar applies the quantity rounding policy: 3 fractional digits,
// half-up. Kept as one function so a policy change is a one-line edit.
func Arredondar(d decimal.Decimal) decimal.Decimal {
	return d.Round(3)
}

// CalcularRascunho derives one draft line:
//
//	quantidade_base = per_capita × frequencia
//
// Frequencia comes from the attendance registry; with no registered data it
// falls back to the week's consumption-day count, flagged estimada. The
// rolling average is informational and never enters the base quantity.
func (s *calculoService) CalcularRascunho(ctx context.Context, escolaID uuid.UUID, produto *model.ProdutoPerCapita, periodo string, semana *model.SemanaConsumo) (*model.NecessidadeItem, error) {
	if !model.PeriodoValido(periodo) {
		return nil, fmt.Errorf("%w: %s", ErrPeriodoInvalido, periodo)
	}

	perCapita, ok := produto.PerCapita(periodo)
	if !ok {
		return nil, fmt.Errorf("%w: produto %s, periodo %s", ErrPerCapitaAusente, produto.ProdutoNome, periodo)
	}

	frequencia, err := s.registros.Frequencia(ctx, escolaID, semana.DataInicio, semana.DataFim)
	if err != nil {
		return nil, fmt.Errorf("%w: frequencia: %v", ErrUpstreamIndisponivel, err)
	}
	estimada := false
	if frequencia == 0 {
		// Calendar-only estimate: one attendance per consumption day.
		frequencia = len(semana.Dias)
		estimada = true
	}

	de := semana.DataInicio.AddDate(0, 0, -7*s.janelaSemanas)
	ate := semana.DataInicio.AddDate(0, 0, -1)
	media, temHistorico, err := s.registros.MediaPeriodo(ctx, escolaID, de, ate)
	if err != nil {
		return nil, fmt.Errorf("%w: media do periodo: %v", ErrUpstreamIndisponivel, err)
	}

	base := Arredondar(perCapita.Mul(decimal.NewFromInt(int64(frequencia))))

	return &model.NecessidadeItem{
		ProdutoID:          produto.ProdutoID,
		ProdutoNome:        produto.ProdutoNome,
		UnidadeMedida:      produto.UnidadeMedida,
		PerCapita:          perCapita,
		Frequencia:         frequencia,
		FrequenciaEstimada: estimada,
		MediaPeriodo:       Arredondar(decimal.NewFromFloat(media)),
		SemHistorico:       !temHistorico,
		QuantidadeBase:     base,
		QuantidadeFinal:    base,
		Origem:             model.OrigemCalculada,
	}, nil
}
