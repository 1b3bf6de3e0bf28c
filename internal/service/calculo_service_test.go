package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func semanaJaneiro() *model.SemanaConsumo {
	return &model.SemanaConsumo{
		Ano:        2026,
		Numero:     1,
		Rotulo:     "05/01 a 09/01",
		DataInicio: data("2026-01-05"),
		DataFim:    data("2026-01-09"),
		Dias: []model.SemanaConsumoDia{
			{Data: data("2026-01-05"), Posicao: 1},
			{Data: data("2026-01-06"), Posicao: 2},
			{Data: data("2026-01-07"), Posicao: 3},
			{Data: data("2026-01-08"), Posicao: 4},
			{Data: data("2026-01-09"), Posicao: 5},
		},
	}
}

func produtoArroz() *model.ProdutoPerCapita {
	return &model.ProdutoPerCapita{
		ProdutoID:       uuid.New(),
		ProdutoCodigo:   "ARZ-001",
		ProdutoNome:     "Arroz Tipo 1",
		UnidadeMedida:   "kg",
		Grupo:           "cereais",
		PerCapitaAlmoco: dec("0.12"),
	}
}

func TestCalcularRascunho_PerCapitaVezesFrequencia(t *testing.T) {
	registros := &stubRegistroRepo{frequencia: 5, media: 123.456789, temHistorico: true}
	svc := service.NewCalculoService(registros, 4)

	item, err := svc.CalcularRascunho(context.Background(), uuid.New(), produtoArroz(), model.PeriodoAlmoco, semanaJaneiro())
	require.NoError(t, err)

	assert.Equal(t, "Arroz Tipo 1", item.ProdutoNome)
	assert.Equal(t, "kg", item.UnidadeMedida)
	assert.True(t, item.PerCapita.Equal(dec("0.12")))
	assert.Equal(t, 5, item.Frequencia)
	assert.False(t, item.FrequenciaEstimada)
	assert.True(t, item.QuantidadeBase.Equal(dec("0.6")), "0.12 x 5 = 0.6, got %s", item.QuantidadeBase)
	assert.True(t, item.QuantidadeFinal.Equal(item.QuantidadeBase))
	assert.True(t, item.MediaPeriodo.Equal(dec("123.457")))
	assert.False(t, item.SemHistorico)
	assert.Equal(t, model.OrigemCalculada, item.Origem)
}

func TestCalcularRascunho_FrequenciaEstimadaDoCalendario(t *testing.T) {
	// No attendance registered: fall back to the week's consumption-day count.
	registros := &stubRegistroRepo{frequencia: 0, media: 0, temHistorico: false}
	svc := service.NewCalculoService(registros, 4)

	item, err := svc.CalcularRascunho(context.Background(), uuid.New(), produtoArroz(), model.PeriodoAlmoco, semanaJaneiro())
	require.NoError(t, err)

	assert.Equal(t, 5, item.Frequencia)
	assert.True(t, item.FrequenciaEstimada)
	assert.True(t, item.SemHistorico)
	assert.True(t, item.MediaPeriodo.IsZero())
	assert.True(t, item.QuantidadeBase.Equal(dec("0.6")))
}

func TestCalcularRascunho_PeriodoInvalido(t *testing.T) {
	svc := service.NewCalculoService(&stubRegistroRepo{}, 4)

	_, err := svc.CalcularRascunho(context.Background(), uuid.New(), produtoArroz(), "jantar", semanaJaneiro())
	assert.ErrorIs(t, err, service.ErrPeriodoInvalido)
}

func TestCalcularRascunho_PerCapitaAusenteParaPeriodo(t *testing.T) {
	svc := service.NewCalculoService(&stubRegistroRepo{frequencia: 5}, 4)

	// produtoArroz only defines almoco; lanche_manha is zero.
	_, err := svc.CalcularRascunho(context.Background(), uuid.New(), produtoArroz(), model.PeriodoLancheManha, semanaJaneiro())
	assert.ErrorIs(t, err, service.ErrPerCapitaAusente)
}

func TestCalcularRascunho_RegistroIndisponivel(t *testing.T) {
	registros := &stubRegistroRepo{err: errors.New("connection refused")}
	svc := service.NewCalculoService(registros, 4)

	_, err := svc.CalcularRascunho(context.Background(), uuid.New(), produtoArroz(), model.PeriodoAlmoco, semanaJaneiro())
	assert.ErrorIs(t, err, service.ErrUpstreamIndisponivel)
}

func TestArredondar(t *testing.T) {
	casos := []struct {
		entrada  string
		esperado string
	}{
		{"1.2344", "1.234"},
		{"1.2345", "1.235"}, // half-up
		{"1.2", "1.2"},
		{"0.0004", "0"},
		{"10", "10"},
	}
	for _, c := range casos {
		got := service.Arredondar(dec(c.entrada))
		assert.True(t, got.Equal(dec(c.esperado)), "Arredondar(%s) = %s, esperado %s", c.entrada, got, c.esperado)
	}
}
