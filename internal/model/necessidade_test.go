package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProximoStatus_TabelaCompleta(t *testing.T) {
	statuses := []string{StatusRascunho, StatusEmAnalise, StatusAjustadaCoordenacao, StatusLiberadaLogistica, StatusRejeitada}
	acoes := []string{AcaoEnviar, AcaoAjustarCoordenacao, AcaoLiberar, AcaoRejeitar}

	permitidas := map[[2]string]string{
		{StatusRascunho, AcaoEnviar}:              StatusEmAnalise,
		{StatusRascunho, AcaoRejeitar}:            StatusRejeitada,
		{StatusEmAnalise, AcaoAjustarCoordenacao}: StatusAjustadaCoordenacao,
		{StatusEmAnalise, AcaoRejeitar}:           StatusRejeitada,
		{StatusAjustadaCoordenacao, AcaoLiberar}:  StatusLiberadaLogistica,
		{StatusAjustadaCoordenacao, AcaoRejeitar}: StatusRejeitada,
	}

	for _, status := range statuses {
		for _, acao := range acoes {
			next, ok := ProximoStatus(status, acao)
			esperado, permitida := permitidas[[2]string{status, acao}]
			assert.Equal(t, permitida, ok, "(%s, %s)", status, acao)
			if permitida {
				assert.Equal(t, esperado, next, "(%s, %s)", status, acao)
			}
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusTerminal(StatusLiberadaLogistica))
	assert.True(t, StatusTerminal(StatusRejeitada))
	assert.False(t, StatusTerminal(StatusRascunho))
	assert.False(t, StatusTerminal(StatusEmAnalise))
	assert.False(t, StatusTerminal(StatusAjustadaCoordenacao))
}

func TestEtapaPermitida(t *testing.T) {
	assert.True(t, EtapaPermitida(EtapaNutricionista, StatusRascunho))
	assert.False(t, EtapaPermitida(EtapaNutricionista, StatusEmAnalise))

	assert.True(t, EtapaPermitida(EtapaCoordenacao, StatusEmAnalise))
	assert.True(t, EtapaPermitida(EtapaCoordenacao, StatusAjustadaCoordenacao))
	assert.False(t, EtapaPermitida(EtapaCoordenacao, StatusRascunho))

	assert.True(t, EtapaPermitida(EtapaLogistica, StatusAjustadaCoordenacao))
	assert.False(t, EtapaPermitida(EtapaLogistica, StatusEmAnalise))

	assert.False(t, EtapaPermitida("faxineiro", StatusRascunho))
}
