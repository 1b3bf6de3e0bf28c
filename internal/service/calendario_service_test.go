package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/dto"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCalendarioFixture() (service.CalendarioService, *stubCalendarioRepo, *stubNecessidadeRepo, *fakeLock) {
	calRepo := newStubCalendarioRepo()
	necRepo := newStubNecessidadeRepo()
	lock := newFakeLock()
	svc := service.NewCalendarioService(calRepo, necRepo, lock)
	return svc, calRepo, necRepo, lock
}

// seedDiaConsumo registers a date as a plain consumption day.
func seedDiaConsumo(repo *stubCalendarioRepo, dia string) {
	d := data(dia)
	wd := int(d.Weekday())
	if wd == 0 {
		wd = 7
	}
	repo.dias[dia] = &model.CalendarioDia{
		Data:            d,
		Ano:             d.Year(),
		DiaSemanaNumero: wd,
		DiaConsumo:      true,
	}
}

// ── ClassificarAno ───────────────────────────────────────────────────────────

func TestClassificarAno_AtribuiRolesPorDiaDaSemana(t *testing.T) {
	svc, repo, _, _ := newCalendarioFixture()

	err := svc.ClassificarAno(context.Background(), 2026, dto.ClassificarAnoRequest{
		DiasUteis:         []int{1, 2, 3, 4, 5},
		DiasAbastecimento: []int{1, 3},
		DiasConsumo:       []int{1, 2, 3, 4, 5},
	})
	require.NoError(t, err)

	assert.Len(t, repo.dias, 365) // 2026 is not a leap year

	// 2026-01-05 is a Monday (dia 1).
	segunda := repo.dias["2026-01-05"]
	require.NotNil(t, segunda)
	assert.True(t, segunda.DiaUtil)
	assert.True(t, segunda.DiaAbastecimento)
	assert.True(t, segunda.DiaConsumo)

	// 2026-01-04 is a Sunday (dia 7): no roles.
	domingo := repo.dias["2026-01-04"]
	require.NotNil(t, domingo)
	assert.Equal(t, 7, domingo.DiaSemanaNumero)
	assert.False(t, domingo.DiaUtil)
	assert.False(t, domingo.DiaConsumo)
}

func TestClassificarAno_ConfiguracaoVazia(t *testing.T) {
	svc, _, _, _ := newCalendarioFixture()

	err := svc.ClassificarAno(context.Background(), 2026, dto.ClassificarAnoRequest{})
	assert.ErrorIs(t, err, service.ErrConfiguracaoInvalida)
}

func TestClassificarAno_DiaDaSemanaForaDoIntervalo(t *testing.T) {
	svc, _, _, _ := newCalendarioFixture()

	err := svc.ClassificarAno(context.Background(), 2026, dto.ClassificarAnoRequest{
		DiasConsumo: []int{1, 8},
	})
	assert.ErrorIs(t, err, service.ErrConfiguracaoInvalida)
}

func TestClassificarAno_PreservaFeriados(t *testing.T) {
	svc, repo, _, _ := newCalendarioFixture()

	require.NoError(t, svc.ClassificarAno(context.Background(), 2026, dto.ClassificarAnoRequest{
		DiasConsumo: []int{1, 2, 3, 4, 5},
	}))
	nome := "Confraternizacao Universal"
	repo.dias["2026-01-01"].Feriado = true
	repo.dias["2026-01-01"].NomeFeriado = &nome

	// Reclassifying must not resurrect roles on the holiday.
	require.NoError(t, svc.ClassificarAno(context.Background(), 2026, dto.ClassificarAnoRequest{
		DiasUteis:   []int{1, 2, 3, 4, 5},
		DiasConsumo: []int{1, 2, 3, 4, 5},
	}))

	feriado := repo.dias["2026-01-01"] // 2026-01-01 is a Thursday
	assert.True(t, feriado.Feriado)
	assert.Equal(t, "Confraternizacao Universal", *feriado.NomeFeriado)
	assert.False(t, feriado.DiaUtil)
	assert.False(t, feriado.DiaConsumo)
}

// ── Feriados ─────────────────────────────────────────────────────────────────

func TestAdicionarFeriado_LimpaRoles(t *testing.T) {
	svc, repo, _, _ := newCalendarioFixture()
	require.NoError(t, svc.ClassificarAno(context.Background(), 2026, dto.ClassificarAnoRequest{
		DiasUteis:   []int{1, 2, 3, 4, 5},
		DiasConsumo: []int{1, 2, 3, 4, 5},
	}))

	err := svc.AdicionarFeriado(context.Background(), dto.FeriadoRequest{
		Data: "2026-04-21", Nome: "Tiradentes",
	})
	require.NoError(t, err)

	dia := repo.dias["2026-04-21"]
	assert.True(t, dia.Feriado)
	assert.Equal(t, "Tiradentes", *dia.NomeFeriado)
	assert.False(t, dia.DiaUtil)
	assert.False(t, dia.DiaAbastecimento)
	assert.False(t, dia.DiaConsumo)
}

func TestAdicionarFeriado_Duplicado(t *testing.T) {
	svc, _, _, _ := newCalendarioFixture()
	require.NoError(t, svc.ClassificarAno(context.Background(), 2026, dto.ClassificarAnoRequest{
		DiasConsumo: []int{1, 2, 3, 4, 5},
	}))
	require.NoError(t, svc.AdicionarFeriado(context.Background(), dto.FeriadoRequest{
		Data: "2026-04-21", Nome: "Tiradentes",
	}))

	err := svc.AdicionarFeriado(context.Background(), dto.FeriadoRequest{
		Data: "2026-04-21", Nome: "Tiradentes",
	})
	assert.ErrorIs(t, err, service.ErrFeriadoDuplicado)
}

func TestRemoverFeriado_RederivaRolesDaConfiguracao(t *testing.T) {
	svc, repo, _, _ := newCalendarioFixture()
	require.NoError(t, svc.ClassificarAno(context.Background(), 2026, dto.ClassificarAnoRequest{
		DiasUteis:   []int{1, 2, 3, 4, 5},
		DiasConsumo: []int{1, 2, 3, 4, 5},
	}))
	require.NoError(t, svc.AdicionarFeriado(context.Background(), dto.FeriadoRequest{
		Data: "2026-04-21", Nome: "Tiradentes", // a Tuesday
	}))

	require.NoError(t, svc.RemoverFeriado(context.Background(), data("2026-04-21")))

	dia := repo.dias["2026-04-21"]
	assert.False(t, dia.Feriado)
	assert.Nil(t, dia.NomeFeriado)
	assert.True(t, dia.DiaUtil)
	assert.True(t, dia.DiaConsumo)
	assert.False(t, dia.DiaAbastecimento)
}

// ── RecomputarSemanasConsumo ─────────────────────────────────────────────────

func TestRecomputo_AgrupaPorGapDeCalendario(t *testing.T) {
	svc, repo, _, _ := newCalendarioFixture()
	// Two school weeks: Mon-Fri 05..09 and Mon-Fri 12..16. The weekend gap
	// (3 calendar days Fri→Mon) starts a new week.
	for _, d := range []string{"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09",
		"2026-01-12", "2026-01-13", "2026-01-14", "2026-01-15", "2026-01-16"} {
		seedDiaConsumo(repo, d)
	}

	resp, err := svc.RecomputarSemanasConsumo(context.Background(), 2026, false)
	require.NoError(t, err)
	require.Len(t, resp.Semanas, 2)

	assert.Equal(t, 1, resp.Semanas[0].Numero)
	assert.Equal(t, "05/01 a 09/01", resp.Semanas[0].Rotulo)
	assert.Equal(t, []string{"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09"}, resp.Semanas[0].Dias)
	assert.Equal(t, 2, resp.Semanas[1].Numero)
	assert.Equal(t, "12/01 a 16/01", resp.Semanas[1].Rotulo)
	assert.Zero(t, resp.NecessidadesInvalidadas)
}

func TestRecomputo_GapDeDoisDiasNaoQuebra(t *testing.T) {
	svc, repo, _, _ := newCalendarioFixture()
	// Mon, Wed, Fri of the same week: gaps of 2 calendar days keep the group.
	for _, d := range []string{"2026-01-05", "2026-01-07", "2026-01-09"} {
		seedDiaConsumo(repo, d)
	}

	resp, err := svc.RecomputarSemanasConsumo(context.Background(), 2026, false)
	require.NoError(t, err)
	require.Len(t, resp.Semanas, 1)
	assert.Equal(t, "05/01 a 09/01", resp.Semanas[0].Rotulo)
}

func TestRecomputo_SpanMaximoDeSeteDias(t *testing.T) {
	svc, repo, _, _ := newCalendarioFixture()
	// Ten consecutive consumption days: must split at the 7-day span.
	for d := data("2026-01-05"); d.Before(data("2026-01-15")); d = d.AddDate(0, 0, 1) {
		seedDiaConsumo(repo, d.Format("2006-01-02"))
	}

	resp, err := svc.RecomputarSemanasConsumo(context.Background(), 2026, false)
	require.NoError(t, err)
	require.Len(t, resp.Semanas, 2)
	assert.Len(t, resp.Semanas[0].Dias, 7)
	assert.Len(t, resp.Semanas[1].Dias, 3)
	assert.Equal(t, "05/01 a 11/01", resp.Semanas[0].Rotulo)
	assert.Equal(t, "12/01 a 14/01", resp.Semanas[1].Rotulo)
}

func TestRecomputo_LockOcupado(t *testing.T) {
	svc, _, _, lock := newCalendarioFixture()
	lock.held[2026] = true

	_, err := svc.RecomputarSemanasConsumo(context.Background(), 2026, false)
	assert.ErrorIs(t, err, service.ErrRecomputoEmAndamento)
}

func TestRecomputo_LiberaLockAoTerminar(t *testing.T) {
	svc, repo, _, lock := newCalendarioFixture()
	seedDiaConsumo(repo, "2026-01-05")

	_, err := svc.RecomputarSemanasConsumo(context.Background(), 2026, false)
	require.NoError(t, err)
	assert.False(t, lock.held[2026])
}

func TestRecomputo_BloqueadoPorNecessidadesVinculadas(t *testing.T) {
	svc, repo, necRepo, _ := newCalendarioFixture()
	seedDiaConsumo(repo, "2026-01-05")
	require.NoError(t, necRepo.Create(context.Background(), nil, &model.Necessidade{
		Ano: 2026, Status: model.StatusEmAnalise, Versao: 1,
	}))

	_, err := svc.RecomputarSemanasConsumo(context.Background(), 2026, false)
	assert.ErrorIs(t, err, service.ErrNecessidadesVinculadas)
}

func TestRecomputo_ForceInvalidaNecessidades(t *testing.T) {
	svc, repo, necRepo, _ := newCalendarioFixture()
	seedDiaConsumo(repo, "2026-01-05")
	n := &model.Necessidade{Ano: 2026, Status: model.StatusEmAnalise, Versao: 1}
	require.NoError(t, necRepo.Create(context.Background(), nil, n))
	rascunho := &model.Necessidade{Ano: 2026, Status: model.StatusRascunho, Versao: 1}
	require.NoError(t, necRepo.Create(context.Background(), nil, rascunho))

	resp, err := svc.RecomputarSemanasConsumo(context.Background(), 2026, true)
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.NecessidadesInvalidadas)
	assert.True(t, necRepo.necessidades[n.ID].CalendarioDesatualizado)
	// Drafts are cheap to recreate; they are not flagged.
	assert.False(t, necRepo.necessidades[rascunho.ID].CalendarioDesatualizado)
}

func TestRecomputo_SubstituiSemanasAnteriores(t *testing.T) {
	svc, repo, _, _ := newCalendarioFixture()
	seedDiaConsumo(repo, "2026-01-05")
	seedDiaConsumo(repo, "2026-01-06")

	_, err := svc.RecomputarSemanasConsumo(context.Background(), 2026, false)
	require.NoError(t, err)

	// A second run replaces, never appends.
	seedDiaConsumo(repo, "2026-01-12")
	resp, err := svc.RecomputarSemanasConsumo(context.Background(), 2026, false)
	require.NoError(t, err)
	assert.Len(t, resp.Semanas, 2)

	semanas, err := svc.ListarSemanas(context.Background(), 2026)
	require.NoError(t, err)
	assert.Len(t, semanas, 2)
}

func TestObterConfiguracao(t *testing.T) {
	svc, _, _, _ := newCalendarioFixture()
	require.NoError(t, svc.ClassificarAno(context.Background(), 2026, dto.ClassificarAnoRequest{
		DiasUteis:         []int{1, 2, 3, 4, 5},
		DiasAbastecimento: []int{1},
		DiasConsumo:       []int{2, 3, 4},
	}))
	require.NoError(t, svc.AdicionarFeriado(context.Background(), dto.FeriadoRequest{
		Data: "2026-04-21", Nome: "Tiradentes",
	}))

	cfg, err := svc.ObterConfiguracao(context.Background(), 2026)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.DiasUteis)
	assert.Equal(t, []int{1}, cfg.DiasAbastecimento)
	assert.Equal(t, []int{2, 3, 4}, cfg.DiasConsumo)
	require.Len(t, cfg.Feriados, 1)
	assert.Equal(t, "2026-04-21", cfg.Feriados[0].Data)
	assert.Equal(t, "Tiradentes", cfg.Feriados[0].Nome)
}

// Guard against accidental timezone drift in the grouping arithmetic.
func TestRecomputo_DatasEmUTC(t *testing.T) {
	svc, repo, _, _ := newCalendarioFixture()
	seedDiaConsumo(repo, "2026-01-05")

	resp, err := svc.RecomputarSemanasConsumo(context.Background(), 2026, false)
	require.NoError(t, err)
	require.Len(t, resp.Semanas, 1)
	inicio, err := time.Parse("2006-01-02", resp.Semanas[0].DataInicio)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, inicio.Location())
}
