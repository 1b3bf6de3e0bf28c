package service_test

// fakes_test.go
// In-memory repository stubs shared by the service unit tests. Stubs keep the
// same observable contract as the Postgres implementations (including the
// optimistic-version check in BumpVersion/Liberar) so the services run
// unchanged with db == nil.

import (
	"context"
	"sort"
	"time"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/repository"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func data(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── RecomputoLock ────────────────────────────────────────────────────────────

type fakeLock struct {
	held map[int]bool
	err  error
}

var _ service.RecomputoLock = (*fakeLock)(nil)

func newFakeLock() *fakeLock { return &fakeLock{held: map[int]bool{}} }

func (l *fakeLock) TryLock(_ context.Context, ano int) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.held[ano] {
		return false, nil
	}
	l.held[ano] = true
	return true, nil
}

func (l *fakeLock) Unlock(_ context.Context, ano int) error {
	delete(l.held, ano)
	return nil
}

func (l *fakeLock) Locked(_ context.Context, ano int) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return l.held[ano], nil
}

// ── CalendarioRepository ─────────────────────────────────────────────────────

type stubCalendarioRepo struct {
	dias    map[string]*model.CalendarioDia // keyed by "2006-01-02"
	semanas []model.SemanaConsumo
}

var _ repository.CalendarioRepository = (*stubCalendarioRepo)(nil)

func newStubCalendarioRepo() *stubCalendarioRepo {
	return &stubCalendarioRepo{dias: map[string]*model.CalendarioDia{}}
}

func (r *stubCalendarioRepo) DB() *gorm.DB { return nil }

func (r *stubCalendarioRepo) UpsertDias(_ context.Context, _ *gorm.DB, dias []model.CalendarioDia) error {
	for i := range dias {
		d := dias[i]
		key := d.Data.Format("2006-01-02")
		if existente, ok := r.dias[key]; ok {
			// Conflict path mirrors the ON CONFLICT clause: role flags are
			// rewritten, feriado and its metadata survive.
			existente.DiaUtil = d.DiaUtil
			existente.DiaAbastecimento = d.DiaAbastecimento
			existente.DiaConsumo = d.DiaConsumo
			continue
		}
		d.ID = uuid.New()
		r.dias[key] = &d
	}
	return nil
}

func (r *stubCalendarioRepo) FindDia(_ context.Context, dia time.Time) (*model.CalendarioDia, error) {
	d, ok := r.dias[dia.Format("2006-01-02")]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *d
	return &c, nil
}

func (r *stubCalendarioRepo) UpdateDia(_ context.Context, dia *model.CalendarioDia) error {
	r.dias[dia.Data.Format("2006-01-02")] = dia
	return nil
}

func (r *stubCalendarioRepo) ListDiasConsumo(_ context.Context, ano int) ([]model.CalendarioDia, error) {
	var out []model.CalendarioDia
	for _, d := range r.dias {
		if d.Ano == ano && d.DiaConsumo && !d.Feriado {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Data.Before(out[j].Data) })
	return out, nil
}

func (r *stubCalendarioRepo) ListFeriados(_ context.Context, ano int) ([]model.CalendarioDia, error) {
	var out []model.CalendarioDia
	for _, d := range r.dias {
		if d.Ano == ano && d.Feriado {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Data.Before(out[j].Data) })
	return out, nil
}

func (r *stubCalendarioRepo) Configuracao(_ context.Context, ano int) (*repository.ConfiguracaoAno, error) {
	cfg := &repository.ConfiguracaoAno{}
	uteis, abastecimento, consumo := map[int]bool{}, map[int]bool{}, map[int]bool{}
	for _, d := range r.dias {
		if d.Ano != ano || d.Feriado {
			continue
		}
		if d.DiaUtil {
			uteis[d.DiaSemanaNumero] = true
		}
		if d.DiaAbastecimento {
			abastecimento[d.DiaSemanaNumero] = true
		}
		if d.DiaConsumo {
			consumo[d.DiaSemanaNumero] = true
		}
	}
	ordenado := func(m map[int]bool) []int {
		var out []int
		for n := range m {
			out = append(out, n)
		}
		sort.Ints(out)
		return out
	}
	cfg.DiasUteis = ordenado(uteis)
	cfg.DiasAbastecimento = ordenado(abastecimento)
	cfg.DiasConsumo = ordenado(consumo)
	return cfg, nil
}

func (r *stubCalendarioRepo) LimparRolesFeriados(_ context.Context, _ *gorm.DB, ano int) error {
	for _, d := range r.dias {
		if d.Ano == ano && d.Feriado {
			d.DiaUtil = false
			d.DiaAbastecimento = false
			d.DiaConsumo = false
		}
	}
	return nil
}

func (r *stubCalendarioRepo) DeleteSemanas(_ context.Context, _ *gorm.DB, ano int) error {
	var restantes []model.SemanaConsumo
	for _, s := range r.semanas {
		if s.Ano != ano {
			restantes = append(restantes, s)
		}
	}
	r.semanas = restantes
	return nil
}

func (r *stubCalendarioRepo) CreateSemana(_ context.Context, _ *gorm.DB, semana *model.SemanaConsumo) error {
	semana.ID = uuid.New()
	r.semanas = append(r.semanas, *semana)
	return nil
}

func (r *stubCalendarioRepo) ListSemanas(_ context.Context, ano int) ([]model.SemanaConsumo, error) {
	var out []model.SemanaConsumo
	for _, s := range r.semanas {
		if s.Ano == ano {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Numero < out[j].Numero })
	return out, nil
}

func (r *stubCalendarioRepo) FindSemana(_ context.Context, ano, numero int) (*model.SemanaConsumo, error) {
	for i := range r.semanas {
		if r.semanas[i].Ano == ano && r.semanas[i].Numero == numero {
			s := r.semanas[i]
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── ProdutoPerCapitaRepository ───────────────────────────────────────────────

type stubPerCapitaRepo struct {
	produtos map[uuid.UUID]*model.ProdutoPerCapita
}

var _ repository.ProdutoPerCapitaRepository = (*stubPerCapitaRepo)(nil)

func newStubPerCapitaRepo() *stubPerCapitaRepo {
	return &stubPerCapitaRepo{produtos: map[uuid.UUID]*model.ProdutoPerCapita{}}
}

func (r *stubPerCapitaRepo) add(p model.ProdutoPerCapita) *model.ProdutoPerCapita {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Ativo = true
	r.produtos[p.ProdutoID] = &p
	return &p
}

func (r *stubPerCapitaRepo) FindByProdutoID(_ context.Context, produtoID uuid.UUID) (*model.ProdutoPerCapita, error) {
	p, ok := r.produtos[produtoID]
	if !ok || !p.Ativo {
		return nil, gorm.ErrRecordNotFound
	}
	c := *p
	return &c, nil
}

func (r *stubPerCapitaRepo) ListarPorGrupo(_ context.Context, grupo string) ([]model.ProdutoPerCapita, error) {
	var out []model.ProdutoPerCapita
	for _, p := range r.produtos {
		if p.Grupo == grupo && p.Ativo {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProdutoNome < out[j].ProdutoNome })
	return out, nil
}

func (r *stubPerCapitaRepo) ListarCompativeis(_ context.Context, grupo, unidadeMedida string) ([]model.ProdutoPerCapita, error) {
	var out []model.ProdutoPerCapita
	for _, p := range r.produtos {
		if p.Grupo == grupo && p.UnidadeMedida == unidadeMedida && p.Ativo {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProdutoNome < out[j].ProdutoNome })
	return out, nil
}

func (r *stubPerCapitaRepo) ListarGrupos(_ context.Context) ([]string, error) {
	vistos := map[string]bool{}
	var out []string
	for _, p := range r.produtos {
		if p.Ativo && !vistos[p.Grupo] {
			vistos[p.Grupo] = true
			out = append(out, p.Grupo)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ── RegistroDiarioRepository ─────────────────────────────────────────────────

type stubRegistroRepo struct {
	frequencia   int
	media        float64
	temHistorico bool
	err          error
}

var _ repository.RegistroDiarioRepository = (*stubRegistroRepo)(nil)

func (r *stubRegistroRepo) Frequencia(_ context.Context, _ uuid.UUID, _, _ time.Time) (int, error) {
	return r.frequencia, r.err
}

func (r *stubRegistroRepo) MediaPeriodo(_ context.Context, _ uuid.UUID, _, _ time.Time) (float64, bool, error) {
	return r.media, r.temHistorico, r.err
}

// ── NecessidadeRepository ────────────────────────────────────────────────────

type stubNecessidadeRepo struct {
	necessidades map[uuid.UUID]*model.Necessidade
	liberarErr   error
}

var _ repository.NecessidadeRepository = (*stubNecessidadeRepo)(nil)

func newStubNecessidadeRepo() *stubNecessidadeRepo {
	return &stubNecessidadeRepo{necessidades: map[uuid.UUID]*model.Necessidade{}}
}

func (r *stubNecessidadeRepo) DB() *gorm.DB { return nil }

func (r *stubNecessidadeRepo) Create(_ context.Context, _ *gorm.DB, n *model.Necessidade) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	for i := range n.Itens {
		if n.Itens[i].ID == uuid.Nil {
			n.Itens[i].ID = uuid.New()
		}
		n.Itens[i].NecessidadeID = n.ID
	}
	c := *n
	c.Itens = append([]model.NecessidadeItem(nil), n.Itens...)
	r.necessidades[n.ID] = &c
	return nil
}

func (r *stubNecessidadeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Necessidade, error) {
	n, ok := r.necessidades[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *n
	c.Itens = append([]model.NecessidadeItem(nil), n.Itens...)
	return &c, nil
}

func (r *stubNecessidadeRepo) FindAtiva(_ context.Context, escolaID uuid.UUID, grupo string, ano, semana int) (*model.Necessidade, error) {
	for _, n := range r.necessidades {
		if n.EscolaID == escolaID && n.Grupo == grupo && n.Ano == ano &&
			n.SemanaNumero == semana && n.Status != model.StatusRejeitada {
			c := *n
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubNecessidadeRepo) List(_ context.Context, filter repository.NecessidadeFilter) ([]model.Necessidade, int64, error) {
	var out []model.Necessidade
	for _, n := range r.necessidades {
		if filter.EscolaID != nil && n.EscolaID != *filter.EscolaID {
			continue
		}
		if filter.Grupo != "" && n.Grupo != filter.Grupo {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && n.Status != filter.Status {
			continue
		}
		if filter.Ano != nil && n.Ano != *filter.Ano {
			continue
		}
		if filter.SemanaNumero != nil && n.SemanaNumero != *filter.SemanaNumero {
			continue
		}
		c := *n
		c.Itens = append([]model.NecessidadeItem(nil), n.Itens...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	total := int64(len(out))
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	inicio := (filter.Page - 1) * filter.Limit
	if inicio > len(out) {
		inicio = len(out)
	}
	fim := inicio + filter.Limit
	if fim > len(out) {
		fim = len(out)
	}
	return out[inicio:fim], total, nil
}

func (r *stubNecessidadeRepo) CreateItem(_ context.Context, _ *gorm.DB, item *model.NecessidadeItem) error {
	n, ok := r.necessidades[item.NecessidadeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	n.Itens = append(n.Itens, *item)
	return nil
}

func (r *stubNecessidadeRepo) FindItem(_ context.Context, itemID uuid.UUID) (*model.NecessidadeItem, error) {
	for _, n := range r.necessidades {
		for i := range n.Itens {
			if n.Itens[i].ID == itemID {
				c := n.Itens[i]
				return &c, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubNecessidadeRepo) UpdateItemQuantidadeFinal(_ context.Context, _ *gorm.DB, itemID uuid.UUID, quantidade string) error {
	for _, n := range r.necessidades {
		for i := range n.Itens {
			if n.Itens[i].ID == itemID {
				n.Itens[i].QuantidadeFinal = dec(quantidade)
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubNecessidadeRepo) UpdateItemProduto(_ context.Context, _ *gorm.DB, itemID, produtoID uuid.UUID, nome, unidadeMedida string, substituicaoID uuid.UUID) error {
	for _, n := range r.necessidades {
		for i := range n.Itens {
			if n.Itens[i].ID == itemID {
				n.Itens[i].ProdutoID = produtoID
				n.Itens[i].ProdutoNome = nome
				n.Itens[i].UnidadeMedida = unidadeMedida
				sid := substituicaoID
				n.Itens[i].SubstituicaoID = &sid
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubNecessidadeRepo) BumpVersion(_ context.Context, _ *gorm.DB, id uuid.UUID, versaoLida int, updates map[string]any) (int64, error) {
	n, ok := r.necessidades[id]
	if !ok || n.Versao != versaoLida {
		return 0, nil
	}
	if v, ok := updates["status"].(string); ok {
		n.Status = v
	}
	if v, ok := updates["atualizado_por"].(string); ok {
		n.AtualizadoPor = v
	}
	if v, ok := updates["motivo_rejeicao"].(string); ok {
		n.MotivoRejeicao = &v
	}
	if v, ok := updates["calendario_desatualizado"].(bool); ok {
		n.CalendarioDesatualizado = v
	}
	if v, ok := updates["semana_rotulo"].(string); ok {
		n.SemanaRotulo = v
	}
	n.Versao++
	return 1, nil
}

func (r *stubNecessidadeRepo) Liberar(_ context.Context, id uuid.UUID, versaoLida int, atualizadoPor string) (int64, error) {
	if r.liberarErr != nil {
		return 0, r.liberarErr
	}
	n, ok := r.necessidades[id]
	if !ok || n.Versao != versaoLida {
		// Stale version: nothing is stamped, same as the rolled-back tx.
		return 0, nil
	}
	for i := range n.Itens {
		q := n.Itens[i].QuantidadeFinal
		n.Itens[i].QuantidadeLiberada = &q
	}
	n.Status = model.StatusLiberadaLogistica
	n.AtualizadoPor = atualizadoPor
	n.Versao++
	return 1, nil
}

func (r *stubNecessidadeRepo) CountNaoRascunhoPorAno(_ context.Context, ano int) (int64, error) {
	var count int64
	for _, n := range r.necessidades {
		if n.Ano == ano && n.Status != model.StatusRascunho && n.Status != model.StatusRejeitada {
			count++
		}
	}
	return count, nil
}

func (r *stubNecessidadeRepo) MarcarCalendarioDesatualizado(_ context.Context, _ *gorm.DB, ano int) (int64, error) {
	var count int64
	for _, n := range r.necessidades {
		if n.Ano == ano && n.Status != model.StatusRascunho && n.Status != model.StatusRejeitada {
			n.CalendarioDesatualizado = true
			count++
		}
	}
	return count, nil
}

// ── AjusteRepository ─────────────────────────────────────────────────────────

type stubAjusteRepo struct {
	entradas []model.Ajuste
}

var _ repository.AjusteRepository = (*stubAjusteRepo)(nil)

func (r *stubAjusteRepo) Create(_ context.Context, _ *gorm.DB, a *model.Ajuste) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	r.entradas = append(r.entradas, *a)
	return nil
}

func (r *stubAjusteRepo) ListByNecessidade(_ context.Context, necessidadeID uuid.UUID) ([]model.Ajuste, error) {
	var out []model.Ajuste
	for _, a := range r.entradas {
		if a.NecessidadeID == necessidadeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAjusteRepo) ListByItem(_ context.Context, itemID uuid.UUID) ([]model.Ajuste, error) {
	var out []model.Ajuste
	for _, a := range r.entradas {
		if a.ItemID == itemID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ── SubstituicaoRepository ───────────────────────────────────────────────────

type stubSubstituicaoRepo struct {
	subs map[uuid.UUID]*model.Substituicao
}

var _ repository.SubstituicaoRepository = (*stubSubstituicaoRepo)(nil)

func newStubSubstituicaoRepo() *stubSubstituicaoRepo {
	return &stubSubstituicaoRepo{subs: map[uuid.UUID]*model.Substituicao{}}
}

func (r *stubSubstituicaoRepo) Create(_ context.Context, _ *gorm.DB, s *model.Substituicao) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now().UTC()
	c := *s
	r.subs[s.ID] = &c
	return nil
}

func (r *stubSubstituicaoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Substituicao, error) {
	s, ok := r.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *s
	return &c, nil
}

func (r *stubSubstituicaoRepo) FindAtivaPorItem(_ context.Context, itemID uuid.UUID) (*model.Substituicao, error) {
	for _, s := range r.subs {
		if s.ItemID == itemID && s.Status != model.SubstituicaoRejeitada {
			c := *s
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSubstituicaoRepo) HasPendentePorNecessidade(_ context.Context, necessidadeID uuid.UUID) (bool, error) {
	for _, s := range r.subs {
		if s.NecessidadeID == necessidadeID && s.Status == model.SubstituicaoProposta {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubSubstituicaoRepo) Resolver(_ context.Context, _ *gorm.DB, id uuid.UUID, status, resolvidoPor string, em time.Time) error {
	s, ok := r.subs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	s.ResolvidoPor = &resolvidoPor
	s.ResolvidoEm = &em
	return nil
}

func (r *stubSubstituicaoRepo) ListByNecessidade(_ context.Context, necessidadeID uuid.UUID) ([]model.Substituicao, error) {
	var out []model.Substituicao
	for _, s := range r.subs {
		if s.NecessidadeID == necessidadeID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
