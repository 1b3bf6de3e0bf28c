package service

import "errors"

// Domain error taxonomy. Handlers map these to HTTP codes via errors.Is;
// none of them is fatal — every one is recoverable by a corrected retry.

// Validation errors — caller-correctable, no partial state change.
var (
	ErrPerCapitaAusente     = errors.New("per capita nao cadastrado para o produto e periodo")
	ErrNecessidadeVazia     = errors.New("necessidade sem itens")
	ErrNecessidadeDuplicada = errors.New("ja existe necessidade ativa para escola, grupo e semana")
	ErrFeriadoDuplicado     = errors.New("data ja cadastrada como feriado")
	ErrConfiguracaoInvalida = errors.New("configuracao de dias da semana invalida")
	ErrPeriodoInvalido      = errors.New("periodo de refeicao desconhecido")
)

// State errors — workflow-order violations; surfaced with the current status.
var (
	ErrTransicaoInvalida     = errors.New("transicao de status nao permitida")
	ErrNecessidadeEncerrada  = errors.New("necessidade em estado terminal")
	ErrSubstituicaoPendente  = errors.New("existe substituicao proposta pendente de resolucao")
	ErrSubstituicaoAtiva     = errors.New("item ja possui substituicao ativa")
	ErrSubstituicaoResolvida = errors.New("substituicao ja foi resolvida")
)

// Concurrency errors — transient; the caller reloads and retries, never the core.
var (
	ErrModificacaoConcorrente = errors.New("registro alterado por outro usuario")
	ErrRecomputoEmAndamento   = errors.New("recomputo de calendario em andamento para o ano")
)

// Consistency errors.
var (
	// ErrCalendarioDesatualizado is raised lazily on the first mutation after a
	// forced week recompute; cleared only by explicit operator revalidation.
	ErrCalendarioDesatualizado = errors.New("semanas do calendario foram recomputadas; necessidade requer revalidacao")
	ErrNecessidadesVinculadas  = errors.New("existem necessidades nao-rascunho vinculadas ao ano")
)

// ErrUpstreamIndisponivel wraps repository/infra unavailability, kept distinct
// from the domain taxonomy so callers can tell outage from misuse.
var ErrUpstreamIndisponivel = errors.New("dependencia externa indisponivel")
