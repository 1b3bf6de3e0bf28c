package worker

// liberacao_worker.go
// Processes logistics hand-off jobs from QueueLiberacao: posts the released
// Necessidade to the logistics platform behind a circuit breaker, with
// exponential backoff. Exhausted jobs land in the DLQ — the release itself
// is already committed and is never rolled back from here.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/infra"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/model"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// LiberacaoJobPayload is the job envelope sent to QueueLiberacao.
type LiberacaoJobPayload struct {
	NecessidadeID string `json:"necessidade_id"`
}

type LiberacaoWorker struct {
	client     *infra.LogisticaClient
	breaker    *infra.CircuitBreaker
	repo       repository.NecessidadeRepository
	dispatcher *Dispatcher
	rdb        *redis.Client
	notifyTo   string
}

func NewLiberacaoWorker(
	client *infra.LogisticaClient,
	breaker *infra.CircuitBreaker,
	repo repository.NecessidadeRepository,
	dispatcher *Dispatcher,
	rdb *redis.Client,
	notifyTo string,
) *LiberacaoWorker {
	return &LiberacaoWorker{
		client:     client,
		breaker:    breaker,
		repo:       repo,
		dispatcher: dispatcher,
		rdb:        rdb,
		notifyTo:   notifyTo,
	}
}

// Process handles a single hand-off job:
//  1. Parse LiberacaoJobPayload
//  2. Fetch the released Necessidade with its lines
//  3. POST to the logistics platform (circuit breaker + 3 retries)
//  4. Enqueue the notification email with the receipt protocol
func (w *LiberacaoWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload LiberacaoJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("liberacao_worker: invalid payload")
		return
	}
	id, err := uuid.Parse(payload.NecessidadeID)
	if err != nil {
		log.Error().Str("necessidade_id", payload.NecessidadeID).Msg("liberacao_worker: invalid necessidade_id")
		return
	}

	n, err := w.repo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("necessidade_id", payload.NecessidadeID).Msg("liberacao_worker: necessidade not found")
		return
	}
	if n.Status != model.StatusLiberadaLogistica {
		log.Warn().Str("necessidade_id", payload.NecessidadeID).Str("status", n.Status).
			Msg("liberacao_worker: necessidade not released — skipping")
		return
	}

	doc := infra.LiberacaoPayload{
		NecessidadeID: n.ID.String(),
		EscolaID:      n.EscolaID.String(),
		Grupo:         n.Grupo,
		Periodo:       n.Periodo,
		SemanaRotulo:  n.SemanaRotulo,
	}
	for _, item := range n.Itens {
		quantidade := item.QuantidadeFinal
		if item.QuantidadeLiberada != nil {
			quantidade = *item.QuantidadeLiberada
		}
		doc.Itens = append(doc.Itens, infra.LiberacaoItem{
			ProdutoID:     item.ProdutoID.String(),
			ProdutoNome:   item.ProdutoNome,
			UnidadeMedida: item.UnidadeMedida,
			Quantidade:    quantidade,
		})
	}

	var ack *infra.LiberacaoAck
	sendErr := withRetry(ctx, 3, func(attempt int) error {
		return w.breaker.Execute(func() error {
			resp, err := w.client.Notificar(ctx, doc)
			if err != nil {
				log.Warn().Err(err).Int("attempt", attempt+1).
					Str("necessidade_id", payload.NecessidadeID).
					Msg("liberacao_worker: hand-off attempt failed, retrying")
				return err
			}
			ack = resp
			return nil
		})
	})
	if sendErr != nil {
		log.Error().Err(sendErr).Str("necessidade_id", payload.NecessidadeID).
			Msg("liberacao_worker: hand-off failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueLiberacao, "liberacao", raw, sendErr.Error(), 3)
		return
	}
	log.Info().Str("protocolo", ack.Protocolo).Str("necessidade_id", payload.NecessidadeID).
		Msg("liberacao_worker: hand-off acknowledged")

	if w.dispatcher != nil && w.notifyTo != "" {
		emailJob := EmailJobPayload{
			To:      []string{w.notifyTo},
			Subject: fmt.Sprintf("Necessidade liberada — %s (%s)", n.SemanaRotulo, n.Grupo),
			Body: fmt.Sprintf("Necessidade %s liberada para logistica.\nProtocolo: %s\nItens: %d",
				n.ID, ack.Protocolo, len(doc.Itens)),
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Str("necessidade_id", payload.NecessidadeID).
				Msg("liberacao_worker: failed to enqueue notification email")
		}
	}
}
