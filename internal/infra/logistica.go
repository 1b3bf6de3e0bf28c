package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// LiberacaoItem is one released line sent to the logistics platform.
type LiberacaoItem struct {
	ProdutoID     string          `json:"produto_id"`
	ProdutoNome   string          `json:"produto_nome"`
	UnidadeMedida string          `json:"unidade_medida"`
	Quantidade    decimal.Decimal `json:"quantidade"`
}

// LiberacaoPayload is the hand-off document for one released Necessidade.
type LiberacaoPayload struct {
	NecessidadeID string          `json:"necessidade_id"`
	EscolaID      string          `json:"escola_id"`
	Grupo         string          `json:"grupo"`
	Periodo       string          `json:"periodo"`
	SemanaRotulo  string          `json:"semana_rotulo"`
	Itens         []LiberacaoItem `json:"itens"`
}

// LiberacaoAck is the logistics platform's receipt.
type LiberacaoAck struct {
	Protocolo string `json:"protocolo"`
	Recebido  bool   `json:"recebido"`
	Mensagem  string `json:"mensagem"`
}

// LogisticaClient posts released Necessidades to the logistics platform.
// The hand-off is asynchronous on purpose: a logistics outage must never
// roll back a completed release, so delivery happens from the worker pool
// behind the circuit breaker.
type LogisticaClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewLogisticaClient(baseURL string) *LogisticaClient {
	return &LogisticaClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Notificar sends the release document and returns the receipt.
func (c *LogisticaClient) Notificar(ctx context.Context, payload LiberacaoPayload) (*LiberacaoAck, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("logistica: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/liberacoes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("logistica: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("logistica: plataforma inacessivel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("logistica: plataforma retornou %d", resp.StatusCode)
	}

	var ack LiberacaoAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("logistica: decode response: %w", err)
	}
	return &ack, nil
}
