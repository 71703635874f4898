package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"monevo/internal/core"
)

// TransactionFilter narrows a transaction listing by date range.
type TransactionFilter struct {
	From *time.Time
	To   *time.Time
}

// transacaoCreate is the request body for transaction creation.
type transacaoCreate struct {
	UsuarioID int64   `json:"usuario_id"`
	Data      string  `json:"data"`
	Valor     float64 `json:"valor"`
	Tipo      string  `json:"tipo"`
	Descricao string  `json:"descricao"`
	Categoria string  `json:"categoria"`
	Status    string  `json:"status"`
}

// transactionFromPayload tolerates the endpoint-dependent field naming
// the backend exhibits (categoria vs categoria_nome, numeric vs string
// ids).
func transactionFromPayload(p core.Payload) core.Transaction {
	tx := core.Transaction{
		ID:          p.FirstID("id"),
		Type:        core.TransactionTypeFromWire(p.FirstString("tipo")),
		Category:    p.FirstString("categoria", "categoria_nome", "categoria_cache"),
		Description: p.FirstString("descricao"),
	}
	if v, ok := p.FirstNumber("valor"); ok {
		tx.Amount = v
	}
	if t, ok := p.FirstTime("data"); ok {
		tx.Date = t
	}
	return tx
}

// ListTransactions fetches the transaction collection, optionally
// narrowed to a date range.
func (c *Client) ListTransactions(ctx context.Context, filter TransactionFilter) ([]core.Transaction, error) {
	query := url.Values{}
	if filter.From != nil {
		query.Set("date_from", filter.From.UTC().Format(time.RFC3339))
	}
	if filter.To != nil {
		query.Set("date_to", filter.To.UTC().Format(time.RFC3339))
	}

	var payloads []core.Payload
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/transacoes",
		query:  query,
	}, &payloads)
	if err != nil {
		return nil, err
	}
	txs := make([]core.Transaction, 0, len(payloads))
	for _, p := range payloads {
		txs = append(txs, transactionFromPayload(p))
	}
	return txs, nil
}

// CreateTransaction creates a transaction owned by the given user and
// returns the server's echo with the authoritative id.
func (c *Client) CreateTransaction(ctx context.Context, userID int64, draft core.TransactionDraft) (core.Transaction, error) {
	body := transacaoCreate{
		UsuarioID: userID,
		Data:      draft.Date.UTC().Format(time.RFC3339),
		Valor:     draft.Amount,
		Tipo:      core.TransactionTypeToWire(draft.Type),
		Descricao: draft.Description,
		Categoria: draft.Category,
		Status:    "confirmado",
	}

	var p core.Payload
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/transacoes",
		body:   body,
	}, &p)
	if err != nil {
		return core.Transaction{}, err
	}

	created := transactionFromPayload(p)
	// Some endpoints echo a sparse record; backfill from the draft so
	// the caller always sees a complete entity behind the server id.
	if created.Category == "" {
		created.Category = draft.Category
	}
	if created.Description == "" {
		created.Description = draft.Description
	}
	if created.Amount == 0 {
		created.Amount = draft.Amount
	}
	if created.Date.IsZero() {
		created.Date = draft.Date
	}
	return created, nil
}

// DeleteTransaction removes a transaction on the server.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/transacoes/%s", id),
	}, nil)
}
