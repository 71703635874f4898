package api

import (
	"context"
	"fmt"
	"net/http"

	"monevo/internal/core"
)

// metaCreate is the request body for goal creation. The backend expects
// its own field names; nullable fields are pointers so "absent" and
// "empty" stay distinguishable.
type metaCreate struct {
	Titulo        string  `json:"titulo"`
	Descricao     *string `json:"descricao"`
	Categoria     string  `json:"categoria"`
	ValorObjetivo float64 `json:"valor_objetivo"`
	ValorAtual    float64 `json:"valor_atual"`
	Prazo         *string `json:"prazo"`
}

func metaFromDraft(d core.GoalDraft) metaCreate {
	m := metaCreate{
		Titulo:        d.Title,
		Categoria:     d.Category,
		ValorObjetivo: d.Target,
		ValorAtual:    d.Current,
	}
	if d.Description != "" {
		m.Descricao = &d.Description
	}
	if d.Deadline != "" {
		m.Prazo = &d.Deadline
	}
	return m
}

// goalFromPayload converts a backend meta into the domain shape,
// attaching presentation style and tolerating loose field naming.
func goalFromPayload(p core.Payload) core.Goal {
	g := core.Goal{
		ID:          p.FirstID("id"),
		Title:       p.FirstString("titulo", "title"),
		Description: p.FirstString("descricao"),
		Category:    p.FirstString("categoria"),
		Deadline:    p.FirstString("prazo"),
	}
	if v, ok := p.FirstNumber("valor_objetivo"); ok {
		g.Target = v
	}
	if v, ok := p.FirstNumber("valor_atual"); ok {
		g.Current = v
	}
	g.Style = core.StyleForCategory(g.Category)
	return g
}

// ListGoals fetches the full goal collection.
func (c *Client) ListGoals(ctx context.Context) ([]core.Goal, error) {
	var payloads []core.Payload
	if err := c.do(ctx, request{method: http.MethodGet, path: "/metas"}, &payloads); err != nil {
		return nil, err
	}
	goals := make([]core.Goal, 0, len(payloads))
	for _, p := range payloads {
		goals = append(goals, goalFromPayload(p))
	}
	return goals, nil
}

// CreateGoal creates a goal and returns the server's echo, including
// the server-assigned id and any normalized fields.
func (c *Client) CreateGoal(ctx context.Context, draft core.GoalDraft) (core.Goal, error) {
	var p core.Payload
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/metas",
		body:   metaFromDraft(draft),
	}, &p)
	if err != nil {
		return core.Goal{}, err
	}
	return goalFromPayload(p), nil
}

// UpdateGoal sends only the fields set in the patch and returns the
// server's full representation of the updated goal.
func (c *Client) UpdateGoal(ctx context.Context, id string, patch core.GoalPatch) (core.Goal, error) {
	body := map[string]any{}
	if patch.Title != nil {
		body["titulo"] = *patch.Title
	}
	if patch.Description != nil {
		body["descricao"] = *patch.Description
	}
	if patch.Category != nil {
		body["categoria"] = *patch.Category
	}
	if patch.Target != nil {
		body["valor_objetivo"] = *patch.Target
	}
	if patch.Current != nil {
		body["valor_atual"] = *patch.Current
	}
	if patch.Deadline != nil {
		if *patch.Deadline == "" {
			body["prazo"] = nil
		} else {
			body["prazo"] = *patch.Deadline
		}
	}

	var p core.Payload
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   fmt.Sprintf("/metas/%s", id),
		body:   body,
	}, &p)
	if err != nil {
		return core.Goal{}, err
	}
	return goalFromPayload(p), nil
}

// DeleteGoal removes a goal on the server.
func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/metas/%s", id),
	}, nil)
}
