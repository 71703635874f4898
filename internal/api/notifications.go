package api

import (
	"context"
	"fmt"
	"net/http"

	"monevo/internal/core"
)

func notificationFromPayload(p core.Payload) core.Notification {
	n := core.Notification{
		ID:      p.FirstID("id"),
		Title:   p.FirstString("titulo", "title"),
		Message: p.FirstString("mensagem", "descricao", "message"),
		Read:    p.FirstBool("lida", "read"),
	}
	if t, ok := p.FirstTime("data_criacao", "created_at"); ok {
		n.CreatedAt = t
	}
	return n
}

// ListNotifications fetches the user's notifications.
func (c *Client) ListNotifications(ctx context.Context) ([]core.Notification, error) {
	var payloads []core.Payload
	if err := c.do(ctx, request{method: http.MethodGet, path: "/notificacoes"}, &payloads); err != nil {
		return nil, err
	}
	out := make([]core.Notification, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, notificationFromPayload(p))
	}
	return out, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/notificacoes/%s/lida", id),
	}, nil)
}
