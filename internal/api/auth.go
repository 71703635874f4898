package api

import (
	"context"
	"net/http"
	"time"

	"monevo/internal/core"
)

type userWire struct {
	ID          int64  `json:"id"`
	Nome        string `json:"nome"`
	Email       string `json:"email"`
	DataCriacao string `json:"data_criacao"`
}

func (u userWire) toUser() core.User {
	user := core.User{ID: u.ID, Name: u.Nome, Email: u.Email}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, u.DataCriacao); err == nil {
			user.CreatedAt = t
			break
		}
	}
	return user
}

// Login exchanges credentials for a token and the confirmed identity.
// A rejected password comes back as a validation *Error carrying the
// backend's detail message, never as session expiry.
func (c *Client) Login(ctx context.Context, email, senha string) (string, core.User, error) {
	var resp struct {
		Token   string   `json:"token"`
		Usuario userWire `json:"usuario"`
	}
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      map[string]string{"email": email, "senha": senha},
		anonymous: true,
	}, &resp)
	if err != nil {
		return "", core.User{}, err
	}
	return resp.Token, resp.Usuario.toUser(), nil
}

// Register creates an account. The backend answers with the created
// identity but no token; the caller follows up with Login.
func (c *Client) Register(ctx context.Context, nome, email, senha string) (core.User, error) {
	var resp struct {
		Usuario userWire `json:"usuario"`
	}
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/registro",
		body:      map[string]string{"nome": nome, "email": email, "senha": senha},
		anonymous: true,
	}, &resp)
	if err != nil {
		return core.User{}, err
	}
	return resp.Usuario.toUser(), nil
}

// Me fetches the identity behind the stored token.
func (c *Client) Me(ctx context.Context) (core.User, error) {
	return c.me(ctx, "")
}

// MeWithToken confirms the identity behind an explicit token. Used in
// the OAuth callback, where the token must be proven before it is
// persisted: if the backend rejects it, nothing was ever stored, so the
// rejection surfaces as a plain error instead of the expiry path.
func (c *Client) MeWithToken(ctx context.Context, token string) (core.User, error) {
	return c.me(ctx, token)
}

func (c *Client) me(ctx context.Context, token string) (core.User, error) {
	var u userWire
	r := request{method: http.MethodGet, path: "/auth/me"}
	if token != "" {
		// Unproven token: a 401 here is a failed confirmation.
		r.token = token
		r.anonymous = true
	}
	if err := c.do(ctx, r, &u); err != nil {
		return core.User{}, err
	}
	return u.toUser(), nil
}

// ProfileStatus is the onboarding-completion signal behind /perfil.
type ProfileStatus struct {
	OnboardingComplete bool
}

// Profile fetches the user's profile status.
func (c *Client) Profile(ctx context.Context) (ProfileStatus, error) {
	var p core.Payload
	if err := c.do(ctx, request{method: http.MethodGet, path: "/perfil"}, &p); err != nil {
		return ProfileStatus{}, err
	}
	return ProfileStatus{
		OnboardingComplete: p.FirstBool("onboarding_completo", "onboarding_completed", "completo"),
	}, nil
}
