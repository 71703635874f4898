package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"monevo/internal/core"
	"monevo/internal/log"
	"monevo/internal/session"
)

var (
	ErrAlreadyAuthenticating = errors.New("authentication already in progress")
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrClosed                = errors.New("synchronizer is closed")
)

// Login authenticates with email and password. The session only becomes
// authenticated once the backend has confirmed identity; on any failure
// the phase reverts to anonymous and nothing is persisted.
func (s *Synchronizer) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return errors.New("email and password are required")
	}

	if err := s.enterAuthenticating(); err != nil {
		return err
	}

	token, user, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.revertToAnonymous()
		return err
	}
	return s.confirmIdentity(token, user)
}

// Register creates an account and immediately logs in with the same
// credentials.
func (s *Synchronizer) Register(ctx context.Context, name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}
	if _, err := s.backend.Register(ctx, name, email, password); err != nil {
		return err
	}
	return s.Login(ctx, email, password)
}

// HandleOAuthCallback processes the token-bearing redirect of the OAuth
// flow. A token alone is not enough to consider the session
// authenticated: identity is confirmed through /auth/me first, and only
// then is the pair persisted. If confirmation fails the flow ends
// anonymous with stored credentials purged.
func (s *Synchronizer) HandleOAuthCallback(ctx context.Context, token, callbackErr string) error {
	if callbackErr != "" {
		return fmt.Errorf("authentication rejected: %s", callbackErr)
	}
	if token == "" {
		return errors.New("callback carried no token")
	}

	if err := s.enterAuthenticating(); err != nil {
		return err
	}

	user, err := s.backend.MeWithToken(ctx, token)
	if err != nil {
		s.revertToAnonymous()
		if clearErr := s.sessions.Clear(); clearErr != nil {
			s.logger.Error("failed to purge credentials after rejected callback", log.FieldError, clearErr)
		}
		return fmt.Errorf("confirm identity: %w", err)
	}
	return s.confirmIdentity(token, user)
}

// Logout clears the session everywhere: memory, durable storage, and
// the domain collections. Safe to call at any time, in any phase.
func (s *Synchronizer) Logout() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	wasAuthenticated := s.phase == Authenticated
	s.resetLocked()
	s.mu.Unlock()

	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("clear session storage: %w", err)
	}
	if wasAuthenticated {
		s.logger.Info("logged out", log.FieldOperation, log.OpLogout)
	}
	return nil
}

func (s *Synchronizer) enterAuthenticating() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.phase == Authenticating {
		return ErrAlreadyAuthenticating
	}
	s.phase = Authenticating
	return nil
}

func (s *Synchronizer) revertToAnonymous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.phase = Anonymous
	s.user = nil
}

// confirmIdentity persists the confirmed token+user pair and completes
// the transition to authenticated.
func (s *Synchronizer) confirmIdentity(token string, user core.User) error {
	if err := s.sessions.Save(session.Session{Token: token, User: &user}); err != nil {
		s.revertToAnonymous()
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.phase = Authenticated
	s.user = &user
	s.mu.Unlock()

	s.logger.Info("authenticated",
		log.FieldOperation, log.OpLogin,
		log.FieldUserID, user.ID,
		log.FieldPhase, Authenticated.String())
	return nil
}

// requireUser returns the confirmed identity or ErrNotAuthenticated.
func (s *Synchronizer) requireUser() (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.User{}, ErrClosed
	}
	if s.phase != Authenticated || s.user == nil {
		return core.User{}, ErrNotAuthenticated
	}
	return *s.user, nil
}
