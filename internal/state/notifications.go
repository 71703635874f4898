package state

import (
	"context"
	"fmt"

	"monevo/internal/log"
)

// LoadNotifications fetches the user's notifications, replacing the
// local collection. Failures are logged but not flagged: notifications
// are best-effort decoration, not primary data.
func (s *Synchronizer) LoadNotifications(ctx context.Context) {
	notes, err := s.backend.ListNotifications(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "notification load failed",
			log.FieldOperation, log.OpLoad, log.FieldError, err)
		return
	}
	s.notifications = notes
}

// MarkNotificationRead marks a notification read on the server, then
// mirrors the flag locally.
func (s *Synchronizer) MarkNotificationRead(ctx context.Context, id string) error {
	if _, err := s.requireUser(); err != nil {
		return err
	}
	if err := s.backend.MarkNotificationRead(ctx, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			break
		}
	}
	return nil
}
