package state

import (
	"context"
	"errors"
	"fmt"

	"monevo/internal/api"
	"monevo/internal/core"
	"monevo/internal/log"
)

// LoadGoals fetches the full goal collection and replaces the local
// cache. On failure the previous collection is kept and the error is
// recorded as a user-visible flag instead of being returned: loads run
// at startup with no caller positioned to handle a returned error. The
// loading flag clears unconditionally.
func (s *Synchronizer) LoadGoals(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.goalsLoading = true
	s.goalsErr = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.goalsLoading = false
		s.mu.Unlock()
	}()

	goals, err := s.backend.ListGoals(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		// Session expiry already reset the whole state; flagging an
		// error on the fresh anonymous session would be noise.
		if !errors.Is(err, api.ErrSessionExpired) {
			s.goalsErr = err.Error()
		}
		s.logger.WarnContext(ctx, "goal load failed",
			log.FieldOperation, log.OpLoad, log.FieldError, err)
		return
	}
	s.goals = goals
	s.logger.DebugContext(ctx, "goals loaded",
		log.FieldOperation, log.OpLoad, log.FieldCount, len(goals))
}

// AddGoal creates a goal on the server and, only on success, appends
// the server-echoed entity (with its authoritative id) to the local
// collection. Failures leave the collection untouched and are returned
// to the caller, who owes the user field-level feedback.
func (s *Synchronizer) AddGoal(ctx context.Context, draft core.GoalDraft) (core.Goal, error) {
	if _, err := s.requireUser(); err != nil {
		return core.Goal{}, err
	}
	if err := draft.Validate(); err != nil {
		return core.Goal{}, err
	}

	created, err := s.backend.CreateGoal(ctx, draft)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return created, nil
	}
	s.goals = append(s.goals, created)
	s.logger.InfoContext(ctx, "goal created",
		log.FieldOperation, log.OpCreate, log.FieldGoalID, created.ID)
	return created, nil
}

// UpdateGoal sends the partial fields and replaces the matching local
// entity with the server's full returned representation. Partial fields
// are never merged locally; server-computed fields would drift.
func (s *Synchronizer) UpdateGoal(ctx context.Context, id string, patch core.GoalPatch) (core.Goal, error) {
	if _, err := s.requireUser(); err != nil {
		return core.Goal{}, err
	}
	if patch.Empty() {
		return core.Goal{}, fmt.Errorf("nothing to update")
	}
	if err := patch.Validate(); err != nil {
		return core.Goal{}, err
	}

	updated, err := s.backend.UpdateGoal(ctx, id, patch)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return updated, nil
	}
	for i := range s.goals {
		if s.goals[i].ID == id {
			s.goals[i] = updated
			break
		}
	}
	s.logger.InfoContext(ctx, "goal updated",
		log.FieldOperation, log.OpUpdate, log.FieldGoalID, id)
	return updated, nil
}

// DeleteGoal removes the goal on the server and, only after the server
// confirms, drops it from the local collection. Concurrent deletes of
// the same id collapse into a single outbound call, so a double-click
// cannot race two deletes for one entity.
func (s *Synchronizer) DeleteGoal(ctx context.Context, id string) error {
	if _, err := s.requireUser(); err != nil {
		return err
	}

	_, err, _ := s.deletes.Do("goal:"+id, func() (any, error) {
		if err := s.backend.DeleteGoal(ctx, id); err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return nil, nil
		}
		kept := s.goals[:0]
		for _, g := range s.goals {
			if g.ID != id {
				kept = append(kept, g)
			}
		}
		s.goals = kept
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.logger.InfoContext(ctx, "goal deleted",
		log.FieldOperation, log.OpDelete, log.FieldGoalID, id)
	return nil
}
