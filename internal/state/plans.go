package state

import (
	"github.com/google/uuid"

	"monevo/internal/core"
)

// ActivatePlan records a plan activation. Purely local: no backend
// call, no failure mode, gone when the session ends.
func (s *Synchronizer) ActivatePlan(id, title string) core.ActivatedPlan {
	if id == "" {
		id = uuid.NewString()
	}
	plan := core.ActivatedPlan{ID: id, Title: title, ActivatedAt: s.now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return plan
	}
	s.plans = append(s.plans, plan)
	return plan
}
