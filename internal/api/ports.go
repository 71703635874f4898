package api

import (
	"context"

	"monevo/internal/core"
)

// Ports consumed by the state synchronizer. *Client implements all of
// them; tests substitute fakes.
type (
	Authenticator interface {
		Login(ctx context.Context, email, senha string) (token string, user core.User, err error)
		Register(ctx context.Context, nome, email, senha string) (core.User, error)
		Me(ctx context.Context) (core.User, error)
		MeWithToken(ctx context.Context, token string) (core.User, error)
	}

	GoalService interface {
		ListGoals(ctx context.Context) ([]core.Goal, error)
		CreateGoal(ctx context.Context, draft core.GoalDraft) (core.Goal, error)
		UpdateGoal(ctx context.Context, id string, patch core.GoalPatch) (core.Goal, error)
		DeleteGoal(ctx context.Context, id string) error
	}

	TransactionService interface {
		ListTransactions(ctx context.Context, filter TransactionFilter) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, userID int64, draft core.TransactionDraft) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	NotificationService interface {
		ListNotifications(ctx context.Context) ([]core.Notification, error)
		MarkNotificationRead(ctx context.Context, id string) error
	}

	// Backend is the full surface the synchronizer wires against.
	Backend interface {
		Authenticator
		GoalService
		TransactionService
		NotificationService
	}
)

// Interface conformance
var _ Backend = (*Client)(nil)
