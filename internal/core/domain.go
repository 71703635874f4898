package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income     TransactionType = "income"
	Expense    TransactionType = "expense"
	Investment TransactionType = "investment"
)

type (
	TransactionType string

	// User is the authenticated identity confirmed by the backend.
	User struct {
		ID        int64
		Name      string
		Email     string
		CreatedAt time.Time
	}

	// Goal is a savings goal. The ID is assigned by the server: a goal
	// without an ID has never been confirmed remotely.
	Goal struct {
		ID          string
		Title       string
		Description string
		Target      float64
		Current     float64
		Deadline    string // YYYY-MM-DD, optional
		Category    string
		Style       CategoryStyle
	}

	// GoalDraft carries the caller-provided fields for creating a goal.
	GoalDraft struct {
		Title       string
		Description string
		Target      float64
		Current     float64
		Deadline    string
		Category    string
	}

	// GoalPatch carries a partial update. Nil fields are left untouched
	// on the server.
	GoalPatch struct {
		Title       *string
		Description *string
		Target      *float64
		Current     *float64
		Deadline    *string
		Category    *string
	}

	Transaction struct {
		ID          string
		Type        TransactionType
		Category    string
		Description string
		Amount      float64
		Date        time.Time
	}

	// TransactionDraft is a transaction before the server assigns identity.
	TransactionDraft struct {
		Type        TransactionType
		Category    string
		Description string
		Amount      float64
		Date        time.Time
	}

	// ActivatedPlan is client-local and ephemeral; it is never sent to
	// the backend and does not survive the session.
	ActivatedPlan struct {
		ID          string
		Title       string
		ActivatedAt time.Time
	}

	Notification struct {
		ID        string
		Title     string
		Message   string
		Read      bool
		CreatedAt time.Time
	}
)

var (
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidTarget    = errors.New("invalid target value")
	ErrNegativeCurrent  = errors.New("negative current value")
	ErrInvalidDeadline  = errors.New("invalid deadline")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrZeroDate         = errors.New("date cannot be zero")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Investment:
		return true
	default:
		return false
	}
}

func (d GoalDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if len(d.Title) > 120 {
		return errors.New("title too long (max 120 characters)")
	}
	if len(d.Description) > 255 {
		return errors.New("description too long (max 255 characters)")
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if d.Target <= 0 {
		return ErrInvalidTarget
	}
	if d.Current < 0 {
		return ErrNegativeCurrent
	}
	if d.Deadline != "" {
		if _, err := time.Parse("2006-01-02", d.Deadline); err != nil {
			return ErrInvalidDeadline
		}
	}
	return nil
}

func (p GoalPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Target != nil && *p.Target <= 0 {
		return ErrInvalidTarget
	}
	if p.Current != nil && *p.Current < 0 {
		return ErrNegativeCurrent
	}
	if p.Deadline != nil && *p.Deadline != "" {
		if _, err := time.Parse("2006-01-02", *p.Deadline); err != nil {
			return ErrInvalidDeadline
		}
	}
	return nil
}

// Empty reports whether the patch carries no fields at all.
func (p GoalPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Target == nil &&
		p.Current == nil && p.Deadline == nil && p.Category == nil
}

func (d TransactionDraft) Validate() error {
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyDescription
	}
	if len(d.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if d.Amount <= 0 {
		return ErrInvalidAmount
	}
	if d.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Progress returns the completion ratio clamped to [0, 1].
func (g Goal) Progress() float64 {
	if g.Target <= 0 {
		return 0
	}
	p := g.Current / g.Target
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Remaining returns how much is still missing to reach the target,
// never negative.
func (g Goal) Remaining() float64 {
	if r := g.Target - g.Current; r > 0 {
		return r
	}
	return 0
}
