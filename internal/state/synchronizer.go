// Package state owns the in-memory projection of the logged-in user's
// domain data and the rules for mutating it consistently with the
// remote backend.
//
// Mutations are confirm-only: nothing enters or leaves a local
// collection until the server has acknowledged the change. Loads
// replace a collection wholesale; a failed load flags the error and
// keeps the previous, stale-but-consistent value. A 401 from any
// authenticated call forces the session back to anonymous.
package state

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"monevo/internal/api"
	"monevo/internal/core"
	"monevo/internal/log"
	"monevo/internal/session"
)

// Phase is the session-level state machine.
type Phase int

const (
	Anonymous Phase = iota
	Authenticating
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Synchronizer reconciles local state with the remote backend. All
// exported methods are safe for concurrent use; the mutex serializes
// every mutation of the collections, which is the Go rendition of the
// original single-threaded event loop.
type Synchronizer struct {
	backend  api.Backend
	sessions session.Store
	logger   *log.Logger
	now      func() time.Time

	// deletes collapses concurrent deletes of the same id into one
	// outbound call.
	deletes singleflight.Group

	mu     sync.Mutex
	closed bool

	phase Phase
	user  *core.User

	goals         []core.Goal
	transactions  []core.Transaction
	notifications []core.Notification
	plans         []core.ActivatedPlan

	goalsErr string
	txErr    string

	goalsLoading bool
	txLoading    bool

	// onExpired is invoked, outside the lock, after a forced logout.
	onExpired func()
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// WithClock replaces the timestamp source; used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// WithExpiryNotifier registers the hook run when the backend expires
// the session. Presentation code uses it to redirect to login.
func WithExpiryNotifier(fn func()) Option {
	return func(s *Synchronizer) { s.onExpired = fn }
}

// New builds a synchronizer. If the session store already holds a
// confirmed session (a previous login), the synchronizer starts
// authenticated; identity is re-verified lazily by the first remote
// call, which forces logout if the token has gone stale.
func New(backend api.Backend, sessions session.Store, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		backend:  backend,
		sessions: sessions,
		logger:   log.New(log.DefaultConfig()).WithComponent(log.ComponentState),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if persisted, err := sessions.Load(); err == nil && persisted.Authenticated() {
		s.phase = Authenticated
		s.user = persisted.User
	}
	return s
}

// SessionExpired is the callback the transport helper must be wired to
// (api.WithExpiryHandler). The durable storage has already been cleared
// by the transport; this drops the in-memory half and notifies.
func (s *Synchronizer) SessionExpired() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	wasAnonymous := s.phase == Anonymous
	s.resetLocked()
	notify := s.onExpired
	s.mu.Unlock()

	if !wasAnonymous {
		s.logger.Warn("session expired, forcing logout", log.FieldPhase, Anonymous.String())
		if notify != nil {
			notify()
		}
	}
}

// Close tears the synchronizer down. Late responses from in-flight
// calls still land in their goroutines, but every state write no-ops
// once closed, so nothing mutates a destroyed session.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Phase returns the current session phase.
func (s *Synchronizer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// CurrentUser returns the confirmed identity, or nil when anonymous.
func (s *Synchronizer) CurrentUser() *core.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Goals returns a copy of the goal collection.
func (s *Synchronizer) Goals() []core.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal(nil), s.goals...)
}

// Transactions returns a copy of the transaction collection.
func (s *Synchronizer) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...)
}

// Notifications returns a copy of the notification collection.
func (s *Synchronizer) Notifications() []core.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Notification(nil), s.notifications...)
}

// ActivatedPlans returns a copy of the session-local activated plans.
func (s *Synchronizer) ActivatedPlans() []core.ActivatedPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ActivatedPlan(nil), s.plans...)
}

// GoalsError returns the user-visible error from the last goal load,
// empty when the last load succeeded.
func (s *Synchronizer) GoalsError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goalsErr
}

// TransactionsError returns the user-visible error from the last
// transaction load.
func (s *Synchronizer) TransactionsError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txErr
}

// Loading reports whether any collection load is in flight.
func (s *Synchronizer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goalsLoading || s.txLoading
}

// resetLocked drops all per-session state. Caller holds the lock.
func (s *Synchronizer) resetLocked() {
	s.phase = Anonymous
	s.user = nil
	s.goals = nil
	s.transactions = nil
	s.notifications = nil
	s.plans = nil
	s.goalsErr = ""
	s.txErr = ""
}
