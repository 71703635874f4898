package state

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monevo/internal/api"
	"monevo/internal/core"
	"monevo/internal/session"
)

// fakeBackend is a scripted in-memory stand-in for the REST client.
type fakeBackend struct {
	mu sync.Mutex

	user  core.User
	token string

	goals  []core.Goal
	txs    []core.Transaction
	notes  []core.Notification
	nextID int

	listGoalsErr error
	createErr    error
	deleteErr    error
	listTxErr    error

	deleteCalls map[string]int

	// gate, when set, blocks delete and update calls until released.
	gate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		user:        core.User{ID: 1, Name: "User", Email: "user@test.com"},
		token:       "abc",
		nextID:      100,
		deleteCalls: map[string]int{},
	}
}

func (f *fakeBackend) waitGate() {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeBackend) Login(_ context.Context, email, senha string) (string, core.User, error) {
	if email == f.user.Email && senha == "secret1" {
		return f.token, f.user, nil
	}
	return "", core.User{}, &api.Error{StatusCode: 401, Detail: "Email ou senha incorretos"}
}

func (f *fakeBackend) Register(_ context.Context, nome, email, _ string) (core.User, error) {
	return core.User{ID: 2, Name: nome, Email: email}, nil
}

func (f *fakeBackend) Me(_ context.Context) (core.User, error) {
	return f.user, nil
}

func (f *fakeBackend) MeWithToken(_ context.Context, token string) (core.User, error) {
	if token != f.token {
		return core.User{}, &api.Error{StatusCode: 401, Detail: "token inválido"}
	}
	return f.user, nil
}

func (f *fakeBackend) ListGoals(_ context.Context) ([]core.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listGoalsErr != nil {
		return nil, f.listGoalsErr
	}
	return append([]core.Goal(nil), f.goals...), nil
}

func (f *fakeBackend) CreateGoal(_ context.Context, draft core.GoalDraft) (core.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return core.Goal{}, f.createErr
	}
	f.nextID++
	g := core.Goal{
		ID:       strconv.Itoa(f.nextID),
		Title:    draft.Title,
		Target:   draft.Target,
		Current:  draft.Current,
		Deadline: draft.Deadline,
		Category: draft.Category,
		Style:    core.StyleForCategory(draft.Category),
	}
	f.goals = append(f.goals, g)
	return g, nil
}

func (f *fakeBackend) UpdateGoal(_ context.Context, id string, patch core.GoalPatch) (core.Goal, error) {
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.goals {
		if f.goals[i].ID == id {
			if patch.Current != nil {
				f.goals[i].Current = *patch.Current
			}
			if patch.Title != nil {
				f.goals[i].Title = *patch.Title
			}
			return f.goals[i], nil
		}
	}
	return core.Goal{}, &api.Error{StatusCode: 404, Detail: "Meta não encontrada"}
}

func (f *fakeBackend) DeleteGoal(_ context.Context, id string) error {
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls["goal:"+id]++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.goals[:0]
	for _, g := range f.goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	f.goals = kept
	return nil
}

func (f *fakeBackend) ListTransactions(_ context.Context, _ api.TransactionFilter) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listTxErr != nil {
		return nil, f.listTxErr
	}
	return append([]core.Transaction(nil), f.txs...), nil
}

func (f *fakeBackend) CreateTransaction(_ context.Context, _ int64, draft core.TransactionDraft) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return core.Transaction{}, f.createErr
	}
	tx := core.Transaction{
		ID:          "99",
		Type:        draft.Type,
		Category:    draft.Category,
		Description: draft.Description,
		Amount:      draft.Amount,
		Date:        draft.Date,
	}
	f.txs = append([]core.Transaction{tx}, f.txs...)
	return tx, nil
}

func (f *fakeBackend) DeleteTransaction(_ context.Context, id string) error {
	f.waitGate()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls["tx:"+id]++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.txs[:0]
	for _, tx := range f.txs {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	f.txs = kept
	return nil
}

func (f *fakeBackend) ListNotifications(_ context.Context) ([]core.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Notification(nil), f.notes...), nil
}

func (f *fakeBackend) MarkNotificationRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes[i].Read = true
		}
	}
	return nil
}

var _ api.Backend = (*fakeBackend)(nil)

func newAuthed(t *testing.T, opts ...Option) (*Synchronizer, *fakeBackend, *session.MemoryStore) {
	t.Helper()
	backend := newFakeBackend()
	store := session.NewMemoryStore()
	s := New(backend, store, opts...)
	require.NoError(t, s.Login(context.Background(), "user@test.com", "secret1"))
	return s, backend, store
}

func TestLogin_Succeeds(t *testing.T) {
	backend := newFakeBackend()
	store := session.NewMemoryStore()
	s := New(backend, store)

	require.Equal(t, Anonymous, s.Phase())
	require.NoError(t, s.Login(context.Background(), "user@test.com", "secret1"))

	assert.Equal(t, Authenticated, s.Phase())
	require.NotNil(t, s.CurrentUser())
	assert.Equal(t, "user@test.com", s.CurrentUser().Email)

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", persisted.Token)
	assert.Equal(t, "user@test.com", persisted.User.Email)
}

func TestLogin_FailureRevertsToAnonymous(t *testing.T) {
	backend := newFakeBackend()
	store := session.NewMemoryStore()
	s := New(backend, store)

	err := s.Login(context.Background(), "user@test.com", "wrong")
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Email ou senha incorretos", apiErr.Detail)

	assert.Equal(t, Anonymous, s.Phase())
	assert.Nil(t, s.CurrentUser())
	persisted, _ := store.Load()
	assert.False(t, persisted.Authenticated())
}

func TestOAuthCallback_ConfirmsIdentityBeforePersisting(t *testing.T) {
	backend := newFakeBackend()
	store := session.NewMemoryStore()
	s := New(backend, store)

	require.NoError(t, s.HandleOAuthCallback(context.Background(), "abc", ""))
	assert.Equal(t, Authenticated, s.Phase())

	persisted, _ := store.Load()
	assert.True(t, persisted.Authenticated())
}

func TestOAuthCallback_RejectedTokenEndsAnonymous(t *testing.T) {
	backend := newFakeBackend()
	store := session.NewMemoryStore()
	s := New(backend, store)

	err := s.HandleOAuthCallback(context.Background(), "forged", "")
	require.Error(t, err)

	assert.Equal(t, Anonymous, s.Phase())
	persisted, _ := store.Load()
	assert.False(t, persisted.Authenticated(), "no credentials may survive a failed confirmation")
}

func TestOAuthCallback_ErrorParameter(t *testing.T) {
	s := New(newFakeBackend(), session.NewMemoryStore())
	err := s.HandleOAuthCallback(context.Background(), "", "access_denied")
	require.Error(t, err)
	assert.Equal(t, Anonymous, s.Phase())
}

func TestLogout_IsIdempotent(t *testing.T) {
	s, _, store := newAuthed(t)

	require.NoError(t, s.Logout())
	assert.Equal(t, Anonymous, s.Phase())
	assert.Nil(t, s.CurrentUser())
	assert.Empty(t, s.Goals())
	persisted, _ := store.Load()
	assert.False(t, persisted.Authenticated())

	// Logging out while already anonymous is a no-op.
	require.NoError(t, s.Logout())
	require.NoError(t, s.Logout())
}

func TestNew_ResumesPersistedSession(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(session.Session{
		Token: "abc",
		User:  &core.User{ID: 1, Email: "user@test.com"},
	}))

	s := New(newFakeBackend(), store)
	assert.Equal(t, Authenticated, s.Phase())
	require.NotNil(t, s.CurrentUser())
	assert.Equal(t, "user@test.com", s.CurrentUser().Email)
}

func TestLoadGoals_ReplacesCollection(t *testing.T) {
	s, backend, _ := newAuthed(t)
	backend.goals = []core.Goal{{ID: "1", Title: "Reserva", Category: "Reserva", Target: 1000}}

	s.LoadGoals(context.Background())
	require.Len(t, s.Goals(), 1)
	assert.Empty(t, s.GoalsError())
	assert.False(t, s.Loading())
}

func TestLoadGoals_FailureKeepsStaleCollectionAndFlags(t *testing.T) {
	s, backend, _ := newAuthed(t)
	backend.goals = []core.Goal{{ID: "1", Title: "Reserva", Target: 1000}}
	s.LoadGoals(context.Background())
	require.Len(t, s.Goals(), 1)

	backend.mu.Lock()
	backend.listGoalsErr = &api.Error{Detail: api.ConnectionErrMsg}
	backend.mu.Unlock()

	s.LoadGoals(context.Background())

	assert.Len(t, s.Goals(), 1, "stale-but-consistent collection must survive")
	assert.Equal(t, api.ConnectionErrMsg, s.GoalsError())
	assert.False(t, s.Loading(), "loading flag must clear on failure too")
}

func TestLoadFailuresAreIndependent(t *testing.T) {
	s, backend, _ := newAuthed(t)
	backend.txs = []core.Transaction{{ID: "1", Type: core.Income, Amount: 10}}
	backend.mu.Lock()
	backend.listGoalsErr = errors.New("boom")
	backend.mu.Unlock()

	s.LoadGoals(context.Background())
	s.LoadTransactions(context.Background(), api.TransactionFilter{})

	assert.NotEmpty(t, s.GoalsError())
	assert.Empty(t, s.TransactionsError())
	assert.Len(t, s.Transactions(), 1, "a goal-load failure must not block transactions")
}

func TestAddGoal_AppendsServerEcho(t *testing.T) {
	s, _, _ := newAuthed(t)

	before := len(s.Goals())
	created, err := s.AddGoal(context.Background(), core.GoalDraft{
		Title:    "Viagem",
		Category: "Viagem",
		Target:   8000,
	})
	require.NoError(t, err)

	goals := s.Goals()
	require.Len(t, goals, before+1)
	assert.NotEmpty(t, created.ID, "id must come from the server")
	assert.Equal(t, created, goals[len(goals)-1])
}

func TestAddGoal_FailureLeavesCollectionUntouched(t *testing.T) {
	s, backend, _ := newAuthed(t)
	backend.mu.Lock()
	backend.createErr = &api.Error{StatusCode: 422, Detail: "valor_objetivo deve ser positivo"}
	backend.mu.Unlock()

	_, err := s.AddGoal(context.Background(), core.GoalDraft{
		Title:    "Viagem",
		Category: "Viagem",
		Target:   8000,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valor_objetivo deve ser positivo")
	assert.Empty(t, s.Goals())
}

func TestAddGoal_ValidatesLocallyBeforeNetwork(t *testing.T) {
	s, backend, _ := newAuthed(t)
	backend.mu.Lock()
	backend.createErr = errors.New("must not be reached")
	backend.mu.Unlock()

	_, err := s.AddGoal(context.Background(), core.GoalDraft{Title: "", Category: "Viagem", Target: 100})
	require.ErrorIs(t, err, core.ErrEmptyTitle)
}

func TestUpdateGoal_NoPrematureMutation(t *testing.T) {
	s, backend, _ := newAuthed(t)
	backend.goals = []core.Goal{{ID: "7", Title: "Viagem", Category: "Viagem", Target: 12000, Current: 100}}
	s.LoadGoals(context.Background())

	gate := make(chan struct{})
	backend.mu.Lock()
	backend.gate = gate
	backend.mu.Unlock()

	current := 500.0
	done := make(chan error, 1)
	go func() {
		_, err := s.UpdateGoal(context.Background(), "7", core.GoalPatch{Current: &current})
		done <- err
	}()

	// While the update is in flight the local cache still shows the
	// pre-update value.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 100.0, s.Goals()[0].Current)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, 500.0, s.Goals()[0].Current)
}

func TestDeleteGoal_SingleFlight(t *testing.T) {
	s, backend, _ := newAuthed(t)
	backend.goals = []core.Goal{{ID: "7", Title: "Viagem", Target: 100}}
	s.LoadGoals(context.Background())

	gate := make(chan struct{})
	backend.mu.Lock()
	backend.gate = gate
	backend.mu.Unlock()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.DeleteGoal(context.Background(), "7")
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	backend.mu.Lock()
	calls := backend.deleteCalls["goal:7"]
	backend.mu.Unlock()
	assert.Equal(t, 1, calls, "concurrent deletes of one id must collapse to one call")
	assert.Empty(t, s.Goals())
}

func TestDeleteGoal_FailureKeepsEntity(t *testing.T) {
	s, backend, _ := newAuthed(t)
	backend.goals = []core.Goal{{ID: "7", Title: "Viagem", Target: 100}}
	s.LoadGoals(context.Background())

	backend.mu.Lock()
	backend.deleteErr = &api.Error{StatusCode: 500, Detail: "erro interno"}
	backend.mu.Unlock()

	err := s.DeleteGoal(context.Background(), "7")
	require.Error(t, err)
	assert.Len(t, s.Goals(), 1, "entity stays until the server confirms")
}

func TestAddTransaction_Scenario(t *testing.T) {
	s, _, _ := newAuthed(t)

	created, err := s.AddTransaction(context.Background(), core.TransactionDraft{
		Type:        core.Expense,
		Category:    "Alimentação",
		Description: "Almoço",
		Amount:      45.50,
		Date:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	txs := s.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "99", created.ID)
	assert.Equal(t, "99", txs[0].ID)
	assert.Equal(t, 45.50, txs[0].Amount)
}

func TestAddTransaction_FailurePropagates(t *testing.T) {
	s, backend, _ := newAuthed(t)
	backend.mu.Lock()
	backend.createErr = &api.Error{StatusCode: 422, Detail: "valor deve ser positivo"}
	backend.mu.Unlock()

	_, err := s.AddTransaction(context.Background(), core.TransactionDraft{
		Type:        core.Expense,
		Category:    "Alimentação",
		Description: "Almoço",
		Amount:      45.50,
		Date:        time.Now(),
	})
	require.Error(t, err)
	assert.NotEmpty(t, err.Error())
	assert.Empty(t, s.Transactions())
}

func TestSessionExpired_ForcesAnonymous(t *testing.T) {
	notified := 0
	backend := newFakeBackend()
	store := session.NewMemoryStore()
	s := New(backend, store, WithExpiryNotifier(func() { notified++ }))
	require.NoError(t, s.Login(context.Background(), "user@test.com", "secret1"))

	backend.goals = []core.Goal{{ID: "1", Title: "Reserva", Target: 100}}
	s.LoadGoals(context.Background())
	require.Len(t, s.Goals(), 1)

	// The transport clears durable storage before invoking the hook.
	require.NoError(t, store.Clear())
	s.SessionExpired()

	assert.Equal(t, Anonymous, s.Phase())
	assert.Nil(t, s.CurrentUser())
	assert.Empty(t, s.Goals())
	assert.Equal(t, 1, notified)

	// Repeat while already anonymous: no second notification.
	s.SessionExpired()
	assert.Equal(t, 1, notified)
}

func TestOperationsRequireAuthentication(t *testing.T) {
	s := New(newFakeBackend(), session.NewMemoryStore())

	_, err := s.AddGoal(context.Background(), core.GoalDraft{Title: "x", Category: "Viagem", Target: 1})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = s.AddTransaction(context.Background(), core.TransactionDraft{
		Type: core.Expense, Category: "x", Description: "y", Amount: 1, Date: time.Now(),
	})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.ErrorIs(t, s.DeleteGoal(context.Background(), "1"), ErrNotAuthenticated)
}

func TestActivatePlan(t *testing.T) {
	fixed := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s := New(newFakeBackend(), session.NewMemoryStore(), WithClock(func() time.Time { return fixed }))

	plan := s.ActivatePlan("plan-1", "Plano Poupança")
	assert.Equal(t, "plan-1", plan.ID)
	assert.Equal(t, fixed, plan.ActivatedAt)

	generated := s.ActivatePlan("", "Plano Investidor")
	assert.NotEmpty(t, generated.ID)

	plans := s.ActivatedPlans()
	require.Len(t, plans, 2)
	assert.Equal(t, "Plano Poupança", plans[0].Title)
}

func TestClosedSynchronizerNoOps(t *testing.T) {
	s, backend, _ := newAuthed(t)
	backend.goals = []core.Goal{{ID: "1", Title: "Reserva", Target: 100}}
	s.Close()

	s.LoadGoals(context.Background())
	assert.Empty(t, s.Goals(), "closed synchronizer must not absorb late results")

	assert.ErrorIs(t, s.Logout(), ErrClosed)
	assert.ErrorIs(t, s.Login(context.Background(), "user@test.com", "secret1"), ErrClosed)
}

func TestNotifications(t *testing.T) {
	s, backend, _ := newAuthed(t)
	backend.notes = []core.Notification{{ID: "3", Title: "Orçamento estourado"}}

	s.LoadNotifications(context.Background())
	require.Len(t, s.Notifications(), 1)

	require.NoError(t, s.MarkNotificationRead(context.Background(), "3"))
	assert.True(t, s.Notifications()[0].Read)
}

func TestRegister_LogsIn(t *testing.T) {
	s := New(newFakeBackend(), session.NewMemoryStore())

	err := s.Register(context.Background(), "User", "user@test.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, Authenticated, s.Phase())
}
