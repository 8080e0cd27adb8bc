// Package conversation implements the per-user dialog state machine that
// turns chat messages into ledger operations.
package conversation

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finbot/internal/models"
)

// State names a step of a multi-turn dialog. The zero value is idle.
type State string

const (
	StateIdle                 State = ""
	StateAwaitingAmount       State = "AWAITING_AMOUNT"
	StateAwaitingCategory     State = "AWAITING_CATEGORY"
	StateAwaitingStatsChoice  State = "AWAITING_STATS_CHOICE"
	StateAwaitingSettings     State = "AWAITING_SETTINGS_CHOICE"
	StateAwaitingCurrency     State = "AWAITING_CURRENCY"
	StateAwaitingCategoryMenu State = "AWAITING_CATEGORY_MENU"
	StateAwaitingNewCatName   State = "AWAITING_NEW_CAT_NAME"
	StateAwaitingNewCatType   State = "AWAITING_NEW_CAT_TYPE"
	StateAwaitingBudgetCat    State = "AWAITING_BUDGET_CATEGORY"
	StateAwaitingBudgetAmount State = "AWAITING_BUDGET_AMOUNT"
	StateAwaitingDeleteSelect State = "AWAITING_DELETE_SELECT"
	StateAwaitingDeleteConf   State = "AWAITING_DELETE_CONFIRM"
)

// Session is the scratch state of one user's active dialog.
type Session struct {
	State State

	Kind            models.CategoryKind
	Amount          decimal.Decimal
	NewCategoryName string
	BudgetCategory  string
	DeleteTarget    string
}

// SessionStore keeps at most one Session per user.
type SessionStore interface {
	Get(userID int64) (*Session, bool)
	Set(userID int64, s *Session)
	Clear(userID int64)
}

type sessionEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore is an in-process SessionStore with idle expiry.
// A zero ttl keeps sessions until they are cleared.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[int64]sessionEntry
	now   func() time.Time
}

// NewMemoryStore creates a MemoryStore whose sessions expire after ttl of inactivity.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:   ttl,
		items: make(map[int64]sessionEntry),
		now:   time.Now,
	}
}

// Get returns a copy of the user's session, dropping it if it has expired.
func (m *MemoryStore) Get(userID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.items[userID]
	if !ok {
		return nil, false
	}
	if m.expired(entry) {
		delete(m.items, userID)
		return nil, false
	}
	s := *entry.session
	return &s, true
}

// Set stores a copy of s and restarts its idle timer.
func (m *MemoryStore) Set(userID int64, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *s
	entry := sessionEntry{session: &stored}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.items[userID] = entry
}

// Clear removes the user's session.
func (m *MemoryStore) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, userID)
}

// CleanExpired removes all expired sessions and returns how many were removed.
func (m *MemoryStore) CleanExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, entry := range m.items {
		if m.expired(entry) {
			delete(m.items, id)
			removed++
		}
	}
	return removed
}

// Size returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *MemoryStore) expired(e sessionEntry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}

// userLocks serializes message handling per user.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*userLock)}
}

// lock blocks until the user's lock is held and returns its release func.
func (l *userLocks) lock(userID int64) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
