package conversation

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMemoryStore(t *testing.T) {
	t.Run("set_get_clear", func(t *testing.T) {
		store := NewMemoryStore(0)
		store.Set(1, &Session{State: StateAwaitingAmount})

		s, ok := store.Get(1)
		if !ok || s.State != StateAwaitingAmount {
			t.Fatalf("Get = %+v, %v", s, ok)
		}

		store.Clear(1)
		if _, ok := store.Get(1); ok {
			t.Error("expected session to be cleared")
		}
	})

	t.Run("returns_copies", func(t *testing.T) {
		store := NewMemoryStore(0)
		original := &Session{State: StateAwaitingCategory, Amount: decimal.NewFromInt(10)}
		store.Set(1, original)
		original.State = StateAwaitingDeleteConf

		s, _ := store.Get(1)
		s.Amount = decimal.NewFromInt(99)

		again, _ := store.Get(1)
		if again.State != StateAwaitingCategory || !again.Amount.Equal(decimal.NewFromInt(10)) {
			t.Errorf("stored session was mutated: %+v", again)
		}
	})

	t.Run("expiry", func(t *testing.T) {
		now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
		store := NewMemoryStore(10 * time.Minute)
		store.now = func() time.Time { return now }

		store.Set(1, &Session{State: StateAwaitingAmount})
		store.Set(2, &Session{State: StateAwaitingAmount})

		now = now.Add(5 * time.Minute)
		if _, ok := store.Get(1); !ok {
			t.Fatal("session expired too early")
		}
		store.Set(1, &Session{State: StateAwaitingCategory})

		now = now.Add(6 * time.Minute)
		if _, ok := store.Get(1); !ok {
			t.Error("Set should restart the idle timer")
		}
		if removed := store.CleanExpired(); removed != 1 {
			t.Errorf("CleanExpired removed %d, want 1", removed)
		}
		if store.Size() != 1 {
			t.Errorf("Size = %d, want 1", store.Size())
		}
	})
}

func TestUserLocks(t *testing.T) {
	locks := newUserLocks()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(7)
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("expected serialized access, saw %d concurrent holders", maxSeen)
	}
	if len(locks.locks) != 0 {
		t.Errorf("expected lock table to be empty, got %d entries", len(locks.locks))
	}
}
