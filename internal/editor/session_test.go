package editor

import (
	"testing"
	"time"

	"github.com/getcoveredlife/studio/model"
)

func TestManager_createGetClose(t *testing.T) {
	m := NewManager()

	id, store := m.Create(model.DefaultTokens())
	if id == "" || store == nil {
		t.Fatalf("Create returned %q, %v", id, store)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}

	got, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != store {
		t.Error("Get returned a different store")
	}

	m.Close(id)
	if _, err := m.Get(id); err == nil {
		t.Error("Get after Close should error")
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d after Close, want 0", m.Len())
	}
}

func TestManager_getUnknownSession(t *testing.T) {
	m := NewManager()
	_, err := m.Get("no-such-session")
	if err == nil {
		t.Fatal("expected an error for an unknown session id")
	}
	env, ok := err.(*model.ErrorEnvelope)
	if !ok {
		t.Fatalf("error type %T, want *model.ErrorEnvelope", err)
	}
	if env.Code != model.ErrSessionNotFound {
		t.Errorf("code = %q, want %q", env.Code, model.ErrSessionNotFound)
	}
}

func TestManager_sweepEvictsIdleSessions(t *testing.T) {
	clock := time.Now()
	m := NewManager(
		WithSessionTTL(time.Hour),
		withClock(func() time.Time { return clock }),
	)

	idleID, _ := m.Create(model.DefaultTokens())
	clock = clock.Add(30 * time.Minute)
	freshID, _ := m.Create(model.DefaultTokens())

	clock = clock.Add(45 * time.Minute)
	if got := m.Sweep(); got != 1 {
		t.Fatalf("Sweep evicted %d sessions, want 1", got)
	}
	if _, err := m.Get(idleID); err == nil {
		t.Error("idle session survived the sweep")
	}
	if _, err := m.Get(freshID); err != nil {
		t.Errorf("fresh session was evicted: %v", err)
	}
}

func TestManager_getTouchesLastUsed(t *testing.T) {
	clock := time.Now()
	m := NewManager(
		WithSessionTTL(time.Hour),
		withClock(func() time.Time { return clock }),
	)

	id, _ := m.Create(model.DefaultTokens())

	// Touch the session every 45 minutes; it must never go idle.
	for i := 0; i < 3; i++ {
		clock = clock.Add(45 * time.Minute)
		if _, err := m.Get(id); err != nil {
			t.Fatalf("Get at touch %d: %v", i, err)
		}
		if got := m.Sweep(); got != 0 {
			t.Fatalf("Sweep evicted %d sessions after touch %d, want 0", got, i)
		}
	}
}

func TestManager_sweepKeepsDirtySessionsForGraceWindow(t *testing.T) {
	clock := time.Now()
	m := NewManager(
		WithSessionTTL(time.Hour),
		withClock(func() time.Time { return clock }),
	)

	id, store := m.Create(model.DefaultTokens())
	store.LoadPage(threeSectionPage())
	if err := store.RemoveSection("a"); err != nil {
		t.Fatalf("RemoveSection: %v", err)
	}

	// Past the ttl but inside the grace window: kept.
	clock = clock.Add(90 * time.Minute)
	if got := m.Sweep(); got != 0 {
		t.Fatalf("Sweep evicted %d dirty sessions in grace window, want 0", got)
	}
	if _, err := m.Get(id); err != nil {
		t.Fatalf("dirty session gone inside grace window: %v", err)
	}

	// Get touched lastUsed; advance past ttl plus the grace window.
	clock = clock.Add(3 * time.Hour)
	if got := m.Sweep(); got != 1 {
		t.Fatalf("Sweep evicted %d sessions past grace window, want 1", got)
	}
}

func TestManager_storeHistoryLimitPropagates(t *testing.T) {
	m := NewManager(WithStoreHistoryLimit(3))
	_, store := m.Create(model.DefaultTokens())
	store.LoadPage(threeSectionPage())

	for i := 0; i < 10; i++ {
		if err := store.SetPreviewMode(PreviewDesktop); err != nil {
			t.Fatalf("SetPreviewMode: %v", err)
		}
		if err := store.ReorderSections(0, 1); err != nil {
			t.Fatalf("ReorderSections %d: %v", i, err)
		}
	}
	if got := store.HistoryLen(); got != 3 {
		t.Errorf("history len = %d, want 3", got)
	}
}
