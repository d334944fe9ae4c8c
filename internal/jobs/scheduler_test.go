package jobs

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/config"
	"github.com/getcoveredlife/studio/internal/editor"
	"github.com/getcoveredlife/studio/internal/storage"
	"github.com/getcoveredlife/studio/model"
)

func newTestScheduler(t *testing.T, sessions *editor.Manager, store *storage.MemoryStore) *Scheduler {
	t.Helper()
	s, err := NewScheduler(config.Defaults().Jobs, Dependencies{
		Sessions: sessions,
		Orders:   store,
		Log:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}

func TestNewScheduler_rejectsBadSpec(t *testing.T) {
	cfg := config.Defaults().Jobs
	cfg.SessionSweepSpec = "not a cron spec"

	_, err := NewScheduler(cfg, Dependencies{
		Sessions: editor.NewManager(),
		Orders:   storage.NewMemoryStore(),
		Log:      zap.NewNop(),
	})
	if err == nil {
		t.Fatal("expected an error for an invalid schedule")
	}
}

func TestSweepSessions_evictsIdle(t *testing.T) {
	sessions := editor.NewManager(editor.WithSessionTTL(time.Nanosecond))
	sessions.Create(model.DefaultTokens())
	time.Sleep(time.Millisecond)

	s := newTestScheduler(t, sessions, storage.NewMemoryStore())
	s.SweepSessions()

	if got := sessions.Len(); got != 0 {
		t.Fatalf("sessions after sweep = %d, want 0", got)
	}
}

func TestExpireDownloads_purgesPastOrders(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	past := time.Now().UTC().Add(-time.Hour)
	order := model.BookOrder{
		ID:                "ord-1",
		Email:             "reader@example.com",
		CheckoutSessionID: "cs_1",
		Amount:            1999,
		Currency:          "usd",
		Status:            model.OrderStatusCompleted,
		DownloadExpiresAt: &past,
		CreatedAt:         past.Add(-time.Hour),
	}
	if err := store.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	s := newTestScheduler(t, editor.NewManager(), store)
	s.ExpireDownloads(ctx)

	got, err := store.GetOrderBySession(ctx, "cs_1")
	if err != nil {
		t.Fatalf("GetOrderBySession: %v", err)
	}
	if got.DownloadExpiresAt != nil {
		t.Fatal("expected the download entitlement to be cleared")
	}
}
