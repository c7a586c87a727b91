package workers_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/freightdesk/internal/app/store/sessions"
	"github.com/dalemusser/freightdesk/internal/app/system/workers"
	"github.com/dalemusser/freightdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeCloser struct {
	mu        sync.Mutex
	calls     int
	threshold time.Duration
	n         int64
	err       error
}

func (f *fakeCloser) CloseInactive(_ context.Context, threshold time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.threshold = threshold
	return f.n, f.err
}

func (f *fakeCloser) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSweep_PassesThreshold(t *testing.T) {
	fc := &fakeCloser{n: 3}
	w := workers.NewSessionCleanup(fc, zap.NewNop(), time.Minute, 10*time.Minute)

	if got := w.Sweep(context.Background()); got != 3 {
		t.Errorf("Sweep = %d, want 3", got)
	}
	if fc.threshold != 10*time.Minute {
		t.Errorf("threshold = %v, want 10m", fc.threshold)
	}
}

func TestSweep_ErrorReturnsZero(t *testing.T) {
	fc := &fakeCloser{n: 5, err: errors.New("boom")}
	w := workers.NewSessionCleanup(fc, zap.NewNop(), time.Minute, time.Minute)

	if got := w.Sweep(context.Background()); got != 0 {
		t.Errorf("Sweep = %d, want 0 on error", got)
	}
}

func TestStartStop_RunsOnTicker(t *testing.T) {
	fc := &fakeCloser{}
	w := workers.NewSessionCleanup(fc, zap.NewNop(), 5*time.Millisecond, time.Minute)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for fc.Calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if fc.Calls() == 0 {
		t.Fatal("expected at least one sweep before stop")
	}
}

func TestSweep_ClosesIdleMongoSessions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "idle", primitive.NewObjectID(), "courier", "", ""); err != nil {
		t.Fatalf("Create idle: %v", err)
	}
	if _, err := store.Create(ctx, "fresh", primitive.NewObjectID(), "admin", "", ""); err != nil {
		t.Fatalf("Create fresh: %v", err)
	}
	old := time.Now().UTC().Add(-time.Hour)
	if _, err := db.Collection("sessions").UpdateOne(ctx,
		bson.M{"token_hash": "idle"},
		bson.M{"$set": bson.M{"last_active_at": old, "login_at": old}},
	); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	w := workers.NewSessionCleanup(store, zap.NewNop(), time.Minute, 30*time.Minute)
	if got := w.Sweep(ctx); got != 1 {
		t.Fatalf("Sweep closed %d, want 1", got)
	}

	idle, _ := store.GetByToken(ctx, "idle")
	fresh, _ := store.GetByToken(ctx, "fresh")
	if idle.IsOpen() {
		t.Error("idle session should be closed")
	}
	if !fresh.IsOpen() {
		t.Error("fresh session should remain open")
	}
}
